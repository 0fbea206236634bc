// Package daemon runs the long-lived stanza HTTP API.
//
// It wires configuration, the catalog store, and the timing engine into a
// single lifecycle with flock-based locking so only one server owns the
// catalog database. Every endpoint answers with the {ok, data} or
// {ok:false, error} envelope from package api; request ids are attached to
// the context so engine log lines can be correlated with HTTP requests.
//
// Keep request decoding and status mapping here. Timing rules live in package
// timing and must not leak into handlers.
package daemon
