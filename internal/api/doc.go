// Package api defines wire-format types and converters for the HTTP API and
// the CLI's JSON output. It translates timing engine views and catalog
// records into transport-friendly DTOs so the editing frontend never couples
// to internal types.
//
// # Key Types
//
// InitResponse: everything an editing session starts from. Audio location,
// duration, lines, known end-times keyed by line id, and pause hints.
//
// TimelineResponse: reconstructed start/end of every line. Unknown values are
// encoded as null.
//
// StatusResponse: daemon runtime information, catalog counts, and external
// tool availability.
//
// Envelope: the {ok, data} / {ok:false, error} wrapper every endpoint returns.
//
// # Errors
//
// HTTPStatus and ErrorMessage classify engine errors. Client errors keep
// their message; anything else is reported as a generic internal error and
// only logged in full.
//
// # Design Notes
//
// The init payload keeps the mixed key style the editing frontend already
// consumes (audioUrl, totalDuration, line_number, pause_hints). Newer payloads
// use camelCase. Timestamps use RFC3339 with milliseconds.
package api
