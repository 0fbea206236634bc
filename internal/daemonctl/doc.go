// Package daemonctl inspects and stops a stanza server from the CLI.
//
// The server is located through its pid file in the log directory and its
// HTTP status endpoint. When the server is not running, BuildStatusSnapshot
// falls back to reading the catalog directly so status output stays useful.
package daemonctl
