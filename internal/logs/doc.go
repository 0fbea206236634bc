// Package logs reads the stanza server log for the CLI.
//
// Last reads the final N matching lines with bounded memory; Follow polls
// from an offset and emits lines as the server appends them. A Filter narrows
// output to one track, matching both the console and JSON log formats.
package logs
