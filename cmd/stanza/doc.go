// Package main hosts the stanza CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the HTTP server ("serve", "status",
// "stop", "logs"), configuration scaffolding, fragment import, track file operations (upload, trim, restore,
// reorder, pause detection), and timing edits. Commands work directly against
// the catalog database through the same engine the server uses, so rules such
// as "the last line's end is the track duration" hold no matter which surface
// made the change.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
