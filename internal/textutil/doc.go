// Package textutil provides text helpers for file naming.
//
// Slug turns a track title, typically Russian, into an ASCII token suitable
// for audio filenames.
package textutil
