// Package timing validates and persists per-line narration end-times.
//
// A fragment of N lines stores N-1 end-times per track; the last line always
// ends at the track duration. The Engine serializes edits per track and runs
// each call in one catalog transaction. The Editor models the proposal and
// drag rules an editing surface follows on top of the engine's init data.
package timing
