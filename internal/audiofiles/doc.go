// Package audiofiles manages narration audio on disk and keeps the catalog in
// step with it.
//
// Audio lives at <audio_dir>/<fragment_id>/<slug>-<unix>.mp3. Trimming writes
// a sibling "-trimmed" file and keeps the upload for restore. Any operation
// that replaces the served audio deletes the track's timings, because they
// no longer match the recording.
package audiofiles
