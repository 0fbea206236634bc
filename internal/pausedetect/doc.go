// Package pausedetect runs the external pause detector against narration
// audio and stores its candidate split times on the track.
//
// Split times are advisory hints for the editing surface. A detector failure
// is logged and reported to the caller but never blocks an upload or an edit.
package pausedetect
