// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: per-stream codec and audio properties
//   - Format: container-level metadata (duration, size, bitrate)
//
// Entry points:
//   - Inspect: executes ffprobe and returns the parsed Result
//   - Duration: probes a file and returns its positive duration in seconds
package ffprobe
