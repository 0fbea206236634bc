// Package services defines shared utilities consumed by the timing engine,
// the media helpers, and the API surface.
//
// Key responsibilities:
//   - Context helpers that stamp track IDs, operation names, and correlation
//     identifiers for logging.
//   - Structured error markers plus Wrap and Reject, which let the API layer
//     map any failure to a stable error kind and HTTP status.
package services
