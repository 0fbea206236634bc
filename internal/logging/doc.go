// Package logging assembles structured slog loggers and formatting helpers used
// across stanza.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so timing and media code can
// automatically tag log lines with track IDs, operations, and correlation IDs.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail, plus age-based pruning of old log files.
package logging
