package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a referenced track, fragment, or line that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOperation marks a request that is never allowed, such as editing
	// the end-time of a fragment's last line.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInvalidInput marks a submitted value outside its permitted range.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState marks data that cannot support the requested operation,
	// such as an incomplete or out-of-order timing sequence.
	ErrInvalidState = errors.New("invalid state")
	// ErrExternalTool marks ffprobe, ffmpeg, or pause detector failures.
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
	// ErrTransient marks storage or I/O failures. Wrap uses it when no marker is given.
	ErrTransient = errors.New("transient failure")
)

// Kind is the stable, machine-readable error category exposed to API callers.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidOperation Kind = "invalid_operation"
	KindInvalidInput     Kind = "invalid_input"
	KindInvalidState     Kind = "invalid_state"
	KindExternalTool     Kind = "external_tool"
	KindConfiguration    Kind = "configuration"
	KindTimeout          Kind = "timeout"
	KindInternal         Kind = "internal"
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf classifies err by the first sentinel it carries.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalidOperation
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrExternalTool):
		return KindExternalTool
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	default:
		return KindInternal
	}
}

// IsClientError reports whether err was caused by the caller's request rather
// than by storage, tooling, or configuration.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindNotFound, KindInvalidOperation, KindInvalidInput, KindInvalidState:
		return true
	default:
		return false
	}
}

// Message returns the caller-facing text of err: the detail portion without
// the sentinel prefix or the wrapped cause.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var detailed *detailError
	if errors.As(err, &detailed) {
		return detailed.detail
	}
	return err.Error()
}

// Reject builds a client-facing error that carries only the marker and detail.
// It is used for validation failures where no underlying cause exists.
func Reject(marker error, detail string) error {
	return &detailError{marker: marker, detail: strings.TrimSpace(detail)}
}

type detailError struct {
	marker error
	detail string
}

func (e *detailError) Error() string {
	if e.detail == "" {
		return e.marker.Error()
	}
	return e.marker.Error() + ": " + e.detail
}

func (e *detailError) Unwrap() error { return e.marker }

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
