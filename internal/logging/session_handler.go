package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID identifies one server process run across its log lines.
const FieldSessionID = "session_id"

type sessionIDHandler struct {
	next      slog.Handler
	sessionID string
}

func newSessionIDHandler(next slog.Handler, sessionID string) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &sessionIDHandler{next: next, sessionID: sessionID}
}

func (h *sessionIDHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sessionIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	return h.next.Handle(ctx, record)
}

func (h *sessionIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newSessionIDHandler(h.next.WithAttrs(attrs), h.sessionID)
}

func (h *sessionIDHandler) WithGroup(name string) slog.Handler {
	return newSessionIDHandler(h.next.WithGroup(name), h.sessionID)
}
