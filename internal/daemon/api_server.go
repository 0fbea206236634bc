package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stanza/internal/api"
	"stanza/internal/config"
	"stanza/internal/logging"
	"stanza/internal/services"
	"stanza/internal/timing"
)

// maxBodyBytes bounds JSON request bodies. Timing requests are tiny.
const maxBodyBytes = 64 * 1024

// requestIDHeader carries the correlation id in both directions.
const requestIDHeader = "X-Request-ID"

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	engine  *timing.Engine
	editor  timing.EditorOptions
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
		engine: d.engine,
		editor: timing.EditorOptions{
			MinDuration:       cfg.Timing.MinDuration,
			FirstWindowFactor: cfg.Timing.FirstWindowFactor,
		},
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux := http.NewServeMux()
	route := func(pattern, method string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, srv.withRequestID(authMiddleware(token, srv.allow(method, h))))
	}
	route("/api/timings/init", http.MethodGet, srv.handleInit)
	route("/api/timings/line", http.MethodPost, srv.handleLine)
	route("/api/timings/finalize", http.MethodPost, srv.handleFinalize)
	route("/api/timings/reopen", http.MethodPost, srv.handleReopen)
	route("/api/tracks/{id}/timeline", http.MethodGet, srv.handleTimeline)
	route("/api/status", http.MethodGet, srv.handleStatus)
	mux.HandleFunc("/", srv.withRequestID(func(w http.ResponseWriter, r *http.Request) {
		srv.writeFailure(w, r, services.Reject(services.ErrNotFound, "unknown endpoint"))
	}))
	srv.handler = mux
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_server_failed", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// withRequestID attaches a correlation id to the request context, reusing a
// client-supplied one when present.
func (s *apiServer) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	}
}

func (s *apiServer) allow(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			s.writeJSON(w, r, http.StatusMethodNotAllowed, api.Envelope{OK: false, Error: "method not allowed"})
			return
		}
		next(w, r)
	}
}

func (s *apiServer) readJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return services.Reject(services.ErrInvalidInput, "unable to read request body")
	}
	if len(body) > maxBodyBytes {
		return services.Reject(services.ErrInvalidInput, "request body too large")
	}
	return api.DecodeJSON(body, dst)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Warn("failed to encode response", logging.Args(logging.Error(err))...)
	}
}

func (s *apiServer) writeData(w http.ResponseWriter, r *http.Request, data any) {
	s.writeJSON(w, r, http.StatusOK, api.Success(data))
}

// writeFailure maps err to a status and envelope. Non-client errors are
// logged in full; callers only see a generic message.
func (s *apiServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := api.HTTPStatus(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if !services.IsClientError(err) {
		logging.ErrorWithContext(logger, "request failed", "api_request_failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
	} else {
		logger.Debug("request rejected", logging.Args(
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.String("reason", services.Message(err)),
		)...)
	}
	s.writeJSON(w, r, status, api.Failure(err))
}
