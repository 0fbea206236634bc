package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"stanza/internal/catalog"
	"stanza/internal/config"
	"stanza/internal/logging"
	"stanza/internal/preflight"
	"stanza/internal/timing"
)

// LockFileName is created in the log directory while a daemon runs.
const LockFileName = "stanza.lock"

// Daemon owns the API server and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *catalog.Store
	engine *timing.Engine

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running   atomic.Bool
	startedAt time.Time
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	DatabasePath  string
	LockFilePath  string
	StartedAt     time.Time
	Catalog       catalog.HealthSummary
	CatalogHealth preflight.Result
	Dependencies  []preflight.BinaryStatus
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *catalog.Store, engine *timing.Engine, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || engine == nil {
		return nil, errors.New("daemon requires config, store, and timing engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, LockFileName)
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		engine:   engine,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock and starts the API listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another stanza daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}

	d.cancel = cancel
	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("stanza daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
		logging.String(logging.FieldEventType, "daemon_started"),
	)
	return nil
}

// Stop shuts the API server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if no daemon is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("stanza daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close stops the daemon. The store is owned by the caller.
func (d *Daemon) Close() error {
	d.Stop()
	return nil
}

// Address returns the bound listener address once started.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Handler exposes the API routes, for tests and embedding.
func (d *Daemon) Handler() http.Handler {
	return d.api.handler
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		DatabasePath:  d.store.Path(),
		LockFilePath:  d.lockPath,
		StartedAt:     d.startedAt,
		CatalogHealth: preflight.CheckCatalog(ctx, d.store),
		Dependencies:  preflight.CheckSystemDeps(d.cfg),
	}
	summary, err := d.store.Health(ctx)
	if err != nil {
		logging.WarnWithContext(d.logger, "catalog stats unavailable", "catalog_stats_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "status reports zero counts"),
		)
	}
	status.Catalog = summary
	return status
}
