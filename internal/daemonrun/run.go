package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"stanza/internal/catalog"
	"stanza/internal/config"
	"stanza/internal/daemon"
	"stanza/internal/logging"
	"stanza/internal/preflight"
	"stanza/internal/timing"
)

// PIDFileName is written to the log directory while the server runs.
const PIDFileName = "stanza.pid"

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides the configured level when set.
	LogLevel string
	// Bind overrides the configured API bind address when set.
	Bind string
}

// Run starts the stanza API server and blocks until the context is cancelled
// or the process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if bind := strings.TrimSpace(opts.Bind); bind != "" {
		cfg.Paths.APIBind = bind
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sessionID := uuid.NewString()
	logger, err := logging.NewFromConfig(cfg, sessionID)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.PruneLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	logPreflight(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, PIDFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := catalog.Open(cfg)
	if err != nil {
		logging.ErrorWithContext(logger, "open catalog store", "catalog_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data_dir permissions"),
		)
		return err
	}
	defer store.Close()

	engine := timing.NewEngine(timing.CatalogTx(store), timing.Options{
		StrictNeighbors: cfg.Timing.StrictNeighbors,
		Logger:          logger,
	})

	d, err := daemon.New(cfg, store, engine, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("stanza daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

// logPreflight records the readiness snapshot. Failures are warnings: timing
// edits work without the media tools.
func logPreflight(logger *slog.Logger, cfg *config.Config) {
	results := preflight.RunAll(cfg)
	attrs := []logging.Attr{logging.String(logging.FieldEventType, "dependency_snapshot")}
	for _, r := range results {
		attrs = append(attrs, logging.Bool(strings.ToLower(strings.ReplaceAll(r.Name, " ", "_"))+"_ok", r.Passed))
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)

	for _, r := range preflight.Failed(results) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldImpact, "uploads and trimming may fail"),
		)
	}
}
