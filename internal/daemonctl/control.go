package daemonctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"stanza/internal/api"
	"stanza/internal/catalog"
	"stanza/internal/config"
	"stanza/internal/daemonrun"
	"stanza/internal/preflight"
)

// ErrDaemonNotRunning indicates no server process could be reached.
var ErrDaemonNotRunning = errors.New("daemon not running")

// StopResult captures the stop outcome.
type StopResult struct {
	PID        int
	ForcedKill bool
}

// PIDPath returns the pid file written by the server.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.LogDir, daemonrun.PIDFileName)
}

// ProcessInfo reports whether the pid file names a live process.
func ProcessInfo(cfg *config.Config) (bool, int, error) {
	data, err := os.ReadFile(PIDPath(cfg))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, 0, nil
		}
		return false, 0, fmt.Errorf("read pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false, 0, fmt.Errorf("pid file %s is malformed", PIDPath(cfg))
	}
	return processAlive(pid), pid, nil
}

// Stop sends SIGTERM to the server and escalates to SIGKILL when it is still
// alive after grace.
func Stop(ctx context.Context, cfg *config.Config, grace time.Duration) (StopResult, error) {
	alive, pid, err := ProcessInfo(cfg)
	if err != nil {
		return StopResult{}, err
	}
	if !alive {
		return StopResult{}, ErrDaemonNotRunning
	}
	if pid == os.Getpid() {
		return StopResult{}, fmt.Errorf("refusing to signal current process (pid %d)", pid)
	}
	result := StopResult{PID: pid}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		return result, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	deadline := time.Now().Add(grace)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}

	if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return result, fmt.Errorf("kill daemon process %d: %w", pid, err)
	}
	result.ForcedKill = true
	if err := os.Remove(PIDPath(cfg)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("remove pid file: %w", err)
	}
	return result, nil
}

// BuildStatusSnapshot asks the running server for its status and falls back
// to an offline snapshot read from the catalog and the local toolchain.
func BuildStatusSnapshot(ctx context.Context, cfg *config.Config) (*api.StatusResponse, error) {
	if cfg == nil {
		return nil, errors.New("configuration not available")
	}
	queryCtx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	if alive, _, _ := ProcessInfo(cfg); alive {
		if status, err := NewClient(cfg).Status(queryCtx); err == nil {
			return status, nil
		}
	}

	status := &api.StatusResponse{
		DatabasePath: cfg.DatabasePath(),
		Dependencies: api.FromDependencies(preflight.CheckSystemDeps(cfg)),
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		status.CatalogHealth = err.Error()
		return status, nil
	}
	defer store.Close()

	status.CatalogHealth = preflight.CheckCatalog(queryCtx, store).Detail
	if summary, err := store.Health(queryCtx); err == nil {
		status.Catalog = api.FromHealthSummary(summary)
	}
	return status, nil
}

func processAlive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
