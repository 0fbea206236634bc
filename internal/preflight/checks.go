package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"

	"stanza/internal/catalog"
	"stanza/internal/config"
)

// Requirement defines an external binary stanza relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// BinaryStatus reports the availability of a binary.
type BinaryStatus struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Path is the resolved location when the binary was found.
	Path   string
	Detail string
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBinaries resolves each requirement on PATH.
func CheckBinaries(requirements []Requirement) []BinaryStatus {
	results := make([]BinaryStatus, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := BinaryStatus{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch resolved, err := exec.LookPath(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		default:
			status.Available = true
			status.Path = resolved
		}
		results = append(results, status)
	}
	return results
}

// SystemRequirements lists the external tools for cfg.
func SystemRequirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFprobe",
			Command:     cfg.Media.FFprobeBinary,
			Description: "Required to read uploaded audio durations",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Media.FFmpegBinary,
			Description: "Required for audio trimming",
		},
		{
			Name:        "Pause detector",
			Command:     cfg.Media.PauseDetectorBinary,
			Description: "Suggests line boundaries from silences",
			Optional:    true,
		},
	}
}

// CheckSystemDeps evaluates all external tools for cfg. Both the daemon and
// the CLI use this so the requirements list lives in one place.
func CheckSystemDeps(cfg *config.Config) []BinaryStatus {
	if cfg == nil {
		return nil
	}
	return CheckBinaries(SystemRequirements(cfg))
}

// CheckCatalog verifies the catalog database is readable and complete.
func CheckCatalog(ctx context.Context, store *catalog.Store) Result {
	const name = "Catalog database"
	if store == nil {
		return Result{Name: name, Detail: "not opened"}
	}
	health, err := store.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", health.DBPath, err)}
	}
	if !health.DatabaseExists {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", health.DBPath)}
	}
	if len(health.MissingTables) > 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (missing tables: %s)", health.DBPath, strings.Join(health.MissingTables, ", "))}
	}
	if !health.IntegrityCheck {
		return Result{Name: name, Detail: fmt.Sprintf("%s (integrity check failed)", health.DBPath)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema v%d)", health.DBPath, health.SchemaVersion)}
}
