package preflight

import (
	"fmt"

	"stanza/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional failures are reported but never block startup.
	Optional bool
	Detail   string
}

// RunAll executes the directory and tool checks for cfg.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Audio directory", cfg.Paths.AudioDir),
	}
	for _, dep := range CheckSystemDeps(cfg) {
		result := Result{Name: dep.Name, Passed: dep.Available, Optional: dep.Optional}
		if dep.Available {
			result.Detail = fmt.Sprintf("%s (found)", dep.Path)
		} else {
			result.Detail = dep.Detail
		}
		results = append(results, result)
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
