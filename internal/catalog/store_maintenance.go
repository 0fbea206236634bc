package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var expectedTables = []string{"schema_version", "fragments", "lines", "tracks", "timings"}

// Health aggregates catalog counts for status output.
func (r *Repo) Health(ctx context.Context) (HealthSummary, error) {
	var summary HealthSummary
	row := r.q.QueryRowContext(ctx, `SELECT
        (SELECT COUNT(1) FROM fragments),
        (SELECT COUNT(1) FROM lines),
        (SELECT COUNT(1) FROM tracks),
        (SELECT COUNT(1) FROM tracks WHERE status = 'draft'),
        (SELECT COUNT(1) FROM tracks WHERE status = 'active'),
        (SELECT COUNT(1) FROM timings)`)
	if err := row.Scan(
		&summary.Fragments,
		&summary.Lines,
		&summary.Tracks,
		&summary.DraftTracks,
		&summary.ActiveTracks,
		&summary.Timings,
	); err != nil {
		return HealthSummary{}, fmt.Errorf("catalog stats: %w", err)
	}
	return summary, nil
}

// CheckHealth returns diagnostic information about the catalog database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("catalog database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat catalog database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("catalog database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping catalog database: %w", err)
	}
	health.DatabaseReadable = true

	present := make(map[string]struct{}, len(expectedTables))
	rows, err := s.db.QueryContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("list tables: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			health.Error = err.Error()
			return health, fmt.Errorf("scan table name: %w", err)
		}
		present[name] = struct{}{}
	}
	rows.Close()
	for _, table := range expectedTables {
		if _, ok := present[table]; !ok {
			health.MissingTables = append(health.MissingTables, table)
		}
	}

	if _, ok := present["schema_version"]; ok {
		if err := s.db.QueryRowContext(connCtx, "SELECT version FROM schema_version LIMIT 1").Scan(&health.SchemaVersion); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("read schema version: %w", err)
		}
	}

	var integrityResult string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")
	return health, nil
}
