package catalog

import (
	"context"
	"fmt"
)

// Timings returns the stored end-times of a track keyed by line id.
func (r *Repo) Timings(ctx context.Context, trackID int64) (map[int64]float64, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT line_id, end_time FROM timings WHERE track_id = ?`, trackID)
	if err != nil {
		return nil, fmt.Errorf("list timings: %w", err)
	}
	defer rows.Close()

	timings := make(map[int64]float64)
	for rows.Next() {
		var (
			lineID int64
			end    float64
		)
		if err := rows.Scan(&lineID, &end); err != nil {
			return nil, fmt.Errorf("scan timing: %w", err)
		}
		timings[lineID] = end
	}
	return timings, rows.Err()
}

// UpsertTiming inserts or replaces the end-time of one line of a track.
func (r *Repo) UpsertTiming(ctx context.Context, trackID, lineID int64, end float64) error {
	timestamp := nowString()
	if err := r.execWithoutResultRetry(ctx,
		`INSERT INTO timings (track_id, line_id, end_time, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(track_id, line_id) DO UPDATE SET end_time = excluded.end_time, updated_at = excluded.updated_at`,
		trackID, lineID, end, timestamp, timestamp,
	); err != nil {
		return fmt.Errorf("upsert timing: %w", err)
	}
	return nil
}

// DeleteTimings removes every timing of a track and returns how many were removed.
func (r *Repo) DeleteTimings(ctx context.Context, trackID int64) (int64, error) {
	res, err := r.execWithRetry(ctx, `DELETE FROM timings WHERE track_id = ?`, trackID)
	if err != nil {
		return 0, fmt.Errorf("delete timings: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}
