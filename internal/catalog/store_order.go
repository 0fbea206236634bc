package catalog

import (
	"context"
	"fmt"
)

// InsertPosition clamps a requested 1-based position to [1, count+1] and
// shifts tracks at or after it down by one to make room. Call it inside a
// transaction together with the insert.
func (r *Repo) InsertPosition(ctx context.Context, fragmentID int64, position int) (int, error) {
	var count int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(1) FROM tracks WHERE fragment_id = ?`, fragmentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	if position > count+1 || position == 0 {
		position = count + 1
	}
	if position < 1 {
		position = 1
	}
	if position <= count {
		if err := r.execWithoutResultRetry(ctx,
			`UPDATE tracks SET sort_order = sort_order + 1, updated_at = ? WHERE fragment_id = ? AND sort_order >= ?`,
			nowString(), fragmentID, position,
		); err != nil {
			return 0, fmt.Errorf("shift tracks: %w", err)
		}
	}
	return position, nil
}

// MoveTrack places a track at a new 1-based position within its fragment and
// renumbers the others contiguously. Positions beyond the end append.
func (s *Store) MoveTrack(ctx context.Context, trackID int64, position int) error {
	return s.WithinTx(ctx, func(r *Repo) error {
		track, err := r.Track(ctx, trackID)
		if err != nil {
			return err
		}
		if track == nil {
			return fmt.Errorf("track %d: %w", trackID, ErrNotFound)
		}
		others, err := r.trackIDsInOrder(ctx, track.FragmentID, trackID)
		if err != nil {
			return err
		}
		if position < 1 {
			position = 1
		}
		if position > len(others)+1 {
			position = len(others) + 1
		}
		ordered := make([]int64, 0, len(others)+1)
		ordered = append(ordered, others[:position-1]...)
		ordered = append(ordered, trackID)
		ordered = append(ordered, others[position-1:]...)
		return r.applyOrder(ctx, ordered)
	})
}

// NormalizeOrder renumbers a fragment's tracks 1..N keeping their relative order.
func (s *Store) NormalizeOrder(ctx context.Context, fragmentID int64) error {
	return s.WithinTx(ctx, func(r *Repo) error {
		return r.normalizeOrder(ctx, fragmentID)
	})
}

func (r *Repo) normalizeOrder(ctx context.Context, fragmentID int64) error {
	ordered, err := r.trackIDsInOrder(ctx, fragmentID, 0)
	if err != nil {
		return err
	}
	return r.applyOrder(ctx, ordered)
}

func (r *Repo) trackIDsInOrder(ctx context.Context, fragmentID, exclude int64) ([]int64, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id FROM tracks WHERE fragment_id = ? AND id != ? ORDER BY sort_order, id`,
		fragmentID, exclude,
	)
	if err != nil {
		return nil, fmt.Errorf("list track order: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan track id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repo) applyOrder(ctx context.Context, ordered []int64) error {
	timestamp := nowString()
	for index, id := range ordered {
		if err := r.execWithoutResultRetry(ctx,
			`UPDATE tracks SET sort_order = ?, updated_at = ? WHERE id = ?`,
			index+1, timestamp, id,
		); err != nil {
			return fmt.Errorf("update sort order: %w", err)
		}
	}
	return nil
}
