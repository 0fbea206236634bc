package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// CreateTrack inserts a draft track at the requested sort position, shifting
// existing tracks of the fragment down.
func (s *Store) CreateTrack(ctx context.Context, spec NewTrack) (*Track, error) {
	if strings.TrimSpace(spec.Filename) == "" {
		return nil, errors.New("track filename is required")
	}
	if spec.Duration <= 0 {
		return nil, fmt.Errorf("track duration must be positive, got %v", spec.Duration)
	}
	var id int64
	err := s.WithinTx(ctx, func(r *Repo) error {
		fragment, err := r.Fragment(ctx, spec.FragmentID)
		if err != nil {
			return err
		}
		if fragment == nil {
			return fmt.Errorf("fragment %d: %w", spec.FragmentID, ErrNotFound)
		}
		position, err := r.InsertPosition(ctx, spec.FragmentID, spec.Position)
		if err != nil {
			return err
		}
		timestamp := nowString()
		res, err := r.execWithRetry(ctx,
			`INSERT INTO tracks (
                fragment_id, filename, duration, title, sort_order, status,
                is_ai_generated, created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			spec.FragmentID,
			spec.Filename,
			spec.Duration,
			strings.TrimSpace(spec.Title),
			position,
			StatusDraft,
			boolToInt(spec.AIGenerated),
			timestamp,
			timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert track: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Track(ctx, id)
}

// Track fetches a track by identifier. It returns nil, nil when absent.
func (r *Repo) Track(ctx context.Context, id int64) (*Track, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get track: %w", err)
	}
	return track, nil
}

// TracksByFragment returns a fragment's tracks in sort order.
func (r *Repo) TracksByFragment(ctx context.Context, fragmentID int64) ([]Track, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE fragment_id = ? ORDER BY sort_order, id`,
		fragmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, *track)
	}
	return tracks, rows.Err()
}

// SetTrackStatus updates a track's lifecycle status. It reports whether a
// row was updated.
func (r *Repo) SetTrackStatus(ctx context.Context, id int64, status Status) (bool, error) {
	res, err := r.execWithRetry(ctx,
		`UPDATE tracks SET status = ?, updated_at = ? WHERE id = ?`,
		status, nowString(), id,
	)
	if err != nil {
		return false, fmt.Errorf("update track status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ReplaceAudio points a track at a new audio file and duration and deletes
// its timings, which no longer match the audio. originalFilename is stored
// as given; pass "" to clear it.
func (s *Store) ReplaceAudio(ctx context.Context, id int64, filename, originalFilename string, duration float64) error {
	if strings.TrimSpace(filename) == "" {
		return errors.New("track filename is required")
	}
	if duration <= 0 {
		return fmt.Errorf("track duration must be positive, got %v", duration)
	}
	return s.WithinTx(ctx, func(r *Repo) error {
		res, err := r.execWithRetry(ctx,
			`UPDATE tracks SET filename = ?, original_filename = ?, duration = ?, pause_detection = NULL, updated_at = ?
             WHERE id = ?`,
			filename, nullableString(originalFilename), duration, nowString(), id,
		)
		if err != nil {
			return fmt.Errorf("replace track audio: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return fmt.Errorf("track %d: %w", id, ErrNotFound)
		}
		_, err = r.DeleteTimings(ctx, id)
		return err
	})
}

// DeleteTrack removes a track and, through the foreign key, its timings. The
// remaining tracks of the fragment are renumbered.
func (s *Store) DeleteTrack(ctx context.Context, id int64) error {
	return s.WithinTx(ctx, func(r *Repo) error {
		track, err := r.Track(ctx, id)
		if err != nil {
			return err
		}
		if track == nil {
			return fmt.Errorf("track %d: %w", id, ErrNotFound)
		}
		if err := r.execWithoutResultRetry(ctx, `DELETE FROM tracks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete track: %w", err)
		}
		return r.normalizeOrder(ctx, track.FragmentID)
	})
}

// SetPauseHints stores the pause detector's candidate split times.
func (r *Repo) SetPauseHints(ctx context.Context, id int64, hints []float64) error {
	var payload any
	if len(hints) > 0 {
		encoded, err := json.Marshal(hints)
		if err != nil {
			return fmt.Errorf("encode pause hints: %w", err)
		}
		payload = string(encoded)
	}
	if err := r.execWithoutResultRetry(ctx,
		`UPDATE tracks SET pause_detection = ?, updated_at = ? WHERE id = ?`,
		payload, nowString(), id,
	); err != nil {
		return fmt.Errorf("update pause hints: %w", err)
	}
	return nil
}

// PauseHints returns the stored pause detector split times for a track.
func (r *Repo) PauseHints(ctx context.Context, id int64) ([]float64, error) {
	track, err := r.Track(ctx, id)
	if err != nil || track == nil {
		return nil, err
	}
	return track.PauseHints, nil
}
