package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const trackColumns = "id, fragment_id, filename, original_filename, duration, title, sort_order, status, is_ai_generated, pause_detection, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(scanner rowScanner) (*Track, error) {
	var (
		track       Track
		original    sql.NullString
		status      string
		aiGenerated sql.NullInt64
		pauses      sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&track.ID,
		&track.FragmentID,
		&track.Filename,
		&original,
		&track.Duration,
		&track.Title,
		&track.SortOrder,
		&status,
		&aiGenerated,
		&pauses,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	track.OriginalFilename = original.String
	track.Status = Status(status)
	track.AIGenerated = aiGenerated.Valid && aiGenerated.Int64 != 0
	if pauses.Valid && pauses.String != "" {
		// Hints are advisory; a corrupt payload just means no hints.
		_ = json.Unmarshal([]byte(pauses.String), &track.PauseHints)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		track.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		track.UpdatedAt = updated
	}
	return &track, nil
}

func scanFragment(scanner rowScanner) (*Fragment, error) {
	var (
		fragment   Fragment
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(&fragment.ID, &fragment.Title, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		fragment.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		fragment.UpdatedAt = updated
	}
	return &fragment, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
