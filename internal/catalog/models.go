package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound reports that a referenced fragment or track does not exist.
var ErrNotFound = errors.New("catalog record not found")

// Status represents the lifecycle of a narration track.
type Status string

const (
	// StatusDraft tracks are still being annotated.
	StatusDraft Status = "draft"
	// StatusActive tracks passed finalize validation and are published.
	StatusActive Status = "active"
)

// ParseStatus converts a user-supplied string into a Status.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusDraft:
		return StatusDraft, nil
	case StatusActive:
		return StatusActive, nil
	default:
		return "", fmt.Errorf("unknown track status %q", value)
	}
}

// Fragment is a titled, ordered sequence of poem lines narrated as one unit.
type Fragment struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line is one line of a fragment. Number is 1-based and contiguous.
type Line struct {
	ID         int64
	FragmentID int64
	Number     int
	Text       string
}

// Track is one audio recording of a fragment.
type Track struct {
	ID         int64
	FragmentID int64
	// Filename is the audio file currently served, relative to the fragment's
	// audio directory.
	Filename string
	// OriginalFilename is set once the audio has been trimmed and names the
	// untrimmed upload kept for restore.
	OriginalFilename string
	Duration         float64
	Title            string
	SortOrder        int
	Status           Status
	AIGenerated      bool
	// PauseHints holds candidate split times from the pause detector. They are
	// advisory and never validated.
	PauseHints []float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsTrimmed reports whether the served audio differs from the original upload.
func (t *Track) IsTrimmed() bool {
	return t.OriginalFilename != "" && t.OriginalFilename != t.Filename
}

// NewTrack describes a track to insert.
type NewTrack struct {
	FragmentID  int64
	Filename    string
	Duration    float64
	Title       string
	AIGenerated bool
	// Position is the requested 1-based sort position; it is clamped to the
	// fragment's current track count + 1 and existing tracks shift down.
	// Zero appends.
	Position int
}

// HealthSummary aggregates catalog counts for status output.
type HealthSummary struct {
	Fragments    int
	Lines        int
	Tracks       int
	DraftTracks  int
	ActiveTracks int
	Timings      int
}

// DatabaseHealth describes the state of the catalog database file.
type DatabaseHealth struct {
	DBPath           string
	SchemaVersion    int
	DatabaseExists   bool
	DatabaseReadable bool
	MissingTables    []string
	IntegrityCheck   bool
	Error            string
}
