package testsupport

import (
	"context"
	"testing"

	"stanza/internal/catalog"
	"stanza/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewFragment creates a fragment with the given lines.
func NewFragment(t testing.TB, store *catalog.Store, title string, lines ...string) (*catalog.Fragment, []catalog.Line) {
	t.Helper()

	ctx := context.Background()
	fragment, err := store.CreateFragment(ctx, title, lines)
	if err != nil {
		t.Fatalf("store.CreateFragment: %v", err)
	}
	stored, err := store.Lines(ctx, fragment.ID)
	if err != nil {
		t.Fatalf("store.Lines: %v", err)
	}
	return fragment, stored
}

// NewTrack creates a draft track appended to the fragment.
func NewTrack(t testing.TB, store *catalog.Store, fragmentID int64, filename string, duration float64) *catalog.Track {
	t.Helper()

	track, err := store.CreateTrack(context.Background(), catalog.NewTrack{
		FragmentID: fragmentID,
		Filename:   filename,
		Duration:   duration,
	})
	if err != nil {
		t.Fatalf("store.CreateTrack: %v", err)
	}
	return track
}
