package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"stanza/internal/catalog"
	"stanza/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if store.Path() != cfg.DatabasePath() {
		t.Fatalf("unexpected db path %q", store.Path())
	}
	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.IntegrityCheck {
		t.Fatalf("unexpected health: %+v", health)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("unexpected missing tables: %v", health.MissingTables)
	}
	if health.SchemaVersion != 1 {
		t.Fatalf("unexpected schema version %d", health.SchemaVersion)
	}

	// Reopening an initialized database must succeed.
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	reopened, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	reopened.Close()
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := catalog.OpenPath(dbPath); !errors.Is(err, catalog.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestCreateFragmentNumbersLines(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	fragment, err := store.CreateFragment(ctx, "  Winter Evening ", []string{"The storm covers", "", "  the sky with mist  "})
	if err != nil {
		t.Fatalf("CreateFragment failed: %v", err)
	}
	if fragment.Title != "Winter Evening" {
		t.Fatalf("unexpected title %q", fragment.Title)
	}
	lines, err := store.Lines(ctx, fragment.ID)
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Number != 1 || lines[1].Number != 2 {
		t.Fatalf("unexpected numbering: %+v", lines)
	}
	if lines[1].Text != "the sky with mist" {
		t.Fatalf("expected trimmed text, got %q", lines[1].Text)
	}
	count, err := store.LineCount(ctx, fragment.ID)
	if err != nil || count != 2 {
		t.Fatalf("unexpected line count %d err=%v", count, err)
	}

	if _, err := store.CreateFragment(ctx, " ", nil); err == nil {
		t.Fatal("expected error for blank title")
	}
	missing, err := store.Fragment(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil fragment for unknown id, got %v err=%v", missing, err)
	}
}

func TestSplitLines(t *testing.T) {
	got := catalog.SplitLines("first\r\n\n  second  \rthird\n\n")
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitLines = %v, want %v", got, want)
	}
}

func TestTimingsUpsertAndDelete(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	fragment, lines := testsupport.NewFragment(t, store, "Poem", "one", "two", "three")
	track := testsupport.NewTrack(t, store, fragment.ID, "poem.mp3", 12)

	if track.Status != catalog.StatusDraft {
		t.Fatalf("expected draft status, got %q", track.Status)
	}
	if err := store.UpsertTiming(ctx, track.ID, lines[0].ID, 4); err != nil {
		t.Fatalf("UpsertTiming failed: %v", err)
	}
	if err := store.UpsertTiming(ctx, track.ID, lines[0].ID, 4.5); err != nil {
		t.Fatalf("UpsertTiming overwrite failed: %v", err)
	}
	if err := store.UpsertTiming(ctx, track.ID, lines[1].ID, 9); err != nil {
		t.Fatalf("UpsertTiming failed: %v", err)
	}
	timings, err := store.Timings(ctx, track.ID)
	if err != nil {
		t.Fatalf("Timings failed: %v", err)
	}
	want := map[int64]float64{lines[0].ID: 4.5, lines[1].ID: 9}
	if !reflect.DeepEqual(timings, want) {
		t.Fatalf("Timings = %v, want %v", timings, want)
	}

	removed, err := store.DeleteTimings(ctx, track.ID)
	if err != nil || removed != 2 {
		t.Fatalf("DeleteTimings removed %d err=%v", removed, err)
	}
	timings, _ = store.Timings(ctx, track.ID)
	if len(timings) != 0 {
		t.Fatalf("expected no timings, got %v", timings)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	fragment, lines := testsupport.NewFragment(t, store, "Poem", "one", "two")
	track := testsupport.NewTrack(t, store, fragment.ID, "poem.mp3", 10)

	sentinel := errors.New("abort")
	err := store.WithinTx(ctx, func(r *catalog.Repo) error {
		if err := r.UpsertTiming(ctx, track.ID, lines[0].ID, 3); err != nil {
			return err
		}
		if _, err := r.SetTrackStatus(ctx, track.ID, catalog.StatusActive); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	timings, _ := store.Timings(ctx, track.ID)
	if len(timings) != 0 {
		t.Fatalf("expected rollback of timing, got %v", timings)
	}
	reloaded, _ := store.Track(ctx, track.ID)
	if reloaded.Status != catalog.StatusDraft {
		t.Fatalf("expected rollback of status, got %q", reloaded.Status)
	}

	if err := store.WithinTx(ctx, func(r *catalog.Repo) error {
		return r.UpsertTiming(ctx, track.ID, lines[0].ID, 3)
	}); err != nil {
		t.Fatalf("WithinTx commit failed: %v", err)
	}
	timings, _ = store.Timings(ctx, track.ID)
	if timings[lines[0].ID] != 3 {
		t.Fatalf("expected committed timing, got %v", timings)
	}
}

func TestReplaceAudioClearsTimingsAndHints(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	fragment, lines := testsupport.NewFragment(t, store, "Poem", "one", "two")
	track := testsupport.NewTrack(t, store, fragment.ID, "poem.mp3", 10)

	if err := store.SetPauseHints(ctx, track.ID, []float64{2.5, 6}); err != nil {
		t.Fatalf("SetPauseHints failed: %v", err)
	}
	hints, err := store.PauseHints(ctx, track.ID)
	if err != nil || !reflect.DeepEqual(hints, []float64{2.5, 6}) {
		t.Fatalf("unexpected hints %v err=%v", hints, err)
	}
	if err := store.UpsertTiming(ctx, track.ID, lines[0].ID, 4); err != nil {
		t.Fatalf("UpsertTiming failed: %v", err)
	}
	if _, err := store.SetTrackStatus(ctx, track.ID, catalog.StatusActive); err != nil {
		t.Fatalf("SetTrackStatus failed: %v", err)
	}

	if err := store.ReplaceAudio(ctx, track.ID, "poem-trimmed.mp3", "poem.mp3", 8); err != nil {
		t.Fatalf("ReplaceAudio failed: %v", err)
	}
	reloaded, err := store.Track(ctx, track.ID)
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if reloaded.Filename != "poem-trimmed.mp3" || reloaded.OriginalFilename != "poem.mp3" || reloaded.Duration != 8 {
		t.Fatalf("unexpected track after replace: %+v", reloaded)
	}
	if !reloaded.IsTrimmed() {
		t.Fatal("expected trimmed track")
	}
	if reloaded.Status != catalog.StatusActive {
		t.Fatalf("status must not change on replace, got %q", reloaded.Status)
	}
	if len(reloaded.PauseHints) != 0 {
		t.Fatalf("expected pause hints cleared, got %v", reloaded.PauseHints)
	}
	timings, _ := store.Timings(ctx, track.ID)
	if len(timings) != 0 {
		t.Fatalf("expected timings removed, got %v", timings)
	}

	if err := store.ReplaceAudio(ctx, 999, "x.mp3", "", 1); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTrackCascadesTimings(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	fragment, lines := testsupport.NewFragment(t, store, "Poem", "one", "two")
	first := testsupport.NewTrack(t, store, fragment.ID, "a.mp3", 10)
	second := testsupport.NewTrack(t, store, fragment.ID, "b.mp3", 10)

	if err := store.UpsertTiming(ctx, first.ID, lines[0].ID, 4); err != nil {
		t.Fatalf("UpsertTiming failed: %v", err)
	}
	if err := store.DeleteTrack(ctx, first.ID); err != nil {
		t.Fatalf("DeleteTrack failed: %v", err)
	}
	if track, _ := store.Track(ctx, first.ID); track != nil {
		t.Fatalf("expected track removed, got %+v", track)
	}
	timings, _ := store.Timings(ctx, first.ID)
	if len(timings) != 0 {
		t.Fatalf("expected cascaded timings removal, got %v", timings)
	}
	remaining, _ := store.Track(ctx, second.ID)
	if remaining.SortOrder != 1 {
		t.Fatalf("expected remaining track renumbered to 1, got %d", remaining.SortOrder)
	}
	if err := store.DeleteTrack(ctx, first.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCreateTrackRequiresFragment(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	_, err := store.CreateTrack(context.Background(), catalog.NewTrack{FragmentID: 42, Filename: "a.mp3", Duration: 3})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.CreateTrack(context.Background(), catalog.NewTrack{FragmentID: 42, Filename: "a.mp3"}); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestHealthCounts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	fragment, lines := testsupport.NewFragment(t, store, "Poem", "one", "two", "three")
	track := testsupport.NewTrack(t, store, fragment.ID, "a.mp3", 10)
	testsupport.NewTrack(t, store, fragment.ID, "b.mp3", 10)
	_ = store.UpsertTiming(ctx, track.ID, lines[0].ID, 2)
	_, _ = store.SetTrackStatus(ctx, track.ID, catalog.StatusActive)

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	want := catalog.HealthSummary{Fragments: 1, Lines: 3, Tracks: 2, DraftTracks: 1, ActiveTracks: 1, Timings: 1}
	if summary != want {
		t.Fatalf("Health = %+v, want %+v", summary, want)
	}
}

func TestCheckHealthMissingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	defer store.Close()
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if health.DatabaseExists {
		t.Fatal("expected missing database to be reported")
	}
}

func TestParseStatus(t *testing.T) {
	if status, err := catalog.ParseStatus(" Active "); err != nil || status != catalog.StatusActive {
		t.Fatalf("unexpected parse result %q err=%v", status, err)
	}
	if _, err := catalog.ParseStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
