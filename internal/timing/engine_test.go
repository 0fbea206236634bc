package timing_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stanza/internal/catalog"
	"stanza/internal/services"
	"stanza/internal/testsupport"
	"stanza/internal/timing"
)

type fixture struct {
	store  *catalog.Store
	engine *timing.Engine
	track  *catalog.Track
	lines  []catalog.Line
}

func newFixture(t *testing.T, duration float64, opts timing.Options, lines ...string) fixture {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	fragment, stored := testsupport.NewFragment(t, store, "Poem", lines...)
	track := testsupport.NewTrack(t, store, fragment.ID, "poem-1700000000.mp3", duration)
	return fixture{
		store:  store,
		engine: timing.NewEngine(timing.CatalogTx(store), opts),
		track:  track,
		lines:  stored,
	}
}

func expectKind(t *testing.T, err error, marker error) {
	t.Helper()
	if !errors.Is(err, marker) {
		t.Fatalf("expected %v, got %v", marker, err)
	}
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t, 12.0, timing.Options{}, "first", "second", "third")
	ctx := context.Background()
	l1, l2, l3 := f.lines[0].ID, f.lines[1].ID, f.lines[2].ID

	view, err := f.engine.InitData(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("InitData failed: %v", err)
	}
	if len(view.Ends) != 1 || view.Ends[l3] != 12.0 {
		t.Fatalf("expected only the last line end, got %v", view.Ends)
	}

	if err := f.engine.UpsertLineEnd(ctx, f.track.ID, l1, 4.0); err != nil {
		t.Fatalf("upsert line1: %v", err)
	}
	view, err = f.engine.InitData(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("InitData failed: %v", err)
	}
	if len(view.Ends) != 2 || view.Ends[l1] != 4.0 || view.Ends[l3] != 12.0 {
		t.Fatalf("unexpected ends after first upsert: %v", view.Ends)
	}

	expectKind(t, f.engine.UpsertLineEnd(ctx, f.track.ID, l2, 3.0), services.ErrInvalidInput)
	if err := f.engine.UpsertLineEnd(ctx, f.track.ID, l2, 9.0); err != nil {
		t.Fatalf("upsert line2: %v", err)
	}
	if err := f.engine.FinalizeTrack(ctx, f.track.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	track, err := f.store.Track(ctx, f.track.ID)
	if err != nil || track == nil {
		t.Fatalf("reload track: %v", err)
	}
	if track.Status != catalog.StatusActive {
		t.Fatalf("expected active status, got %s", track.Status)
	}
	expectKind(t, f.engine.UpsertLineEnd(ctx, f.track.ID, l3, 10.0), services.ErrInvalidOperation)
}

func TestInitDataLastLineIgnoresStoredValue(t *testing.T) {
	f := newFixture(t, 8.5, timing.Options{}, "a", "b")
	ctx := context.Background()
	last := f.lines[1].ID
	if err := f.store.UpsertTiming(ctx, f.track.ID, last, 3.0); err != nil {
		t.Fatalf("seed stray timing: %v", err)
	}

	view, err := f.engine.InitData(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("InitData failed: %v", err)
	}
	if len(view.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(view.Lines))
	}
	if view.Ends[last] != 8.5 {
		t.Fatalf("expected last line end 8.5, got %v", view.Ends[last])
	}
	if view.AudioURL != "uploads/audio/1/poem-1700000000.mp3" {
		t.Fatalf("unexpected audio url %q", view.AudioURL)
	}
	if view.Status != catalog.StatusDraft {
		t.Fatalf("expected draft, got %s", view.Status)
	}
}

func TestUpsertLeavesOtherLinesUnchanged(t *testing.T) {
	f := newFixture(t, 20, timing.Options{}, "a", "b", "c", "d")
	ctx := context.Background()
	for i, end := range []float64{3, 7, 12} {
		if err := f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[i].ID, end); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}
	if err := f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[1].ID, 8); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	view, err := f.engine.InitData(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("InitData failed: %v", err)
	}
	want := map[int64]float64{f.lines[0].ID: 3, f.lines[1].ID: 8, f.lines[2].ID: 12, f.lines[3].ID: 20}
	for id, end := range want {
		if view.Ends[id] != end {
			t.Fatalf("line %d end = %v, want %v (all %v)", id, view.Ends[id], end, view.Ends)
		}
	}
}

func TestUpsertErrors(t *testing.T) {
	f := newFixture(t, 10, timing.Options{}, "a", "b", "c")
	ctx := context.Background()

	expectKind(t, f.engine.UpsertLineEnd(ctx, 9999, f.lines[0].ID, 1), services.ErrNotFound)
	expectKind(t, f.engine.UpsertLineEnd(ctx, f.track.ID, 9999, 1), services.ErrNotFound)
	expectKind(t, f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[0].ID, 0), services.ErrInvalidInput)
	expectKind(t, f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[0].ID, 10.5), services.ErrInvalidInput)
	for _, end := range []float64{-1, 0, 5, 10, 11} {
		expectKind(t, f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[2].ID, end), services.ErrInvalidOperation)
	}

	timings, err := f.store.Timings(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("Timings failed: %v", err)
	}
	if len(timings) != 0 {
		t.Fatalf("rejected upserts must not write, got %v", timings)
	}
}

func TestUpsertOnFragmentWithoutLines(t *testing.T) {
	f := newFixture(t, 10, timing.Options{})
	_, err := f.engine.InitData(context.Background(), f.track.ID)
	expectKind(t, err, services.ErrInvalidState)
	expectKind(t, f.engine.UpsertLineEnd(context.Background(), f.track.ID, 1, 1), services.ErrInvalidState)
}

func TestUpsertLineOfAnotherFragment(t *testing.T) {
	f := newFixture(t, 10, timing.Options{}, "a", "b")
	_, other := testsupport.NewFragment(t, f.store, "Other", "x", "y")
	err := f.engine.UpsertLineEnd(context.Background(), f.track.ID, other[0].ID, 2)
	expectKind(t, err, services.ErrNotFound)
}

func TestStrictNeighbors(t *testing.T) {
	ctx := context.Background()

	lenient := newFixture(t, 10, timing.Options{}, "a", "b", "c")
	if err := lenient.engine.UpsertLineEnd(ctx, lenient.track.ID, lenient.lines[1].ID, 5); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := lenient.engine.UpsertLineEnd(ctx, lenient.track.ID, lenient.lines[0].ID, 6); err != nil {
		t.Fatalf("default mode should accept end above next line: %v", err)
	}
	expectKind(t, lenient.engine.FinalizeTrack(ctx, lenient.track.ID), services.ErrInvalidState)

	strict := newFixture(t, 10, timing.Options{StrictNeighbors: true}, "a", "b", "c")
	if err := strict.engine.UpsertLineEnd(ctx, strict.track.ID, strict.lines[1].ID, 5); err != nil {
		t.Fatalf("seed: %v", err)
	}
	expectKind(t, strict.engine.UpsertLineEnd(ctx, strict.track.ID, strict.lines[0].ID, 6), services.ErrInvalidInput)
	expectKind(t, strict.engine.UpsertLineEnd(ctx, strict.track.ID, strict.lines[0].ID, 5), services.ErrInvalidInput)
	if err := strict.engine.UpsertLineEnd(ctx, strict.track.ID, strict.lines[0].ID, 4.5); err != nil {
		t.Fatalf("strict mode should accept end below next line: %v", err)
	}
}

func TestFinalizeFailures(t *testing.T) {
	tests := []struct {
		name string
		ends []float64
	}{
		{name: "missing timing", ends: []float64{2}},
		{name: "not increasing", ends: []float64{5, 5}},
		{name: "no room for last line", ends: []float64{4, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10, timing.Options{}, "a", "b", "c")
			ctx := context.Background()
			for i, end := range tt.ends {
				if err := f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[i].ID, end); err != nil {
					t.Fatalf("seed line %d: %v", i, err)
				}
			}
			expectKind(t, f.engine.FinalizeTrack(ctx, f.track.ID), services.ErrInvalidState)
			track, err := f.store.Track(ctx, f.track.ID)
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if track.Status != catalog.StatusDraft {
				t.Fatalf("failed finalize must keep draft, got %s", track.Status)
			}
		})
	}
}

func TestFinalizeSingleLineFragment(t *testing.T) {
	f := newFixture(t, 10, timing.Options{}, "only")
	expectKind(t, f.engine.FinalizeTrack(context.Background(), f.track.ID), services.ErrInvalidState)
}

func TestFinalizeIdempotentAndReopen(t *testing.T) {
	f := newFixture(t, 6, timing.Options{}, "a", "b")
	ctx := context.Background()
	if err := f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[0].ID, 2.5); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := f.engine.FinalizeTrack(ctx, f.track.ID); err != nil {
			t.Fatalf("finalize #%d: %v", i+1, err)
		}
	}
	if err := f.engine.ReopenTrack(ctx, f.track.ID); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	view, err := f.engine.InitData(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("InitData: %v", err)
	}
	if view.Status != catalog.StatusDraft {
		t.Fatalf("expected draft after reopen, got %s", view.Status)
	}
	if view.Ends[f.lines[0].ID] != 2.5 {
		t.Fatalf("reopen must keep timings, got %v", view.Ends)
	}
	expectKind(t, f.engine.ReopenTrack(ctx, f.track.ID), services.ErrInvalidState)
	expectKind(t, f.engine.ReopenTrack(ctx, 4242), services.ErrNotFound)
}

func TestUpsertOnActiveTrack(t *testing.T) {
	f := newFixture(t, 6, timing.Options{}, "a", "b")
	ctx := context.Background()
	if err := f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[0].ID, 2.5); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := f.engine.FinalizeTrack(ctx, f.track.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if err := f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[0].ID, 3.0); err != nil {
		t.Fatalf("upsert on active track: %v", err)
	}
	view, err := f.engine.InitData(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("InitData: %v", err)
	}
	if view.Status != catalog.StatusActive || view.Ends[f.lines[0].ID] != 3.0 {
		t.Fatalf("expected active track with end 3.0, got %s %v", view.Status, view.Ends)
	}
	expectKind(t, f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[1].ID, 5.0), services.ErrInvalidOperation)
}

func TestTimeline(t *testing.T) {
	f := newFixture(t, 12, timing.Options{}, "a", "b", "c")
	ctx := context.Background()
	if err := f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[1].ID, 9); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	timeline, err := f.engine.Timeline(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if timeline.Complete {
		t.Fatal("timeline with a missing end must not be complete")
	}
	entries := timeline.Entries
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if v, ok := entries[0].Start.Seconds(); !ok || v != 0 {
		t.Fatalf("first start = %+v", entries[0].Start)
	}
	if entries[0].End.Known() || entries[1].Start.Known() {
		t.Fatalf("unset end must leave next start unknown: %+v", entries)
	}
	if v, ok := entries[2].Start.Seconds(); !ok || v != 9 {
		t.Fatalf("third start = %+v", entries[2].Start)
	}
	if entries[2].End != timing.Fixed(12) {
		t.Fatalf("last end = %+v", entries[2].End)
	}

	if err := f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[0].ID, 4); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	timeline, err = f.engine.Timeline(ctx, f.track.ID)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if !timeline.Complete {
		t.Fatalf("expected complete timeline: %+v", timeline.Entries)
	}
}

func TestConcurrentUpsertsOnOneTrack(t *testing.T) {
	f := newFixture(t, 100, timing.Options{}, "a", "b", "c", "d", "e")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- f.engine.UpsertLineEnd(ctx, f.track.ID, f.lines[i].ID, float64(10*(i+1)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil && !errors.Is(err, services.ErrInvalidInput) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

type failingTx struct{ err error }

func (f failingTx) WithinTx(ctx context.Context, fn func(timing.Repository) error) error {
	return fn(failingRepo{err: f.err})
}

type failingRepo struct{ err error }

func (r failingRepo) Track(context.Context, int64) (*catalog.Track, error) { return nil, r.err }
func (r failingRepo) Lines(context.Context, int64) ([]catalog.Line, error) { return nil, r.err }
func (r failingRepo) Timings(context.Context, int64) (map[int64]float64, error) {
	return nil, r.err
}
func (r failingRepo) UpsertTiming(context.Context, int64, int64, float64) error { return r.err }
func (r failingRepo) SetTrackStatus(context.Context, int64, catalog.Status) (bool, error) {
	return false, r.err
}

func TestStorageFailuresAreNotClientErrors(t *testing.T) {
	engine := timing.NewEngine(failingTx{err: errors.New("disk I/O error")}, timing.Options{})
	err := engine.UpsertLineEnd(context.Background(), 1, 1, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if services.IsClientError(err) {
		t.Fatalf("storage failure classified as client error: %v", err)
	}
	if services.KindOf(err) != services.KindInternal {
		t.Fatalf("expected internal kind, got %s", services.KindOf(err))
	}
}
