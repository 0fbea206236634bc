package timing

import (
	"context"
	"fmt"

	"stanza/internal/catalog"
	"stanza/internal/services"
)

// snapshot is everything one engine call reads about a track.
type snapshot struct {
	track *catalog.Track
	lines []catalog.Line
	seq   Sequence
}

func loadSnapshot(ctx context.Context, repo Repository, trackID int64) (snapshot, error) {
	track, err := repo.Track(ctx, trackID)
	if err != nil {
		return snapshot{}, services.Wrap(services.ErrTransient, component, "load track", "read track", err)
	}
	if track == nil {
		return snapshot{}, services.Reject(services.ErrNotFound, "track not found")
	}
	lines, err := repo.Lines(ctx, track.FragmentID)
	if err != nil {
		return snapshot{}, services.Wrap(services.ErrTransient, component, "load lines", fmt.Sprintf("fragment %d", track.FragmentID), err)
	}
	if len(lines) == 0 {
		return snapshot{}, services.Reject(services.ErrInvalidState, "no lines for fragment")
	}
	stored, err := repo.Timings(ctx, trackID)
	if err != nil {
		return snapshot{}, services.Wrap(services.ErrTransient, component, "load timings", fmt.Sprintf("track %d", trackID), err)
	}
	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.ID
	}
	return snapshot{
		track: track,
		lines: lines,
		seq:   NewSequence(track.Duration, ids, stored),
	}, nil
}
