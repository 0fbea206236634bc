package timing

import "stanza/internal/catalog"

// Timeline is the reconstructed, gap-free sequence of line intervals
// covering a track.
type Timeline struct {
	TrackID  int64
	Duration float64
	Status   catalog.Status
	Entries  []TimelineEntry
	// Complete reports whether the timings would pass finalize validation.
	Complete bool
}

// TimelineEntry is one line's interval. Start is unknown when the previous
// line's end is unset.
type TimelineEntry struct {
	LineID int64
	Number int
	Text   string
	Start  LineEnd
	End    LineEnd
}

func buildTimeline(snap snapshot) Timeline {
	starts := snap.seq.Starts()
	entries := make([]TimelineEntry, len(snap.lines))
	for i, line := range snap.lines {
		entries[i] = TimelineEntry{
			LineID: line.ID,
			Number: line.Number,
			Text:   line.Text,
			Start:  starts[i],
			End:    snap.seq.Ends[i],
		}
	}
	return Timeline{
		TrackID:  snap.track.ID,
		Duration: snap.track.Duration,
		Status:   snap.track.Status,
		Entries:  entries,
		Complete: CheckComplete(snap.seq) == nil,
	}
}
