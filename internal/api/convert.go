package api

import (
	"math"
	"time"

	"stanza/internal/catalog"
	"stanza/internal/preflight"
	"stanza/internal/timing"
)

// FromInitView converts an engine init view to its API representation.
// Slices and maps are never nil so the frontend can index them directly.
func FromInitView(view timing.InitView, opts timing.EditorOptions) InitResponse {
	resp := InitResponse{
		TrackID:       view.TrackID,
		AudioURL:      view.AudioURL,
		TotalDuration: view.TotalDuration,
		Status:        string(view.Status),
		Lines:         FromLines(view.Lines),
		Timings:       make(Timings, len(view.Ends)),
		PauseHints:    append([]float64{}, view.PauseHints...),
	}
	for id, end := range view.Ends {
		resp.Timings[id] = end
	}
	resp.Editor = FromEditor(timing.NewEditor(view, opts))
	return resp
}

// FromEditor converts an editing session's proposals and bounds.
func FromEditor(ed *timing.Editor) Editor {
	out := Editor{
		FinalizeEnabled: ed.AllComplete(),
		Lines:           make([]EditorLine, 0, len(ed.Lines)),
	}
	for i, line := range ed.Lines {
		b, _ := ed.Constraints(i)
		el := EditorLine{
			LineID:   line.ID,
			Start:    seconds(line.Start),
			End:      seconds(line.End),
			Proposed: ed.Proposed(i),
			MinStart: b.MinStart,
			MinEnd:   b.MinEnd,
			MaxEnd:   b.MaxEnd,
		}
		if !math.IsInf(b.MaxStart, 1) {
			maxStart := b.MaxStart
			el.MaxStart = &maxStart
		}
		if el.Proposed {
			out.Unsaved++
		}
		out.Lines = append(out.Lines, el)
	}
	return out
}

// FromLines converts catalog lines to the init payload shape.
func FromLines(lines []catalog.Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, Line{ID: line.ID, Text: line.Text, LineNumber: line.Number})
	}
	return out
}

// FromTimeline converts a reconstructed timeline.
func FromTimeline(tl timing.Timeline) TimelineResponse {
	resp := TimelineResponse{
		TrackID:  tl.TrackID,
		Duration: tl.Duration,
		Status:   string(tl.Status),
		Complete: tl.Complete,
		Entries:  make([]TimelineEntry, 0, len(tl.Entries)),
	}
	for _, entry := range tl.Entries {
		resp.Entries = append(resp.Entries, TimelineEntry{
			LineID:     entry.LineID,
			LineNumber: entry.Number,
			Text:       entry.Text,
			Start:      seconds(entry.Start),
			End:        seconds(entry.End),
			EndKind:    entry.End.Kind.String(),
		})
	}
	return resp
}

// FromTrack converts a catalog track.
func FromTrack(track *catalog.Track) Track {
	if track == nil {
		return Track{}
	}
	return Track{
		ID:               track.ID,
		FragmentID:       track.FragmentID,
		Title:            track.Title,
		Filename:         track.Filename,
		OriginalFilename: track.OriginalFilename,
		Duration:         track.Duration,
		SortOrder:        track.SortOrder,
		Status:           string(track.Status),
		AIGenerated:      track.AIGenerated,
		Trimmed:          track.IsTrimmed(),
		PauseHints:       track.PauseHints,
		CreatedAt:        formatTime(track.CreatedAt),
		UpdatedAt:        formatTime(track.UpdatedAt),
	}
}

// FromTracks converts a list of catalog tracks.
func FromTracks(tracks []catalog.Track) []Track {
	out := make([]Track, 0, len(tracks))
	for i := range tracks {
		out = append(out, FromTrack(&tracks[i]))
	}
	return out
}

// FromFragment converts a fragment and, when given, its lines.
func FromFragment(fragment *catalog.Fragment, lines []catalog.Line) Fragment {
	if fragment == nil {
		return Fragment{}
	}
	dto := Fragment{
		ID:        fragment.ID,
		Title:     fragment.Title,
		CreatedAt: formatTime(fragment.CreatedAt),
	}
	if len(lines) > 0 {
		dto.Lines = FromLines(lines)
	}
	return dto
}

// FromHealthSummary converts catalog counts.
func FromHealthSummary(summary catalog.HealthSummary) CatalogSummary {
	return CatalogSummary{
		Fragments:    summary.Fragments,
		Lines:        summary.Lines,
		Tracks:       summary.Tracks,
		DraftTracks:  summary.DraftTracks,
		ActiveTracks: summary.ActiveTracks,
		Timings:      summary.Timings,
	}
}

// FromDependencies converts binary availability checks.
func FromDependencies(statuses []preflight.BinaryStatus) []DependencyStatus {
	out := make([]DependencyStatus, len(statuses))
	for i, dep := range statuses {
		out[i] = DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		}
	}
	return out
}

func seconds(end timing.LineEnd) *float64 {
	v, ok := end.Seconds()
	if !ok {
		return nil
	}
	return &v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
