package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"stanza/internal/catalog"
	"stanza/internal/services"
	"stanza/internal/timing"
)

func TestFromInitViewEncodesFrontendShape(t *testing.T) {
	view := timing.InitView{
		TrackID:       7,
		AudioURL:      "uploads/audio/3/take-1.mp3",
		TotalDuration: 12,
		Status:        catalog.StatusDraft,
		Lines: []catalog.Line{
			{ID: 11, Number: 1, Text: "one"},
			{ID: 12, Number: 2, Text: "two"},
		},
		Ends: map[int64]float64{12: 12},
	}
	data, err := json.Marshal(FromInitView(view, timing.EditorOptions{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	for _, want := range []string{
		`"audioUrl":"uploads/audio/3/take-1.mp3"`,
		`"totalDuration":12`,
		`{"id":11,"text":"one","line_number":1}`,
		`"timings":{"12":12}`,
		`"pause_hints":[]`,
		`"finalizeEnabled":true`,
		`"unsaved":1`,
		`{"lineId":11,"start":0,"end":2.5,"proposed":true,"minStart":0,"maxStart":2,"minEnd":0.5,"maxEnd":11.5}`,
		`{"lineId":12,"start":2.5,"end":12,"proposed":false,"minStart":0.5,"maxStart":11.5,"minEnd":11.5,"maxEnd":12}`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("payload %s missing %s", got, want)
		}
	}
}

func TestFromEditorLeavesOpenBoundsNull(t *testing.T) {
	view := timing.InitView{
		TotalDuration: 10,
		Lines: []catalog.Line{
			{ID: 1, Number: 1}, {ID: 2, Number: 2}, {ID: 3, Number: 3},
		},
		Ends: map[int64]float64{1: 4, 3: 10},
	}
	ed := FromEditor(timing.NewEditor(view, timing.EditorOptions{}))
	if ed.FinalizeEnabled || ed.Unsaved != 0 {
		t.Fatalf("second line has no end, got %+v", ed)
	}
	second := ed.Lines[1]
	if second.End != nil || second.MaxStart != nil {
		t.Fatalf("unknown end must leave end and max start null: %+v", second)
	}
	if second.MinEnd != 4.5 || second.MaxEnd != 9.5 {
		t.Fatalf("unexpected bounds %+v", second)
	}
	if _, err := json.Marshal(ed); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestFromTimelineUsesNullForUnknown(t *testing.T) {
	tl := timing.Timeline{
		TrackID:  1,
		Duration: 10,
		Entries: []timing.TimelineEntry{
			{LineID: 1, Number: 1, Start: timing.Stored(0), End: timing.Unset()},
			{LineID: 2, Number: 2, Start: timing.Unset(), End: timing.Fixed(10)},
		},
	}
	resp := FromTimeline(tl)
	if resp.Entries[0].End != nil || resp.Entries[1].Start != nil {
		t.Fatalf("unknown values must be nil: %+v", resp.Entries)
	}
	if resp.Entries[1].End == nil || *resp.Entries[1].End != 10 || resp.Entries[1].EndKind != "fixed" {
		t.Fatalf("unexpected last entry %+v", resp.Entries[1])
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{services.Reject(services.ErrNotFound, "track not found"), http.StatusNotFound},
		{services.Reject(services.ErrInvalidInput, "bad"), http.StatusBadRequest},
		{services.Reject(services.ErrInvalidOperation, "last"), http.StatusBadRequest},
		{services.Reject(services.ErrInvalidState, "missing"), http.StatusBadRequest},
		{services.Wrap(services.ErrTransient, "timing", "upsert", "write", errors.New("disk I/O")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Fatalf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFailureHidesInternalDetail(t *testing.T) {
	env := Failure(services.Wrap(services.ErrTransient, "timing", "upsert", "write", errors.New("database is locked")))
	if env.Error != "internal error" || env.Kind != "internal" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	env = Failure(services.Reject(services.ErrInvalidState, "missing timing for line_id=4"))
	if env.Error != "missing timing for line_id=4" || env.Kind != "invalid_state" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestLineRequestAcceptsStringsAndAliases(t *testing.T) {
	var req LineRequest
	if err := DecodeJSON([]byte(`{"track_id":"5","line_id":9,"end_time":"3.25"}`), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	track, line, end, err := req.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if track != 5 || line != 9 || end != 3.25 {
		t.Fatalf("unexpected values %d %d %v", track, line, end)
	}
}

func TestLineRequestRejectsMissingFields(t *testing.T) {
	cases := []string{
		`{"line_id":9,"end_time":1}`,
		`{"id":5,"end_time":1}`,
		`{"id":5,"line_id":9}`,
		`{"id":0,"line_id":9,"end_time":1}`,
		`{"id":1.5,"line_id":9,"end_time":1}`,
	}
	for _, body := range cases {
		var req LineRequest
		if err := DecodeJSON([]byte(body), &req); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		if _, _, _, err := req.Validate(); !errors.Is(err, services.ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", body, err)
		}
	}
	if err := DecodeJSON([]byte(`{"id":`), &LineRequest{}); !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("malformed body should be invalid input, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("42", "id"); err != nil || id != 42 {
		t.Fatalf("ParseID = %d, %v", id, err)
	}
	for _, raw := range []string{"", "abc", "-1", "0"} {
		if _, err := ParseID(raw, "id"); !errors.Is(err, services.ErrInvalidInput) {
			t.Fatalf("ParseID(%q) expected invalid input, got %v", raw, err)
		}
	}
}
