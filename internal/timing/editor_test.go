package timing

import (
	"math"
	"testing"

	"stanza/internal/catalog"
)

func editorView(total float64, hints []float64, ends map[int64]float64, count int) InitView {
	lines := make([]catalog.Line, count)
	for i := range lines {
		lines[i] = catalog.Line{ID: int64(i + 1), Number: i + 1, Text: "line"}
	}
	if ends == nil {
		ends = map[int64]float64{}
	}
	ends[int64(count)] = total
	return InitView{TotalDuration: total, Lines: lines, Ends: ends, PauseHints: hints}
}

func endOf(t *testing.T, ed *Editor, index int) float64 {
	t.Helper()
	v, ok := ed.Lines[index].End.Seconds()
	if !ok {
		t.Fatalf("line %d end is unset", index)
	}
	return v
}

func startOf(t *testing.T, ed *Editor, index int) float64 {
	t.Helper()
	v, ok := ed.Lines[index].Start.Seconds()
	if !ok {
		t.Fatalf("line %d start is unset", index)
	}
	return v
}

func mustConstraints(t *testing.T, ed *Editor, index int) Bounds {
	t.Helper()
	b, ok := ed.Constraints(index)
	if !ok {
		t.Fatalf("no bounds for line %d", index)
	}
	return b
}

func TestNewEditorProposesFromHints(t *testing.T) {
	ed := NewEditor(editorView(12, []float64{3.456, 7.1, 10}, nil, 3), EditorOptions{})

	if got := endOf(t, ed, 0); got != 3.46 {
		t.Fatalf("first proposal = %v, want 3.46", got)
	}
	if got := startOf(t, ed, 1); got != 3.46 {
		t.Fatalf("second start = %v", got)
	}
	if got := endOf(t, ed, 1); got != 7.1 {
		t.Fatalf("second proposal = %v, want 7.1", got)
	}
	if ed.Lines[2].End != Fixed(12) {
		t.Fatalf("last end = %+v", ed.Lines[2].End)
	}
}

func TestNewEditorKeepsStoredEnds(t *testing.T) {
	ed := NewEditor(editorView(12, []float64{2, 8}, map[int64]float64{1: 5}, 3), EditorOptions{})
	if got := endOf(t, ed, 0); got != 5 {
		t.Fatalf("stored end replaced: %v", got)
	}
	if got := endOf(t, ed, 1); got != 8 {
		t.Fatalf("hint after start 5 should be 8, got %v", got)
	}
}

func TestNewEditorDefaultWindowWithoutHints(t *testing.T) {
	ed := NewEditor(editorView(12, nil, nil, 3), EditorOptions{})
	if got := endOf(t, ed, 0); got != 2.5 {
		t.Fatalf("default window = %v, want 2.5", got)
	}
	if got := startOf(t, ed, 1); got != 2.5 {
		t.Fatalf("second start = %v", got)
	}
	if ed.Lines[1].End.Known() {
		t.Fatalf("only the first line gets a default window, got %+v", ed.Lines[1].End)
	}

	short := NewEditor(editorView(1.2, nil, nil, 2), EditorOptions{})
	if got := endOf(t, short, 0); got != 1.2 {
		t.Fatalf("default window must not exceed total, got %v", got)
	}
}

func TestEditorSelectProposesClampedWindow(t *testing.T) {
	ed := NewEditor(editorView(12, nil, nil, 4), EditorOptions{})
	if !ed.Select(1) {
		t.Fatal("line with known start should be selectable")
	}
	if got := endOf(t, ed, 1); got != 5 {
		t.Fatalf("second proposal = %v, want 5", got)
	}
	if got := startOf(t, ed, 2); got != 5 {
		t.Fatalf("propagated start = %v", got)
	}
	if ed.Select(3) {
		t.Fatal("line with unknown start must not be selectable")
	}

	tight := NewEditor(editorView(4, nil, map[int64]float64{1: 2}, 4), EditorOptions{})
	tight.Select(1)
	if got := endOf(t, tight, 1); got != 3 {
		t.Fatalf("proposal must leave room for remaining lines, got %v", got)
	}
}

func TestEditorConstraints(t *testing.T) {
	ed := NewEditor(editorView(10, nil, map[int64]float64{1: 2, 2: 5, 3: 8}, 4), EditorOptions{})

	first := mustConstraints(t, ed, 0)
	if first.MinStart != 0 || first.MinEnd != 0.5 || first.MaxEnd != 4.5 {
		t.Fatalf("first bounds = %+v", first)
	}
	mid := mustConstraints(t, ed, 1)
	if mid.MinStart != 0.5 || mid.MaxStart != 4.5 || mid.MinEnd != 2.5 || mid.MaxEnd != 7.5 {
		t.Fatalf("middle bounds = %+v", mid)
	}
	last := mustConstraints(t, ed, 3)
	if last.MinEnd != 9.5 || last.MaxEnd != 10 {
		t.Fatalf("last bounds = %+v", last)
	}

	open := NewEditor(editorView(10, nil, nil, 3), EditorOptions{})
	b := mustConstraints(t, open, 1)
	if !math.IsInf(b.MaxStart, 1) {
		t.Fatalf("unknown end leaves max start open, got %v", b.MaxStart)
	}
	if b.MaxEnd != 9.5 {
		t.Fatalf("max end must reserve the remaining line, got %v", b.MaxEnd)
	}
}

func TestEditorPropagation(t *testing.T) {
	ed := NewEditor(editorView(10, nil, map[int64]float64{1: 2, 2: 5}, 3), EditorOptions{})

	if got, _ := ed.SetEnd(0, 3.333); got != 3.33 {
		t.Fatalf("SetEnd = %v", got)
	}
	if got := startOf(t, ed, 1); got != 3.33 {
		t.Fatalf("end edit must move next start, got %v", got)
	}

	if got, _ := ed.SetEnd(0, 9.9); got != 4.5 {
		t.Fatalf("end must clamp to next end minus minimum, got %v", got)
	}
	if got, _ := ed.SetEnd(2, 3); got != 10 {
		t.Fatalf("last line end is fixed, got %v", got)
	}
}

func TestEditorRejectsUnknownIndex(t *testing.T) {
	ed := NewEditor(editorView(10, nil, nil, 2), EditorOptions{})

	if _, ok := ed.Constraints(5); ok {
		t.Fatal("Constraints accepted an index past the last line")
	}
	if _, ok := ed.Constraints(-1); ok {
		t.Fatal("Constraints accepted a negative index")
	}
	if _, ok := ed.SetEnd(5, 1); ok {
		t.Fatal("SetEnd accepted an index past the last line")
	}
	if _, _, ok := ed.Drag(2, 1, 2); ok {
		t.Fatal("Drag accepted an index past the last line")
	}
	if ed.Select(7) || ed.Proposed(7) {
		t.Fatal("Select and Proposed must ignore unknown indexes")
	}
	if ed.IndexOf(99) != -1 || ed.IndexOf(2) != 1 {
		t.Fatalf("IndexOf mismatch: %d %d", ed.IndexOf(99), ed.IndexOf(2))
	}
}

func TestEditorProposedTracksUnsavedEnds(t *testing.T) {
	ed := NewEditor(editorView(12, []float64{3, 7}, map[int64]float64{1: 2}, 3), EditorOptions{})
	if ed.Proposed(0) {
		t.Fatal("saved end reported as proposed")
	}
	if !ed.Proposed(1) {
		t.Fatalf("hint-based end should be proposed: %+v", ed.Lines[1].End)
	}
	if ed.Proposed(2) {
		t.Fatal("fixed last line is never proposed")
	}
}

func TestEditorDragKeepsMinimumDuration(t *testing.T) {
	ed := NewEditor(editorView(10, nil, map[int64]float64{1: 2, 2: 5}, 3), EditorOptions{})

	start, end, _ := ed.Drag(1, 2, 2.2)
	if start != 2 || end != 2.5 {
		t.Fatalf("end drag = (%v, %v), want (2, 2.5)", start, end)
	}
	if got := startOf(t, ed, 2); got != 2.5 {
		t.Fatalf("drag must propagate end, got %v", got)
	}

	start, end, _ = ed.Drag(1, 2.3, 2.5)
	if start != 2 || end != 2.5 {
		t.Fatalf("start drag = (%v, %v), want (2, 2.5)", start, end)
	}
	if got := endOf(t, ed, 0); got != 2 {
		t.Fatalf("drag must propagate start, got %v", got)
	}
}

func TestEditorAllCompleteMirrorsFinalize(t *testing.T) {
	ed := NewEditor(editorView(10, nil, nil, 3), EditorOptions{})
	if ed.AllComplete() {
		t.Fatal("second line has no end yet")
	}
	ed.Select(1)
	if !ed.AllComplete() {
		t.Fatalf("expected complete: %+v", ed.Lines)
	}
	if CheckComplete(ed.Sequence()) != nil {
		t.Fatal("editor and finalize disagree")
	}

	single := NewEditor(editorView(10, nil, nil, 1), EditorOptions{})
	if single.AllComplete() {
		t.Fatal("single line fragments never finalize")
	}
}

func TestFormatTime(t *testing.T) {
	cases := map[float64]float64{1.004: 1, 1.006: 1.01, 2.5: 2.5, 3.14159: 3.14}
	for in, want := range cases {
		if got := FormatTime(in); got != want {
			t.Fatalf("FormatTime(%v) = %v, want %v", in, got, want)
		}
	}
}
