package timing

import (
	"math"
	"sort"

	"stanza/internal/catalog"
)

// Editor defaults.
const (
	DefaultMinDuration       = 0.5
	DefaultFirstWindowFactor = 5
)

// EditorOptions tunes the proposal and drag rules of an Editor.
type EditorOptions struct {
	MinDuration       float64
	FirstWindowFactor float64
}

func (o EditorOptions) withDefaults() EditorOptions {
	if o.MinDuration <= 0 {
		o.MinDuration = DefaultMinDuration
	}
	if o.FirstWindowFactor <= 0 {
		o.FirstWindowFactor = DefaultFirstWindowFactor
	}
	return o
}

// EditorLine is one line as an editing session sees it.
type EditorLine struct {
	ID     int64
	Number int
	Text   string
	Start  LineEnd
	End    LineEnd
}

// Bounds are the limits an edit of one line is clamped to.
type Bounds struct {
	MinStart float64
	MaxStart float64
	MinEnd   float64
	MaxEnd   float64
}

// Editor models the contract an editing surface honors on top of InitData:
// proposals from pause hints, contiguous start/end propagation, and per-line
// drag bounds that keep room for every remaining line. It never persists.
type Editor struct {
	opts  EditorOptions
	saved map[int64]bool
	Total float64
	Hints []float64
	Lines []EditorLine
}

// NewEditor seeds an editing session from an init view. Unsaved ends are
// proposed from the first pause hint after the line's start; without hints
// only the first line gets a default window.
func NewEditor(view InitView, opts EditorOptions) *Editor {
	opts = opts.withDefaults()
	ed := &Editor{
		opts:  opts,
		saved: make(map[int64]bool, len(view.Ends)),
		Total: view.TotalDuration,
		Hints: sortedHints(view.PauseHints),
	}
	lines := append([]catalog.Line(nil), view.Lines...)
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Number < lines[j].Number })

	ed.Lines = make([]EditorLine, len(lines))
	for i, line := range lines {
		el := EditorLine{ID: line.ID, Number: line.Number, Text: line.Text}
		if end, ok := view.Ends[line.ID]; ok {
			el.End = Stored(FormatTime(end))
			ed.saved[line.ID] = true
		}
		ed.Lines[i] = el
	}
	for i := range ed.Lines {
		if i == 0 {
			ed.Lines[i].Start = Stored(0)
		} else {
			ed.Lines[i].Start = asStored(ed.Lines[i-1].End)
		}
		last := i == len(ed.Lines)-1
		if !ed.Lines[i].End.Known() && !last {
			start, _ := ed.Lines[i].Start.Seconds()
			if hint, ok := ed.NextPause(start); ok {
				ed.Lines[i].End = Stored(hint)
			}
		}
		if last {
			ed.Lines[i].End = Fixed(FormatTime(ed.Total))
		}
	}
	if len(ed.Hints) == 0 && len(ed.Lines) > 0 && !ed.Lines[0].End.Known() {
		start, _ := ed.Lines[0].Start.Seconds()
		proposed := FormatTime(math.Min(ed.Total, start+opts.MinDuration*opts.FirstWindowFactor))
		ed.Lines[0].End = Stored(proposed)
		if len(ed.Lines) > 1 {
			ed.Lines[1].Start = Stored(proposed)
		}
	}
	return ed
}

// IndexOf returns the position of lineID in the session, or -1.
func (ed *Editor) IndexOf(lineID int64) int {
	for i, line := range ed.Lines {
		if line.ID == lineID {
			return i
		}
	}
	return -1
}

// NextPause returns the first hint strictly after start, rounded for display.
func (ed *Editor) NextPause(start float64) (float64, bool) {
	for _, hint := range ed.Hints {
		if hint > start {
			return FormatTime(hint), true
		}
	}
	return 0, false
}

// Constraints returns the drag bounds of the line at index. It reports false
// for an index outside the session.
func (ed *Editor) Constraints(index int) (Bounds, bool) {
	if index < 0 || index >= len(ed.Lines) {
		return Bounds{}, false
	}
	var b Bounds
	line := ed.Lines[index]
	minDur := ed.opts.MinDuration

	if index > 0 {
		if prevStart, ok := ed.Lines[index-1].Start.Seconds(); ok {
			b.MinStart = prevStart + minDur
		}
	}
	b.MaxStart = math.Inf(1)
	if end, ok := line.End.Seconds(); ok {
		b.MaxStart = end - minDur
	}
	if start, ok := line.Start.Seconds(); ok {
		b.MinEnd = start + minDur
	}
	if index == len(ed.Lines)-1 {
		b.MaxEnd = ed.Total
		b.MinEnd = math.Max(b.MinEnd, ed.Total-minDur)
		return b, true
	}
	remaining := float64(len(ed.Lines) - index - 1)
	b.MaxEnd = ed.Total - remaining*minDur
	if nextEnd, ok := ed.Lines[index+1].End.Seconds(); ok {
		b.MaxEnd = math.Min(b.MaxEnd, nextEnd-minDur)
	}
	return b, true
}

// Proposed reports whether the end shown for the line at index is a
// suggestion that has not been saved yet.
func (ed *Editor) Proposed(index int) bool {
	if index < 0 || index >= len(ed.Lines) {
		return false
	}
	line := ed.Lines[index]
	return line.End.Kind == EndStored && !ed.saved[line.ID]
}

// Select prepares the line at index for editing. An unknown end is proposed
// from the next pause hint, or from a default window clamped to the line's
// bounds. It reports false when the line's start is not known yet.
func (ed *Editor) Select(index int) bool {
	if index < 0 || index >= len(ed.Lines) {
		return false
	}
	start, ok := ed.Lines[index].Start.Seconds()
	if !ok {
		return false
	}
	if ed.Lines[index].End.Known() {
		return true
	}
	if index == len(ed.Lines)-1 {
		ed.Lines[index].End = Fixed(ed.Total)
		return true
	}
	end, ok := ed.NextPause(start)
	if !ok {
		b, _ := ed.Constraints(index)
		end = FormatTime(math.Min(b.MaxEnd, math.Max(b.MinEnd, start+ed.opts.MinDuration*ed.opts.FirstWindowFactor)))
	}
	ed.Lines[index].End = Stored(end)
	ed.Lines[index+1].Start = Stored(end)
	return true
}

// SetEnd clamps value to the line's bounds, stores it, and moves the next
// line's start with it. The last line's end cannot be edited. It reports
// false for an index outside the session.
func (ed *Editor) SetEnd(index int, value float64) (float64, bool) {
	b, ok := ed.Constraints(index)
	if !ok {
		return 0, false
	}
	if index == len(ed.Lines)-1 {
		return ed.Total, true
	}
	corrected := clamp(FormatTime(value), b.MinEnd, b.MaxEnd)
	ed.Lines[index].End = Stored(corrected)
	ed.syncEnd(index)
	return corrected, true
}

// Drag applies a region resize. The region keeps at least the minimum
// duration, its start stays at or above the line's minimum start and its end
// at or below the maximum end. It reports false for an index outside the
// session.
func (ed *Editor) Drag(index int, start, end float64) (float64, float64, bool) {
	if index < 0 || index >= len(ed.Lines) {
		return 0, 0, false
	}
	minDur := ed.opts.MinDuration
	last := index == len(ed.Lines)-1
	if index == 0 {
		start = 0
	}
	if last {
		end = ed.Total
	}
	if end-start < minDur {
		current, _ := ed.Lines[index].Start.Seconds()
		if start != current {
			start = end - minDur
		} else {
			end = start + minDur
		}
	}
	b, _ := ed.Constraints(index)
	if start < b.MinStart {
		start = b.MinStart
	}
	if end > b.MaxEnd {
		end = b.MaxEnd
	}
	start, end = FormatTime(start), FormatTime(end)
	ed.Lines[index].Start = Stored(start)
	if last {
		ed.Lines[index].End = Fixed(ed.Total)
	} else {
		ed.Lines[index].End = Stored(end)
	}
	ed.syncStart(index)
	ed.syncEnd(index)
	return start, end, true
}

// Sequence returns the editor's end-times in the form finalize validates.
func (ed *Editor) Sequence() Sequence {
	seq := Sequence{
		Duration: ed.Total,
		LineIDs:  make([]int64, len(ed.Lines)),
		Ends:     make([]LineEnd, len(ed.Lines)),
	}
	for i, line := range ed.Lines {
		seq.LineIDs[i] = line.ID
		if i == len(ed.Lines)-1 {
			seq.Ends[i] = Fixed(ed.Total)
			continue
		}
		seq.Ends[i] = asStored(line.End)
	}
	return seq
}

// AllComplete reports whether finalize would accept the edited timings.
func (ed *Editor) AllComplete() bool {
	if len(ed.Lines) == 0 {
		return false
	}
	return CheckComplete(ed.Sequence()) == nil
}

// FormatTime rounds seconds to two decimals.
func FormatTime(value float64) float64 {
	return math.Round(value*100) / 100
}

func (ed *Editor) syncEnd(index int) {
	if index >= len(ed.Lines)-1 {
		return
	}
	if ed.Lines[index].End.Known() {
		ed.Lines[index+1].Start = asStored(ed.Lines[index].End)
	}
}

func (ed *Editor) syncStart(index int) {
	if index == 0 {
		return
	}
	if ed.Lines[index].Start.Known() {
		ed.Lines[index-1].End = asStored(ed.Lines[index].Start)
	}
}

func asStored(end LineEnd) LineEnd {
	if end.Kind == EndFixed {
		end.Kind = EndStored
	}
	return end
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		value = lo
	}
	if value > hi {
		value = hi
	}
	return value
}

func sortedHints(hints []float64) []float64 {
	out := make([]float64, 0, len(hints))
	for _, h := range hints {
		if !math.IsNaN(h) && !math.IsInf(h, 0) {
			out = append(out, h)
		}
	}
	sort.Float64s(out)
	return out
}
