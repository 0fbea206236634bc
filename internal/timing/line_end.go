package timing

import "fmt"

// EndKind distinguishes how a line's end-time is known.
type EndKind int

const (
	// EndUnset marks a non-last line with no stored timing.
	EndUnset EndKind = iota
	// EndStored marks a non-last line whose end-time came from storage.
	EndStored
	// EndFixed marks the last line of a fragment. Its end is the track duration
	// and never comes from storage.
	EndFixed
)

func (k EndKind) String() string {
	switch k {
	case EndStored:
		return "stored"
	case EndFixed:
		return "fixed"
	default:
		return "unset"
	}
}

// LineEnd is the end-time of one line within a track.
type LineEnd struct {
	Kind  EndKind
	Value float64
}

// Fixed returns the end of a fragment's last line.
func Fixed(duration float64) LineEnd { return LineEnd{Kind: EndFixed, Value: duration} }

// Stored returns a persisted end-time.
func Stored(end float64) LineEnd { return LineEnd{Kind: EndStored, Value: end} }

// Unset returns the end of a line that has not been annotated yet.
func Unset() LineEnd { return LineEnd{Kind: EndUnset} }

// Seconds returns the end-time and whether it is known.
func (e LineEnd) Seconds() (float64, bool) {
	if e.Kind == EndUnset {
		return 0, false
	}
	return e.Value, true
}

// Known reports whether the end-time has a value.
func (e LineEnd) Known() bool { return e.Kind != EndUnset }

func (e LineEnd) String() string {
	if e.Kind == EndUnset {
		return "-"
	}
	return fmt.Sprintf("%.2f", e.Value)
}

// Sequence is the ordered end-times of a track's lines. The last entry is
// always Fixed.
type Sequence struct {
	Duration float64
	LineIDs  []int64
	Ends     []LineEnd
}

// NewSequence builds the per-line variants from stored timings. A timing
// stored for the last line is ignored.
func NewSequence(duration float64, lineIDs []int64, stored map[int64]float64) Sequence {
	ends := make([]LineEnd, len(lineIDs))
	for i, id := range lineIDs {
		if i == len(lineIDs)-1 {
			ends[i] = Fixed(duration)
			continue
		}
		if end, ok := stored[id]; ok {
			ends[i] = Stored(end)
		} else {
			ends[i] = Unset()
		}
	}
	return Sequence{Duration: duration, LineIDs: append([]int64(nil), lineIDs...), Ends: ends}
}

// Index returns the position of lineID in the sequence or -1.
func (s Sequence) Index(lineID int64) int {
	for i, id := range s.LineIDs {
		if id == lineID {
			return i
		}
	}
	return -1
}

// Last returns the index of the fixed last line, or -1 for an empty sequence.
func (s Sequence) Last() int { return len(s.Ends) - 1 }

// Starts derives each line's start. The first line starts at zero; every other
// line starts where its predecessor ends, or is unknown when that end is unset.
func (s Sequence) Starts() []LineEnd {
	starts := make([]LineEnd, len(s.Ends))
	for i := range s.Ends {
		if i == 0 {
			starts[i] = Stored(0)
			continue
		}
		starts[i] = s.Ends[i-1]
		if starts[i].Kind == EndFixed {
			starts[i].Kind = EndStored
		}
	}
	return starts
}

// EndMap returns the known end-times keyed by line id, including the last
// line's fixed end.
func (s Sequence) EndMap() map[int64]float64 {
	out := make(map[int64]float64, len(s.Ends))
	for i, end := range s.Ends {
		if value, ok := end.Seconds(); ok {
			out[s.LineIDs[i]] = value
		}
	}
	return out
}
