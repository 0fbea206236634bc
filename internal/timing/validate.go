package timing

import (
	"fmt"
	"math"

	"stanza/internal/services"
)

// CheckLineEnd validates a proposed end-time for the line at index. The floor
// is the previous line's stored end, or zero for the first line; an unset
// predecessor imposes no floor. When strict is set the proposal must also stay
// below the next line's stored end.
func CheckLineEnd(seq Sequence, index int, end float64, strict bool) error {
	if index < 0 || index >= len(seq.Ends) {
		return services.Reject(services.ErrNotFound, "line does not belong to track fragment")
	}
	if index == seq.Last() {
		return services.Reject(services.ErrInvalidOperation, "last line end_time is fixed to total duration and cannot be updated")
	}
	if math.IsNaN(end) || math.IsInf(end, 0) || end <= 0 || end > seq.Duration {
		return services.Reject(services.ErrInvalidInput, "invalid end_time bounds")
	}
	floor, hasFloor := 0.0, true
	if index > 0 {
		floor, hasFloor = seq.Ends[index-1].Seconds()
	}
	if hasFloor && end < floor {
		return services.Reject(services.ErrInvalidInput, "end_time cannot be less than previous line end_time")
	}
	if strict && index+1 < seq.Last() {
		if next, ok := seq.Ends[index+1].Seconds(); ok && end >= next {
			return services.Reject(services.ErrInvalidInput, "end_time must be less than next line end_time")
		}
	}
	return nil
}

// CheckComplete validates that every non-last line has a stored end-time,
// that the end-times strictly increase, and that room remains for the last
// line before the track duration.
func CheckComplete(seq Sequence) error {
	if len(seq.Ends) == 0 {
		return services.Reject(services.ErrInvalidState, "no lines to finalize")
	}
	prevEnd := 0.0
	for i := 0; i < seq.Last(); i++ {
		end, ok := seq.Ends[i].Seconds()
		if !ok {
			return services.Reject(services.ErrInvalidState, fmt.Sprintf("missing timing for line_id=%d", seq.LineIDs[i]))
		}
		if end <= prevEnd {
			return services.Reject(services.ErrInvalidState, "timings must be strictly increasing")
		}
		if end <= 0 || end >= seq.Duration {
			return services.Reject(services.ErrInvalidState, "timing end_time out of bounds")
		}
		prevEnd = end
	}
	if prevEnd <= 0 {
		return services.Reject(services.ErrInvalidState, "empty timings")
	}
	if prevEnd >= seq.Duration {
		return services.Reject(services.ErrInvalidState, "last timing must be less than track duration")
	}
	return nil
}
