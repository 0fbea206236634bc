package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"stanza/internal/services"
)

// Number accepts a JSON number or a numeric string. Form-posting clients
// send both.
type Number struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = Number{}
			return nil
		}
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("not a number: %q", raw)
	}
	*n = Number{Value: value, Set: true}
	return nil
}

// TrackRequest identifies a track by "id" or "track_id".
type TrackRequest struct {
	ID      Number `json:"id"`
	TrackID Number `json:"track_id"`
}

// Track returns the requested track id.
func (r TrackRequest) Track() (int64, error) {
	return ResolveID(r.ID, r.TrackID)
}

// LineRequest stores the end-time of one line.
type LineRequest struct {
	TrackRequest
	LineID  Number `json:"line_id"`
	EndTime Number `json:"end_time"`
}

// Validate checks that every field is present and returns the parsed values.
func (r LineRequest) Validate() (trackID, lineID int64, end float64, err error) {
	trackID, err = r.Track()
	if err != nil {
		return 0, 0, 0, err
	}
	lineID, err = positiveID(r.LineID, "line_id")
	if err != nil {
		return 0, 0, 0, err
	}
	if !r.EndTime.Set {
		return 0, 0, 0, services.Reject(services.ErrInvalidInput, "end_time is required")
	}
	return trackID, lineID, r.EndTime.Value, nil
}

// DecodeJSON reads a request body into dst. Malformed bodies are client errors.
func DecodeJSON(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return services.Reject(services.ErrInvalidInput, "request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return services.Reject(services.ErrInvalidInput, "invalid JSON body: "+err.Error())
	}
	return nil
}

// ResolveID returns the first set id among candidates.
func ResolveID(candidates ...Number) (int64, error) {
	for _, c := range candidates {
		if c.Set {
			return positiveID(c, "id")
		}
	}
	return 0, services.Reject(services.ErrInvalidInput, "track id is required")
}

// ParseID parses a query or path id.
func ParseID(raw, name string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, services.Reject(services.ErrInvalidInput, name+" is required")
	}
	var n Number
	if err := n.UnmarshalJSON([]byte(strconv.Quote(raw))); err != nil {
		return 0, services.Reject(services.ErrInvalidInput, name+" must be a positive integer")
	}
	return positiveID(n, name)
}

func positiveID(n Number, name string) (int64, error) {
	if !n.Set {
		return 0, services.Reject(services.ErrInvalidInput, name+" is required")
	}
	if n.Value < 1 || n.Value != float64(int64(n.Value)) {
		return 0, services.Reject(services.ErrInvalidInput, name+" must be a positive integer")
	}
	return int64(n.Value), nil
}
