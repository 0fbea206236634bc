package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Envelope wraps every API response.
type Envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// Line is one poem line in the init payload.
type Line struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	LineNumber int    `json:"line_number"`
}

// InitResponse is the data an editing session starts from.
type InitResponse struct {
	TrackID       int64     `json:"trackId"`
	AudioURL      string    `json:"audioUrl"`
	TotalDuration float64   `json:"totalDuration"`
	Status        string    `json:"status"`
	Lines         []Line    `json:"lines"`
	Timings       Timings   `json:"timings"`
	PauseHints    []float64 `json:"pause_hints"`
	Editor        Editor    `json:"editor"`
}

// Editor is the editing session seeded from the init data: proposed ends and
// the drag bounds of every line.
type Editor struct {
	// FinalizeEnabled is true once every proposed and stored end would pass
	// finalize. Proposals must be saved before finalize accepts them.
	FinalizeEnabled bool         `json:"finalizeEnabled"`
	Unsaved         int          `json:"unsaved"`
	Lines           []EditorLine `json:"lines"`
}

// EditorLine is one line's editable region. MaxStart is null while the
// line's end is unknown.
type EditorLine struct {
	LineID   int64    `json:"lineId"`
	Start    *float64 `json:"start"`
	End      *float64 `json:"end"`
	Proposed bool     `json:"proposed"`
	MinStart float64  `json:"minStart"`
	MaxStart *float64 `json:"maxStart"`
	MinEnd   float64  `json:"minEnd"`
	MaxEnd   float64  `json:"maxEnd"`
}

// Timings maps line id to end-time. JSON object keys are the decimal ids.
type Timings map[int64]float64

// TimelineEntry is one line's interval. Start and End are null when unknown.
type TimelineEntry struct {
	LineID     int64    `json:"lineId"`
	LineNumber int      `json:"lineNumber"`
	Text       string   `json:"text"`
	Start      *float64 `json:"start"`
	End        *float64 `json:"end"`
	EndKind    string   `json:"endKind"`
}

// TimelineResponse is the reconstructed timeline of a track.
type TimelineResponse struct {
	TrackID  int64           `json:"trackId"`
	Duration float64         `json:"duration"`
	Status   string          `json:"status"`
	Complete bool            `json:"complete"`
	Entries  []TimelineEntry `json:"entries"`
}

// Track describes a track in list and detail payloads.
type Track struct {
	ID               int64     `json:"id"`
	FragmentID       int64     `json:"fragmentId"`
	Title            string    `json:"title"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"originalFilename,omitempty"`
	Duration         float64   `json:"duration"`
	SortOrder        int       `json:"sortOrder"`
	Status           string    `json:"status"`
	AIGenerated      bool      `json:"aiGenerated"`
	Trimmed          bool      `json:"trimmed"`
	PauseHints       []float64 `json:"pauseHints,omitempty"`
	CreatedAt        string    `json:"createdAt,omitempty"`
	UpdatedAt        string    `json:"updatedAt,omitempty"`
}

// Fragment describes a fragment with its lines.
type Fragment struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Lines     []Line `json:"lines,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// CatalogSummary mirrors catalog.HealthSummary.
type CatalogSummary struct {
	Fragments    int `json:"fragments"`
	Lines        int `json:"lines"`
	Tracks       int `json:"tracks"`
	DraftTracks  int `json:"draftTracks"`
	ActiveTracks int `json:"activeTracks"`
	Timings      int `json:"timings"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// StatusResponse aggregates daemon runtime information for API consumers.
type StatusResponse struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	DatabasePath  string             `json:"databasePath"`
	LockFilePath  string             `json:"lockFilePath"`
	StartedAt     string             `json:"startedAt,omitempty"`
	Catalog       CatalogSummary     `json:"catalog"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	CatalogHealth string             `json:"catalogHealth,omitempty"`
}
