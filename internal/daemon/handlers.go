package daemon

import (
	"net/http"

	"stanza/internal/api"
)

func (s *apiServer) handleInit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	raw := query.Get("id")
	if raw == "" {
		raw = query.Get("track_id")
	}
	trackID, err := api.ParseID(raw, "track id")
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	view, err := s.engine.InitData(r.Context(), trackID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeData(w, r, api.FromInitView(view, s.editor))
}

func (s *apiServer) handleLine(w http.ResponseWriter, r *http.Request) {
	var req api.LineRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	trackID, lineID, end, err := req.Validate()
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := s.engine.UpsertLineEnd(r.Context(), trackID, lineID, end); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeData(w, r, nil)
}

func (s *apiServer) handleFinalize(w http.ResponseWriter, r *http.Request) {
	trackID, ok := s.trackFromBody(w, r)
	if !ok {
		return
	}
	if err := s.engine.FinalizeTrack(r.Context(), trackID); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeData(w, r, nil)
}

func (s *apiServer) handleReopen(w http.ResponseWriter, r *http.Request) {
	trackID, ok := s.trackFromBody(w, r)
	if !ok {
		return
	}
	if err := s.engine.ReopenTrack(r.Context(), trackID); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeData(w, r, nil)
}

func (s *apiServer) handleTimeline(w http.ResponseWriter, r *http.Request) {
	trackID, err := api.ParseID(r.PathValue("id"), "track id")
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	tl, err := s.engine.Timeline(r.Context(), trackID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeData(w, r, api.FromTimeline(tl))
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	payload := api.StatusResponse{
		Running:       status.Running,
		PID:           status.PID,
		DatabasePath:  status.DatabasePath,
		LockFilePath:  status.LockFilePath,
		Catalog:       api.FromHealthSummary(status.Catalog),
		Dependencies:  api.FromDependencies(status.Dependencies),
		CatalogHealth: status.CatalogHealth.Detail,
	}
	if !status.StartedAt.IsZero() {
		payload.StartedAt = status.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	}
	s.writeData(w, r, payload)
}

// trackFromBody decodes {"id"} or {"track_id"} and writes the failure itself.
func (s *apiServer) trackFromBody(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req api.TrackRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return 0, false
	}
	trackID, err := req.Track()
	if err != nil {
		s.writeFailure(w, r, err)
		return 0, false
	}
	return trackID, true
}
