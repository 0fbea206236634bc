package timing

import (
	"context"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"stanza/internal/catalog"
	"stanza/internal/logging"
	"stanza/internal/services"
)

const component = "timing"

// DefaultAudioURLPrefix is the public path audio files are served under.
const DefaultAudioURLPrefix = "uploads/audio"

// Options configures an Engine.
type Options struct {
	// StrictNeighbors additionally rejects an end-time at or above the next
	// line's stored end.
	StrictNeighbors bool
	// AudioURLPrefix is prepended to "<fragment>/<file>" in init payloads.
	// Empty means DefaultAudioURLPrefix.
	AudioURLPrefix string
	// Logger receives component logs; nil discards them.
	Logger *slog.Logger
}

// Engine validates and persists per-line end-times. Calls on the same track
// are serialized; each call runs inside one storage transaction.
type Engine struct {
	tx     Transactor
	opts   Options
	logger *slog.Logger
	locks  *trackLocks
}

// NewEngine constructs an engine over the given transactor.
func NewEngine(tx Transactor, opts Options) *Engine {
	if strings.TrimSpace(opts.AudioURLPrefix) == "" {
		opts.AudioURLPrefix = DefaultAudioURLPrefix
	}
	return &Engine{
		tx:     tx,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, component),
		locks:  newTrackLocks(),
	}
}

// InitView is the data an editing session starts from.
type InitView struct {
	TrackID       int64
	AudioURL      string
	TotalDuration float64
	Status        catalog.Status
	Lines         []catalog.Line
	// Ends holds every known end-time keyed by line id. The last line is always
	// present with the track duration.
	Ends map[int64]float64
	// PauseHints are advisory split candidates from the pause detector.
	PauseHints []float64
	Sequence   Sequence
}

// InitData loads the lines, known end-times, and audio location of a track.
func (e *Engine) InitData(ctx context.Context, trackID int64) (InitView, error) {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "init")
	var view InitView
	err := e.tx.WithinTx(ctx, func(repo Repository) error {
		snap, err := loadSnapshot(ctx, repo, trackID)
		if err != nil {
			return err
		}
		view = InitView{
			TrackID:       trackID,
			AudioURL:      e.AudioURL(snap.track),
			TotalDuration: snap.track.Duration,
			Status:        snap.track.Status,
			Lines:         snap.lines,
			Ends:          snap.seq.EndMap(),
			PauseHints:    append([]float64(nil), snap.track.PauseHints...),
			Sequence:      snap.seq,
		}
		return nil
	})
	if err != nil {
		e.logFailure(ctx, "init data failed", err)
		return InitView{}, err
	}
	return view, nil
}

// UpsertLineEnd stores the end-time of one non-last line.
func (e *Engine) UpsertLineEnd(ctx context.Context, trackID, lineID int64, end float64) error {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "upsert_line_end")
	release := e.locks.acquire(trackID)
	defer release()

	err := e.tx.WithinTx(ctx, func(repo Repository) error {
		snap, err := loadSnapshot(ctx, repo, trackID)
		if err != nil {
			return err
		}
		index := snap.seq.Index(lineID)
		if err := CheckLineEnd(snap.seq, index, end, e.opts.StrictNeighbors); err != nil {
			return err
		}
		if err := repo.UpsertTiming(ctx, trackID, lineID, end); err != nil {
			return services.Wrap(services.ErrTransient, component, "upsert line end", "write timing", err)
		}
		return nil
	})
	if err != nil {
		e.logFailure(ctx, "line end rejected", err, logging.Int64(logging.FieldLineID, lineID), logging.Float64("end_time", end))
		return err
	}
	e.logger.Debug("line end stored",
		logging.Args(append(logging.ContextFields(ctx),
			logging.Int64(logging.FieldLineID, lineID),
			logging.Float64("end_time", end),
		)...)...,
	)
	return nil
}

// FinalizeTrack validates that the track's timings are complete and
// consistent and marks it active. Finalizing an active track succeeds again
// when its timings are unchanged.
func (e *Engine) FinalizeTrack(ctx context.Context, trackID int64) error {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "finalize")
	release := e.locks.acquire(trackID)
	defer release()

	err := e.tx.WithinTx(ctx, func(repo Repository) error {
		snap, err := loadSnapshot(ctx, repo, trackID)
		if err != nil {
			return err
		}
		if err := CheckComplete(snap.seq); err != nil {
			return err
		}
		if _, err := repo.SetTrackStatus(ctx, trackID, catalog.StatusActive); err != nil {
			return services.Wrap(services.ErrTransient, component, "finalize", "update status", err)
		}
		return nil
	})
	if err != nil {
		e.logFailure(ctx, "finalize rejected", err)
		return err
	}
	e.logger.Info("track finalized",
		logging.Args(append(logging.ContextFields(ctx),
			logging.String(logging.FieldEventType, "track_finalized"),
		)...)...,
	)
	return nil
}

// ReopenTrack moves an active track back to draft. Timings are kept.
func (e *Engine) ReopenTrack(ctx context.Context, trackID int64) error {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "reopen")
	release := e.locks.acquire(trackID)
	defer release()

	err := e.tx.WithinTx(ctx, func(repo Repository) error {
		track, err := repo.Track(ctx, trackID)
		if err != nil {
			return services.Wrap(services.ErrTransient, component, "reopen", "read track", err)
		}
		if track == nil {
			return services.Reject(services.ErrNotFound, "track not found")
		}
		if track.Status != catalog.StatusActive {
			return services.Reject(services.ErrInvalidState, "track is not active")
		}
		if _, err := repo.SetTrackStatus(ctx, trackID, catalog.StatusDraft); err != nil {
			return services.Wrap(services.ErrTransient, component, "reopen", "update status", err)
		}
		return nil
	})
	if err != nil {
		e.logFailure(ctx, "reopen rejected", err)
		return err
	}
	e.logger.Info("track reopened",
		logging.Args(append(logging.ContextFields(ctx),
			logging.String(logging.FieldEventType, "track_reopened"),
		)...)...,
	)
	return nil
}

// Timeline reconstructs the start and end of every line of a track.
func (e *Engine) Timeline(ctx context.Context, trackID int64) (Timeline, error) {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "timeline")
	var timeline Timeline
	err := e.tx.WithinTx(ctx, func(repo Repository) error {
		snap, err := loadSnapshot(ctx, repo, trackID)
		if err != nil {
			return err
		}
		timeline = buildTimeline(snap)
		return nil
	})
	if err != nil {
		e.logFailure(ctx, "timeline failed", err)
		return Timeline{}, err
	}
	return timeline, nil
}

// AudioURL returns the public location of a track's current audio file.
func (e *Engine) AudioURL(track *catalog.Track) string {
	if track == nil {
		return ""
	}
	return path.Join(e.opts.AudioURLPrefix, strconv.FormatInt(track.FragmentID, 10), track.Filename)
}

func (e *Engine) logFailure(ctx context.Context, msg string, err error, attrs ...logging.Attr) {
	attrs = append(logging.ContextFields(ctx), attrs...)
	if services.IsClientError(err) {
		attrs = append(attrs, logging.String("reason", services.Message(err)))
		e.logger.Debug(msg, logging.Args(attrs...)...)
		return
	}
	attrs = append(attrs, logging.Error(err))
	logging.ErrorWithContext(e.logger, msg, "timing_storage_error", attrs...)
}
