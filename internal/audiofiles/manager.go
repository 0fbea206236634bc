package audiofiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"stanza/internal/catalog"
	"stanza/internal/config"
	"stanza/internal/fileutil"
	"stanza/internal/logging"
	"stanza/internal/media/ffmpeg"
	"stanza/internal/media/ffprobe"
	"stanza/internal/pausedetect"
	"stanza/internal/services"
)

const component = "audiofiles"

// Manager performs track file operations against the catalog.
type Manager struct {
	cfg    *config.Config
	store  *catalog.Store
	pauses *pausedetect.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewManager constructs a Manager. pauses may be nil to skip detection.
func NewManager(cfg *config.Config, store *catalog.Store, pauses *pausedetect.Service, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  store,
		pauses: pauses,
		logger: logging.NewComponentLogger(logger, component),
		now:    time.Now,
	}
}

// Upload describes an incoming recording.
type Upload struct {
	FragmentID int64
	Title      string
	// Name is the client-supplied filename, used only for the format check.
	Name        string
	Body        io.Reader
	AIGenerated bool
	// Position is the 1-based sort position; zero appends.
	Position int
	// DetectPauses runs the pause detector after the track is stored.
	DetectPauses bool
}

// Path returns the absolute location of a fragment's audio file.
func (m *Manager) Path(fragmentID int64, filename string) string {
	return filepath.Join(m.cfg.Paths.AudioDir, strconv.FormatInt(fragmentID, 10), filename)
}

// Add stores an uploaded recording, probes its duration, and inserts a draft
// track at the requested position.
func (m *Manager) Add(ctx context.Context, up Upload) (*catalog.Track, error) {
	ctx = services.WithOperation(ctx, "upload")
	fragment, err := m.store.Fragment(ctx, up.FragmentID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "upload", "read fragment", err)
	}
	if fragment == nil {
		return nil, services.Reject(services.ErrNotFound, "fragment not found")
	}
	if ext := extension(up.Name); !slices.Contains(m.cfg.Media.AllowedFormats, ext) {
		return nil, services.Reject(services.ErrInvalidInput,
			fmt.Sprintf("unsupported audio format %q, allowed: %s", ext, strings.Join(m.cfg.Media.AllowedFormats, ", ")))
	}
	if up.Body == nil {
		return nil, services.Reject(services.ErrInvalidInput, "empty upload")
	}

	filename := GenerateFilename(up.Title, m.now())
	dest := m.Path(up.FragmentID, filename)
	written, err := fileutil.WriteAtomic(dest, up.Body, m.cfg.MaxUploadBytes())
	if errors.Is(err, fileutil.ErrTooLarge) {
		return nil, services.Reject(services.ErrInvalidInput, fmt.Sprintf("file exceeds %d MB limit", m.cfg.Media.MaxUploadMB))
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "upload", "store file", err)
	}
	if written == 0 {
		_ = fileutil.RemoveIfExists(dest)
		return nil, services.Reject(services.ErrInvalidInput, "empty upload")
	}

	duration, err := m.probe(ctx, dest)
	if err != nil {
		_ = fileutil.RemoveIfExists(dest)
		return nil, err
	}
	track, err := m.store.CreateTrack(ctx, catalog.NewTrack{
		FragmentID:  up.FragmentID,
		Filename:    filename,
		Duration:    duration,
		Title:       up.Title,
		AIGenerated: up.AIGenerated,
		Position:    up.Position,
	})
	if err != nil {
		_ = fileutil.RemoveIfExists(dest)
		return nil, catalogError("upload", "create track", err)
	}
	m.logger.Info("track uploaded", logging.Args(
		logging.Int64(logging.FieldTrackID, track.ID),
		logging.Int64(logging.FieldFragmentID, track.FragmentID),
		logging.String("filename", filename),
		logging.Int64("bytes", written),
		logging.Float64("duration", duration),
		logging.String(logging.FieldEventType, "track_uploaded"),
	)...)

	if up.DetectPauses {
		m.detect(ctx, track)
		return m.load(ctx, track.ID)
	}
	return track, nil
}

// Trim cuts the track's audio to [start, end) of the original upload. The
// original is kept for restore and the track's timings are deleted.
func (m *Manager) Trim(ctx context.Context, trackID int64, start, end float64) (*catalog.Track, error) {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "trim")
	track, err := m.load(ctx, trackID)
	if err != nil {
		return nil, err
	}
	original := track.Filename
	if track.IsTrimmed() {
		original = track.OriginalFilename
	}
	if start < 0 || end <= start {
		return nil, services.Reject(services.ErrInvalidInput, "invalid trim range")
	}
	source := m.Path(track.FragmentID, original)
	if !fileutil.Exists(source) {
		return nil, services.Reject(services.ErrInvalidState, "source audio file not found")
	}

	trimmed := TrimmedFilename(original)
	dest := m.Path(track.FragmentID, trimmed)
	trimCtx, cancel := withTimeout(ctx, m.cfg.TrimTimeout())
	defer cancel()
	if err := ffmpeg.Trim(trimCtx, m.cfg.Media.FFmpegBinary, source, dest, start, end); err != nil {
		logging.WarnWithContext(m.logger, "trim failed", "trim_failed", append(logging.ContextFields(ctx),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ffmpeg_binary and the source file"),
			logging.String(logging.FieldImpact, "track audio unchanged"),
		)...)
		return nil, services.Wrap(services.ErrExternalTool, component, "trim", "ffmpeg", err)
	}

	if err := m.store.ReplaceAudio(ctx, trackID, trimmed, original, end-start); err != nil {
		_ = fileutil.RemoveIfExists(dest)
		return nil, catalogError("trim", "update track", err)
	}
	m.logger.Info("track trimmed", logging.Args(append(logging.ContextFields(ctx),
		logging.Float64("start", start),
		logging.Float64("end", end),
		logging.String("filename", trimmed),
		logging.String(logging.FieldEventType, "track_trimmed"),
	)...)...)
	return m.afterReplace(ctx, trackID)
}

// Restore switches a trimmed track back to its original upload, re-probing
// the original's duration and deleting the trimmed file and the timings.
func (m *Manager) Restore(ctx context.Context, trackID int64) (*catalog.Track, error) {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "restore")
	track, err := m.load(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if !track.IsTrimmed() {
		return nil, services.Reject(services.ErrInvalidState, "audio was not trimmed")
	}
	originalPath := m.Path(track.FragmentID, track.OriginalFilename)
	if !fileutil.Exists(originalPath) {
		return nil, services.Reject(services.ErrInvalidState, "original audio file not found")
	}
	duration, err := m.probe(ctx, originalPath)
	if err != nil {
		return nil, err
	}
	if err := m.store.ReplaceAudio(ctx, trackID, track.OriginalFilename, "", duration); err != nil {
		return nil, catalogError("restore", "update track", err)
	}
	m.remove(ctx, m.Path(track.FragmentID, track.Filename))
	m.logger.Info("track restored", logging.Args(append(logging.ContextFields(ctx),
		logging.String("filename", track.OriginalFilename),
		logging.Float64("duration", duration),
		logging.String(logging.FieldEventType, "track_restored"),
	)...)...)
	return m.afterReplace(ctx, trackID)
}

// Delete removes a track, its timings, and its audio files.
func (m *Manager) Delete(ctx context.Context, trackID int64) error {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "delete")
	track, err := m.load(ctx, trackID)
	if err != nil {
		return err
	}
	if err := m.store.DeleteTrack(ctx, trackID); err != nil {
		return catalogError("delete", "delete track", err)
	}
	m.remove(ctx, m.Path(track.FragmentID, track.Filename))
	if track.OriginalFilename != "" && track.OriginalFilename != track.Filename {
		m.remove(ctx, m.Path(track.FragmentID, track.OriginalFilename))
	}
	m.logger.Info("track deleted", logging.Args(append(logging.ContextFields(ctx),
		logging.String(logging.FieldEventType, "track_deleted"),
	)...)...)
	return nil
}

// Move changes a track's 1-based sort position within its fragment.
func (m *Manager) Move(ctx context.Context, trackID int64, position int) error {
	if position < 1 {
		return services.Reject(services.ErrInvalidInput, "position must be 1 or greater")
	}
	if err := m.store.MoveTrack(ctx, trackID, position); err != nil {
		return catalogError("move", "reorder tracks", err)
	}
	return nil
}

// DetectPauses runs the pause detector for a track on demand.
func (m *Manager) DetectPauses(ctx context.Context, trackID int64) ([]float64, error) {
	if m.pauses == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "detect", "pause detection disabled", nil)
	}
	track, err := m.load(ctx, trackID)
	if err != nil {
		return nil, err
	}
	return m.pauses.DetectAndSave(ctx, track.ID, track.FragmentID, m.Path(track.FragmentID, track.Filename))
}

func (m *Manager) afterReplace(ctx context.Context, trackID int64) (*catalog.Track, error) {
	track, err := m.load(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if m.pauses != nil {
		m.detect(ctx, track)
		return m.load(ctx, trackID)
	}
	return track, nil
}

// detect runs pause detection and only logs failures.
func (m *Manager) detect(ctx context.Context, track *catalog.Track) {
	if m.pauses == nil {
		return
	}
	_, _ = m.pauses.DetectAndSave(ctx, track.ID, track.FragmentID, m.Path(track.FragmentID, track.Filename))
}

func (m *Manager) probe(ctx context.Context, path string) (float64, error) {
	probeCtx, cancel := withTimeout(ctx, m.cfg.ProbeTimeout())
	defer cancel()
	duration, err := ffprobe.Duration(probeCtx, m.cfg.Media.FFprobeBinary, path)
	if err != nil {
		logging.WarnWithContext(m.logger, "duration probe failed", "probe_failed", append(logging.ContextFields(ctx),
			logging.String("file", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ffprobe_binary and that the file is valid audio"),
			logging.String(logging.FieldImpact, "audio not stored"),
		)...)
		return 0, services.Wrap(services.ErrExternalTool, component, "probe", "read duration", err)
	}
	return duration, nil
}

func (m *Manager) load(ctx context.Context, trackID int64) (*catalog.Track, error) {
	track, err := m.store.Track(ctx, trackID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "load", "read track", err)
	}
	if track == nil {
		return nil, services.Reject(services.ErrNotFound, "track not found")
	}
	return track, nil
}

func (m *Manager) remove(ctx context.Context, path string) {
	if err := fileutil.RemoveIfExists(path); err != nil {
		logging.WarnWithContext(m.logger, "audio file cleanup failed", "file_cleanup_failed", append(logging.ContextFields(ctx),
			logging.String("file", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the file manually"),
			logging.String(logging.FieldImpact, "orphaned audio file left on disk"),
		)...)
	}
}

func catalogError(operation, message string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return services.Reject(services.ErrNotFound, strings.TrimSpace(err.Error()))
	}
	return services.Wrap(services.ErrTransient, component, operation, message, err)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
