package pausedetect

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"stanza/internal/catalog"
	"stanza/internal/config"
	"stanza/internal/logging"
	"stanza/internal/services"
)

const component = "pausedetect"

// Service runs detections for tracks and persists the split times.
type Service struct {
	runner  Runner
	store   *catalog.Store
	timeout time.Duration
	logger  *slog.Logger
}

// NewService builds a Service that invokes the configured detector binary.
func NewService(cfg *config.Config, store *catalog.Store, logger *slog.Logger) *Service {
	return NewServiceWithRunner(Command{Binary: cfg.Media.PauseDetectorBinary}, store, cfg.PauseTimeout(), logger)
}

// NewServiceWithRunner builds a Service around a custom runner.
func NewServiceWithRunner(runner Runner, store *catalog.Store, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		runner:  runner,
		store:   store,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, component),
	}
}

// SplitLimit returns the number of splits to ask for: one fewer than the
// line count, and no limit when that would be one or less.
func SplitLimit(lineCount int) int {
	limit := lineCount - 1
	if limit <= 1 {
		return 0
	}
	return limit
}

// DetectAndSave runs the detector on audioPath and stores the splits on the
// track. An empty limited result is retried once without a limit. An empty
// final result is stored as no hints.
func (s *Service) DetectAndSave(ctx context.Context, trackID, fragmentID int64, audioPath string) ([]float64, error) {
	ctx = services.WithOperation(services.WithTrackID(ctx, trackID), "detect_pauses")
	attrs := logging.ContextFields(ctx)

	count, err := s.store.LineCount(ctx, fragmentID)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "detect", "count lines", err)
	}
	limit := SplitLimit(count)
	s.logger.Info("pause detection started", logging.Args(append(attrs,
		logging.Int64(logging.FieldFragmentID, fragmentID),
		logging.Int("num_lines", limit),
		logging.String("file", audioPath),
	)...)...)

	splits, err := s.run(ctx, audioPath, limit)
	if err == nil && len(splits) == 0 && limit > 0 {
		s.logger.Info("empty splits, retrying without limit", logging.Args(append(attrs, logging.Int("num_lines", limit))...)...)
		splits, err = s.run(ctx, audioPath, 0)
	}
	if err != nil {
		logging.WarnWithContext(s.logger, "pause detection failed", "pause_detection_failed",
			append(attrs,
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check pause_detector_binary and that the audio file is readable"),
				logging.String(logging.FieldImpact, "editor opens without pause hints"),
			)...,
		)
		return nil, services.Wrap(services.ErrExternalTool, component, "detect", "run detector", err)
	}

	if err := s.store.SetPauseHints(ctx, trackID, splits); err != nil {
		return nil, services.Wrap(services.ErrTransient, component, "detect", "store hints", err)
	}
	s.logger.Info("pause hints stored", logging.Args(append(attrs,
		logging.Int("splits", len(splits)),
		logging.String(logging.FieldEventType, "pause_hints_stored"),
	)...)...)
	return splits, nil
}

func (s *Service) run(ctx context.Context, audioPath string, limit int) ([]float64, error) {
	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	result, err := s.runner.Detect(runCtx, audioPath, limit)
	if err != nil {
		return nil, err
	}
	return cleanSplits(result.Splits), nil
}

func cleanSplits(splits []float64) []float64 {
	out := make([]float64, 0, len(splits))
	for _, v := range splits {
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0 {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}
