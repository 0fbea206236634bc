package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stanza/internal/audiofiles"
	"stanza/internal/catalog"
	"stanza/internal/config"
	"stanza/internal/logging"
	"stanza/internal/pausedetect"
	"stanza/internal/preflight"
	"stanza/internal/services"
	"stanza/internal/timing"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

// session bundles what catalog-backed commands need. It is opened per
// command and closed when the command returns.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *catalog.Store
	engine *timing.Engine
	files  *audiofiles.Manager
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag != nil {
		if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
			return level
		}
	}
	return "warn"
}

// cliLogger writes to stderr so command output stays machine-readable.
func (c *commandContext) cliLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:            c.logLevel(),
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func (c *commandContext) withSession(fn func(*session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.cliLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()

	var pauses *pausedetect.Service
	if detectorAvailable(cfg) {
		pauses = pausedetect.NewService(cfg, store, logger)
	}
	s := &session{
		cfg:    cfg,
		logger: logger,
		store:  store,
		engine: timing.NewEngine(timing.CatalogTx(store), timing.Options{
			StrictNeighbors: cfg.Timing.StrictNeighbors,
			Logger:          logger,
		}),
		files: audiofiles.NewManager(cfg, store, pauses, logger),
	}
	return fn(s)
}

func (s *session) editorOptions() timing.EditorOptions {
	return timing.EditorOptions{
		MinDuration:       s.cfg.Timing.MinDuration,
		FirstWindowFactor: s.cfg.Timing.FirstWindowFactor,
	}
}

// openEditor loads a track and seeds an editing session from it.
func (s *session) openEditor(ctx context.Context, trackID int64) (timing.InitView, *timing.Editor, error) {
	view, err := s.engine.InitData(ctx, trackID)
	if err != nil {
		return timing.InitView{}, nil, err
	}
	return view, timing.NewEditor(view, s.editorOptions()), nil
}

// editorIndex resolves a line id to its position in the session.
func editorIndex(ed *timing.Editor, lineID int64) (int, error) {
	index := ed.IndexOf(lineID)
	if index < 0 {
		return -1, services.Reject(services.ErrNotFound, "line does not belong to track fragment")
	}
	return index, nil
}

func detectorAvailable(cfg *config.Config) bool {
	statuses := preflight.CheckBinaries([]preflight.Requirement{{
		Name:    "Pause detector",
		Command: cfg.Media.PauseDetectorBinary,
	}})
	return len(statuses) == 1 && statuses[0].Available
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func stdoutIsTerminal(cmd *cobra.Command) bool {
	return cmd.OutOrStdout() == os.Stdout && shouldColorize(os.Stdout)
}
