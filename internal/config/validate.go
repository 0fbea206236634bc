package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		return errors.New("paths.audio_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Timing.MinDuration <= 0 || math.IsNaN(c.Timing.MinDuration) || math.IsInf(c.Timing.MinDuration, 0) {
		return errors.New("timing.min_duration must be a positive number of seconds")
	}
	if c.Timing.FirstWindowFactor < 1 {
		return errors.New("timing.first_window_factor must be >= 1")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if err := ensurePositiveMap(map[string]int{
		"media.probe_timeout": c.Media.ProbeTimeout,
		"media.trim_timeout":  c.Media.TrimTimeout,
		"media.pause_timeout": c.Media.PauseTimeout,
		"media.max_upload_mb": c.Media.MaxUploadMB,
	}); err != nil {
		return err
	}
	if len(c.Media.AllowedFormats) == 0 {
		return errors.New("media.allowed_formats must include at least one extension")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
