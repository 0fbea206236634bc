package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTiming()
	c.normalizeMedia()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AudioDir) == "" {
		c.Paths.AudioDir = defaultAudioDir
	}
	if c.Paths.AudioDir, err = expandPath(c.Paths.AudioDir); err != nil {
		return fmt.Errorf("paths.audio_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("STANZA_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeTiming() {
	if c.Timing.MinDuration == 0 {
		c.Timing.MinDuration = defaultMinDuration
	}
	if c.Timing.FirstWindowFactor == 0 {
		c.Timing.FirstWindowFactor = defaultFirstWindowFactor
	}
}

func (c *Config) normalizeMedia() {
	c.Media.FFprobeBinary = strings.TrimSpace(c.Media.FFprobeBinary)
	if c.Media.FFprobeBinary == "" {
		c.Media.FFprobeBinary = defaultFFprobeBinary
	}
	c.Media.FFmpegBinary = strings.TrimSpace(c.Media.FFmpegBinary)
	if c.Media.FFmpegBinary == "" {
		c.Media.FFmpegBinary = defaultFFmpegBinary
	}
	c.Media.PauseDetectorBinary = strings.TrimSpace(c.Media.PauseDetectorBinary)
	if c.Media.PauseDetectorBinary == "" {
		c.Media.PauseDetectorBinary = defaultPauseDetectorBinary
	}
	if c.Media.ProbeTimeout <= 0 {
		c.Media.ProbeTimeout = defaultProbeTimeout
	}
	if c.Media.TrimTimeout <= 0 {
		c.Media.TrimTimeout = defaultTrimTimeout
	}
	if c.Media.PauseTimeout <= 0 {
		c.Media.PauseTimeout = defaultPauseTimeout
	}
	if c.Media.MaxUploadMB <= 0 {
		c.Media.MaxUploadMB = defaultMaxUploadMB
	}

	formats := make([]string, 0, len(c.Media.AllowedFormats))
	seen := make(map[string]struct{}, len(c.Media.AllowedFormats))
	for _, format := range c.Media.AllowedFormats {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		formats = append(formats, normalized)
	}
	if len(formats) == 0 {
		formats = append(formats, defaultAllowedFormats...)
	}
	c.Media.AllowedFormats = formats
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
