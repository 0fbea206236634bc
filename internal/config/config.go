package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	LogDir   string `toml:"log_dir"`
	AudioDir string `toml:"audio_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Timing contains the constants shared by the timing engine and the
// editing surface.
type Timing struct {
	// MinDuration is the shortest narration window a line may occupy, in seconds.
	MinDuration float64 `toml:"min_duration"`
	// FirstWindowFactor multiplies MinDuration to propose the first line's
	// window when no pause hints exist.
	FirstWindowFactor float64 `toml:"first_window_factor"`
	// StrictNeighbors rejects line edits that reach the stored end of the
	// following line. Finalize validates the full sequence either way.
	StrictNeighbors bool `toml:"strict_neighbors"`
}

// Media contains external tool and upload settings.
type Media struct {
	FFprobeBinary       string   `toml:"ffprobe_binary"`
	FFmpegBinary        string   `toml:"ffmpeg_binary"`
	PauseDetectorBinary string   `toml:"pause_detector_binary"`
	ProbeTimeout        int      `toml:"probe_timeout"`
	TrimTimeout         int      `toml:"trim_timeout"`
	PauseTimeout        int      `toml:"pause_timeout"`
	MaxUploadMB         int      `toml:"max_upload_mb"`
	AllowedFormats      []string `toml:"allowed_formats"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for stanza.
//
// Configuration sections by subsystem:
//   - Paths: catalog database, logs, uploaded audio, API bind address
//   - Timing: editor constants and upsert strictness
//   - Media: ffprobe/ffmpeg/pause detector binaries and upload limits
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Timing  Timing  `toml:"timing"`
	Media   Media   `toml:"media"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stanza.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for server operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.AudioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the catalog database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

// MinDuration returns the editor's minimum line window in seconds.
func (c *Config) MinDuration() float64 {
	return c.Timing.MinDuration
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Media.MaxUploadMB) * 1024 * 1024
}

// ProbeTimeout bounds a single ffprobe invocation.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Media.ProbeTimeout) * time.Second
}

// TrimTimeout bounds a single ffmpeg trim invocation.
func (c *Config) TrimTimeout() time.Duration {
	return time.Duration(c.Media.TrimTimeout) * time.Second
}

// PauseTimeout bounds a single pause detector run.
func (c *Config) PauseTimeout() time.Duration {
	return time.Duration(c.Media.PauseTimeout) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML. The API token is masked.
func (c *Config) Encode() ([]byte, error) {
	clone := *c
	if clone.Paths.APIToken != "" {
		clone.Paths.APIToken = "********"
	}
	data, err := toml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
