package config

const (
	defaultConfigPath          = "~/.config/stanza/config.toml"
	defaultDataDir             = "~/.local/share/stanza"
	defaultLogDir              = "~/.local/share/stanza/logs"
	defaultAudioDir            = "~/.local/share/stanza/uploads/audio"
	defaultAPIBind             = "127.0.0.1:7490"
	defaultMinDuration         = 0.5
	defaultFirstWindowFactor   = 5
	defaultFFprobeBinary       = "ffprobe"
	defaultFFmpegBinary        = "ffmpeg"
	defaultPauseDetectorBinary = "audio-pause-detector"
	defaultProbeTimeout        = 30
	defaultTrimTimeout         = 120
	defaultPauseTimeout        = 180
	defaultMaxUploadMB         = 3
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
)

var defaultAllowedFormats = []string{"mp3"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			AudioDir: defaultAudioDir,
			APIBind:  defaultAPIBind,
		},
		Timing: Timing{
			MinDuration:       defaultMinDuration,
			FirstWindowFactor: defaultFirstWindowFactor,
		},
		Media: Media{
			FFprobeBinary:       defaultFFprobeBinary,
			FFmpegBinary:        defaultFFmpegBinary,
			PauseDetectorBinary: defaultPauseDetectorBinary,
			ProbeTimeout:        defaultProbeTimeout,
			TrimTimeout:         defaultTrimTimeout,
			PauseTimeout:        defaultPauseTimeout,
			MaxUploadMB:         defaultMaxUploadMB,
			AllowedFormats:      append([]string(nil), defaultAllowedFormats...),
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
