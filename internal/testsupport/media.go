package testsupport

import (
	"path/filepath"
	"testing"

	"stanza/internal/config"
)

// StubFFprobe installs an ffprobe stub that reports the given duration for
// every file and points cfg at it.
func StubFFprobe(t testing.TB, cfg *config.Config, duration string) string {
	t.Helper()
	path := filepath.Join(BaseDir(cfg), "bin", "ffprobe-stub")
	WriteScript(t, path, `echo '{"streams":[{"codec_type":"audio","codec_name":"mp3"}],"format":{"duration":"`+duration+`","format_name":"mp3"}}'
`)
	cfg.Media.FFprobeBinary = path
	return path
}

// StubFFmpeg installs an ffmpeg stub that writes a small file at its last
// argument and points cfg at it. Passing fail makes it exit non-zero.
func StubFFmpeg(t testing.TB, cfg *config.Config, fail bool) string {
	t.Helper()
	path := filepath.Join(BaseDir(cfg), "bin", "ffmpeg-stub")
	body := `for last; do :; done
echo trimmed > "$last"
`
	if fail {
		body = `echo "Invalid data found when processing input" >&2
exit 1
`
	}
	WriteScript(t, path, body)
	cfg.Media.FFmpegBinary = path
	return path
}

// StubPauseDetector installs a pause detector stub that prints splits as
// its JSON result and points cfg at it.
func StubPauseDetector(t testing.TB, cfg *config.Config, splits string) string {
	t.Helper()
	path := filepath.Join(BaseDir(cfg), "bin", "pause-detector-stub")
	WriteScript(t, path, `echo '{"success":true,"splits":[`+splits+`]}'
`)
	cfg.Media.PauseDetectorBinary = path
	return path
}
