// Package ffmpeg wraps the ffmpeg invocations used to edit narration audio.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Trim copies the [start, end) range of source into dest without re-encoding.
// A partially written dest is removed on failure.
func Trim(ctx context.Context, ffmpegBinary, source, dest string, start, end float64) error {
	if start < 0 || end <= start {
		return fmt.Errorf("ffmpeg trim: invalid range %.3f-%.3f", start, end)
	}
	if strings.TrimSpace(source) == "" || strings.TrimSpace(dest) == "" {
		return errors.New("ffmpeg trim: empty path")
	}
	if ffmpegBinary = strings.TrimSpace(ffmpegBinary); ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-ss", fmt.Sprintf("%.3f", start),
		"-to", fmt.Sprintf("%.3f", end),
		"-c", "copy",
		dest,
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("ffmpeg trim: %w: %s", err, strings.TrimSpace(string(output)))
	}
	if _, err := os.Stat(dest); err != nil {
		return fmt.Errorf("ffmpeg trim: output missing: %w", err)
	}
	return nil
}
