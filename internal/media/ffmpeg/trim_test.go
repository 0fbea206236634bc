package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// stubFFmpeg records its arguments and writes the output file named last.
func stubFFmpeg(t *testing.T, exitCode int) (binary, argsFile string) {
	t.Helper()
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	binary = filepath.Join(dir, "ffmpeg")
	script := `#!/bin/sh
echo "$@" > "` + argsFile + `"
for last; do :; done
if [ ` + strconv.Itoa(exitCode) + ` -ne 0 ]; then
  echo partial > "$last"
  echo "boom" >&2
  exit 1
fi
echo trimmed > "$last"
`
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return binary, argsFile
}

func TestTrimInvokesFFmpegWithCopyCodec(t *testing.T) {
	binary, argsFile := stubFFmpeg(t, 0)
	dir := t.TempDir()
	src := filepath.Join(dir, "poem.mp3")
	dst := filepath.Join(dir, "poem-trimmed.mp3")

	if err := Trim(context.Background(), binary, src, dst, 1.5, 10.25); err != nil {
		t.Fatalf("Trim failed: %v", err)
	}
	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := strings.TrimSpace(string(raw))
	for _, want := range []string{"-i " + src, "-ss 1.500", "-to 10.250", "-c copy", dst} {
		if !strings.Contains(args, want) {
			t.Fatalf("args %q missing %q", args, want)
		}
	}
}

func TestTrimRemovesPartialOutput(t *testing.T) {
	binary, _ := stubFFmpeg(t, 1)
	dst := filepath.Join(t.TempDir(), "out.mp3")
	err := Trim(context.Background(), binary, "in.mp3", dst, 0, 2)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected ffmpeg failure with stderr, got %v", err)
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Fatalf("partial output should be removed, stat err=%v", statErr)
	}
}

func TestTrimRejectsInvalidRange(t *testing.T) {
	for _, r := range [][2]float64{{-1, 2}, {3, 3}, {5, 4}} {
		if err := Trim(context.Background(), "ffmpeg", "in.mp3", "out.mp3", r[0], r[1]); err == nil {
			t.Fatalf("expected error for range %v", r)
		}
	}
}
