package ffprobe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", Duration: "12.5"},
			{CodecType: "audio", Duration: "12.75"},
			{CodecType: "data"},
		},
		Format: Format{Duration: "12.80"},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 12.8 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.AudioDurationSeconds() != 12.75 {
		t.Fatalf("unexpected audio duration: %v", result.AudioDurationSeconds())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", Duration: "n/a"}},
		Format:  Format{Duration: "bad"},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.AudioDurationSeconds() != 0 {
		t.Fatalf("expected audio duration 0, got %v", result.AudioDurationSeconds())
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestDurationUsesStub(t *testing.T) {
	stub := writeStub(t, `echo '{"streams":[{"codec_type":"audio","duration":"9.5"}],"format":{"duration":"9.48"}}'`)
	seconds, err := Duration(context.Background(), stub, "/tmp/poem.mp3")
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if seconds != 9.48 {
		t.Fatalf("expected 9.48, got %v", seconds)
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	stub := writeStub(t, `echo '{"streams":[{"codec_type":"audio","duration":"7.25"}],"format":{}}'`)
	seconds, err := Duration(context.Background(), stub, "/tmp/poem.mp3")
	if err != nil {
		t.Fatalf("Duration failed: %v", err)
	}
	if seconds != 7.25 {
		t.Fatalf("expected 7.25, got %v", seconds)
	}
}

func TestDurationErrors(t *testing.T) {
	empty := writeStub(t, `echo '{"streams":[],"format":{"duration":"3.0"}}'`)
	if _, err := Duration(context.Background(), empty, "/tmp/poem.mp3"); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
	silent := writeStub(t, `echo '{"streams":[{"codec_type":"audio"}],"format":{}}'`)
	if _, err := Duration(context.Background(), silent, "/tmp/poem.mp3"); !errors.Is(err, ErrNoDuration) {
		t.Fatalf("expected ErrNoDuration, got %v", err)
	}
	failing := writeStub(t, `echo "invalid data" >&2; exit 1`)
	if _, err := Duration(context.Background(), failing, "/tmp/poem.mp3"); err == nil {
		t.Fatal("expected failure from non-zero exit")
	}
	if _, err := Inspect(context.Background(), empty, " "); err == nil {
		t.Fatal("expected empty path error")
	}
}
