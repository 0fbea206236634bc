package pausedetect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the detector's JSON output.
type Result struct {
	Success bool      `json:"success"`
	Splits  []float64 `json:"splits"`
	Error   string    `json:"error"`
}

// Runner executes a detection. limit <= 0 asks for every pause found.
type Runner interface {
	Detect(ctx context.Context, audioPath string, limit int) (Result, error)
}

// Command runs the detector binary as `<binary> <file> --json [--num_lines N]`.
type Command struct {
	Binary string
}

// Detect executes the detector and decodes its output.
func (c Command) Detect(ctx context.Context, audioPath string, limit int) (Result, error) {
	binary := strings.TrimSpace(c.Binary)
	if binary == "" {
		return Result{}, errors.New("pause detector binary not configured")
	}
	if _, err := os.Stat(audioPath); err != nil {
		return Result{}, fmt.Errorf("audio file: %w", err)
	}
	args := []string{audioPath, "--json"}
	if limit > 0 {
		args = append(args, "--num_lines", strconv.Itoa(limit))
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	var result Result
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &result); err != nil {
		if runErr != nil {
			return Result{}, fmt.Errorf("pause detector: %w: %s", runErr, strings.TrimSpace(stderr.String()))
		}
		return Result{}, fmt.Errorf("pause detector output: %w", err)
	}
	if runErr != nil || !result.Success {
		msg := strings.TrimSpace(result.Error)
		if msg == "" {
			msg = "unknown error"
		}
		if runErr != nil {
			return Result{}, fmt.Errorf("pause detector failed: %s: %w", msg, runErr)
		}
		return Result{}, fmt.Errorf("pause detector failed: %s", msg)
	}
	return result, nil
}
