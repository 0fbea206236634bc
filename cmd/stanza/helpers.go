package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stanza/internal/api"
	"stanza/internal/services"
)

func parseID(raw, name string) (int64, error) {
	return api.ParseID(raw, name)
}

func parseSeconds(raw, name string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, services.Reject(services.ErrInvalidInput, fmt.Sprintf("invalid %s", name))
	}
	return value, nil
}

func parsePosition(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 1 {
		return 0, services.Reject(services.ErrInvalidInput, "position must be 1 or greater")
	}
	return value, nil
}

// readSource reads a file argument, treating "-" as stdin.
func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
