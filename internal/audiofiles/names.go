package audiofiles

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"stanza/internal/textutil"
)

const trimmedSuffix = "-trimmed"

// GenerateFilename returns "<slug>-<unix>.mp3" for a track title.
func GenerateFilename(title string, now time.Time) string {
	return fmt.Sprintf("%s-%d.mp3", textutil.Slug(title), now.Unix())
}

// TrimmedFilename derives the trimmed sibling of an uploaded filename.
func TrimmedFilename(original string) string {
	ext := filepath.Ext(original)
	return strings.TrimSuffix(original, ext) + trimmedSuffix + ext
}

// extension returns the lowercased extension of name without the dot.
func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.TrimSpace(name)), "."))
}
