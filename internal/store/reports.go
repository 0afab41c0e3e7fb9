package store

import (
	"fmt"
	"os"

	"songcal/internal/models"
	"songcal/internal/shared"
)

// LoadSkipped reads the skipped-songs report. A missing file yields an
// empty list.
func LoadSkipped(path string) ([]models.SkippedSong, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading skipped songs: %w", err)
	}

	var skipped []models.SkippedSong
	if err := shared.UnmarshalJSON(raw, &skipped); err != nil {
		return nil, fmt.Errorf("parsing skipped songs %s: %w", path, err)
	}
	return skipped, nil
}

// SaveSkipped writes the skipped-songs report atomically. An empty list
// still writes a file, so a clean run leaves an explicit "[]" behind.
func SaveSkipped(path string, skipped []models.SkippedSong) error {
	if skipped == nil {
		skipped = []models.SkippedSong{}
	}
	data, err := shared.MarshalJSON(skipped, true)
	if err != nil {
		return fmt.Errorf("encoding skipped songs: %w", err)
	}
	return writeAtomic(path, data)
}
