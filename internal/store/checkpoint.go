package store

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"songcal/internal/calendar"
	"songcal/internal/models"
	"songcal/internal/shared"
)

// Checkpoint is the resumable state of a build run: every completed day's
// entry plus the songs skipped so far. The builder flushes it periodically
// so an interrupted run restarts where it stopped instead of from day 1.
type Checkpoint struct {
	RunID   string               `json:"run_id"`
	Mapping calendar.Mapping     `json:"mapping"`
	Skipped []models.SkippedSong `json:"skipped"`
	SavedAt time.Time            `json:"saved_at"`
}

// NewCheckpoint returns an empty checkpoint with a fresh run ID.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{RunID: shared.GenerateID(), Mapping: calendar.Mapping{}}
}

// LoadCheckpoint reads a checkpoint file. A missing file means a fresh run;
// a corrupt file is logged and treated the same way rather than aborting,
// since the worst outcome is redoing work already done.
func LoadCheckpoint(path string, logger *log.Logger) *Checkpoint {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("checkpoint unreadable, starting fresh", "path", path, "error", err)
		}
		return NewCheckpoint()
	}

	cp := NewCheckpoint()
	if err := shared.UnmarshalJSON(raw, cp); err != nil {
		logger.Warn("checkpoint corrupt, starting fresh", "path", path, "error", err)
		return NewCheckpoint()
	}
	if cp.Mapping == nil {
		cp.Mapping = calendar.Mapping{}
	}
	if cp.RunID == "" {
		cp.RunID = shared.GenerateID()
	}
	return cp
}

// Save writes the checkpoint atomically.
func (c *Checkpoint) Save(path string) error {
	c.SavedAt = time.Now().UTC()
	data, err := shared.MarshalJSON(c, true)
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	return writeAtomic(path, data)
}

// RemoveCheckpoint deletes a checkpoint file once a run has fully landed in
// the calendar document. A missing file is not an error.
func RemoveCheckpoint(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing checkpoint: %w", err)
	}
	return nil
}
