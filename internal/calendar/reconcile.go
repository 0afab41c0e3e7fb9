package calendar

import (
	"fmt"
	"strconv"

	"songcal/internal/models"
	"songcal/internal/shared"
)

// Removed records a calendar entry whose song left the library playlist.
type Removed struct {
	Day    int
	Name   string
	Artist string
	PID    string
}

// PIDUpdate records a song whose persistent ID changed between library
// exports. Identity is the normalized name|artist key, not the PID itself.
type PIDUpdate struct {
	Day    int
	Name   string
	Artist string
	OldPID string
	NewPID string
}

// Reconcile aligns the mapping with a freshly-read playlist. Songs no longer
// present are removed, songs whose persistent ID changed are migrated to the
// new PID, and surviving days are renumbered 1..M with their titles rewritten.
// Migrations are applied before removals so a song that both moved and
// survived keeps its slot.
func Reconcile(m Mapping, fresh []models.Song) (Mapping, []Removed, []PIDUpdate) {
	current := make(map[string]string, len(fresh))
	for _, song := range fresh {
		current[shared.SongKey(song.Name, song.Artist)] = song.PID
	}

	out := m.Clone()
	var removals []Removed
	var updates []PIDUpdate
	for _, day := range out.Days() {
		entry := out[DayKey(day)]
		meta := entry.Metadata
		pid, ok := current[shared.SongKey(meta.OriginalName, meta.OriginalArtist)]
		if !ok {
			removals = append(removals, Removed{
				Day:    day,
				Name:   meta.OriginalName,
				Artist: meta.OriginalArtist,
				PID:    entry.PID,
			})
			continue
		}
		if pid != entry.PID {
			updates = append(updates, PIDUpdate{
				Day:    day,
				Name:   meta.OriginalName,
				Artist: meta.OriginalArtist,
				OldPID: entry.PID,
				NewPID: pid,
			})
		}
	}

	for _, update := range updates {
		entry := out[DayKey(update.Day)]
		entry.PID = update.NewPID
		out[DayKey(update.Day)] = entry
	}
	for _, removal := range removals {
		delete(out, DayKey(removal.Day))
	}

	return renumber(out), removals, updates
}

// renumber compacts surviving days to 1..M in their original relative order,
// rewriting each title to its new day number.
func renumber(m Mapping) Mapping {
	out := make(Mapping, len(m))
	for i, day := range m.Days() {
		entry := m[DayKey(day)]
		entry.Title = fmt.Sprintf("Day %d", i+1)
		out[DayKey(i+1)] = entry
	}
	return out
}

// MigratePins rewrites pin targets whose persistent IDs changed during
// reconciliation. Pins are keyed by PID value, so without this step a
// migrated song's pin would silently point at nothing on the next assign.
func MigratePins(pins PinSet, updates []PIDUpdate) (PinSet, int) {
	byOld := make(map[string]string, len(updates))
	for _, update := range updates {
		byOld[update.OldPID] = update.NewPID
	}

	out := pins.Clone()
	migrated := 0
	for _, day := range pins.Days() {
		key := strconv.Itoa(day)
		if newPID, ok := byOld[out[key]]; ok {
			out[key] = newPID
			migrated++
		}
	}
	return out, migrated
}
