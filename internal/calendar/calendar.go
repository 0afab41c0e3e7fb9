// package calendar implements the day→song mapping at the center of the
// tool: entry/payload types, the pin-aware assignment engine, and
// reconciliation against a refreshed library playlist.
//
// Every transform in this package is a pure value operation: inputs are
// copied, never mutated, so callers can diff before/after freely.
package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"songcal/internal/models"
	"songcal/internal/shared"
)

// Metadata records where a day's song came from and how well it matched.
type Metadata struct {
	OriginalName   string `json:"original_name"`
	OriginalArtist string `json:"original_artist"`
	MatchedName    string `json:"matched_name"`
	MatchedArtist  string `json:"matched_artist"`
	MatchQuality   string `json:"match_quality"`
}

// Entry is one day of the calendar document.
//
// Title and Message belong to the day; the remaining fields are the movable
// [Payload] that assignment shuffles between days.
type Entry struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Src      string   `json:"src"`
	Embed    string   `json:"song_embed"`
	PID      string   `json:"PID"`
	Metadata Metadata `json:"metadata"`
}

// Payload is the song-bearing portion of an [Entry].
type Payload struct {
	Src      string
	Embed    string
	PID      string
	Metadata Metadata
}

// Payload extracts the movable fields of the entry.
func (e Entry) Payload() Payload {
	return Payload{Src: e.Src, Embed: e.Embed, PID: e.PID, Metadata: e.Metadata}
}

// WithPayload returns a copy of the entry carrying p.
func (e Entry) WithPayload(p Payload) Entry {
	e.Src = p.Src
	e.Embed = p.Embed
	e.PID = p.PID
	e.Metadata = p.Metadata
	return e
}

// Summary returns a human-readable one-liner for the entry's song.
func (e Entry) Summary() string {
	return fmt.Sprintf("'%s' by %s", e.Metadata.OriginalName, e.Metadata.OriginalArtist)
}

// Mapping is the day→entry collection, keyed "day1".."dayN" with no gaps.
type Mapping map[string]Entry

// DayKey formats a 1-based day index as its document key.
func DayKey(day int) string {
	return fmt.Sprintf("day%d", day)
}

// ParseDayKey extracts the day index from a document key.
func ParseDayKey(key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "day"))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: day key %q", shared.ErrInvalidDay, key)
	}
	return n, nil
}

// Days returns the populated day indices in ascending order.
func (m Mapping) Days() []int {
	days := make([]int, 0, len(m))
	for key := range m {
		if n, err := ParseDayKey(key); err == nil {
			days = append(days, n)
		}
	}
	sort.Ints(days)
	return days
}

// Clone returns a copy of the mapping.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for key, entry := range m {
		out[key] = entry
	}
	return out
}

// PIDIndex returns persistent ID → day key for every entry carrying a PID.
func (m Mapping) PIDIndex() map[string]string {
	index := make(map[string]string, len(m))
	for key, entry := range m {
		if entry.PID != "" {
			index[entry.PID] = key
		}
	}
	return index
}

// MissingDays returns the days in [1, expected] absent from the mapping.
func (m Mapping) MissingDays(expected int) []int {
	var missing []int
	for day := 1; day <= expected; day++ {
		if _, ok := m[DayKey(day)]; !ok {
			missing = append(missing, day)
		}
	}
	return missing
}

// Found is one hit from [Mapping.FindSongs].
type Found struct {
	Day   int
	Entry Entry
}

// FindSongs returns entries whose original or matched name contains query,
// case-insensitively, ordered by day. Callers wanting a deterministic single
// answer take the first hit; interactive surfaces present the whole list.
func (m Mapping) FindSongs(query string) []Found {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var hits []Found
	for _, day := range m.Days() {
		entry := m[DayKey(day)]
		if strings.Contains(strings.ToLower(entry.Metadata.OriginalName), q) ||
			strings.Contains(strings.ToLower(entry.Metadata.MatchedName), q) {
			hits = append(hits, Found{Day: day, Entry: entry})
		}
	}
	return hits
}

// NewEntry builds the calendar entry for one resolved song on one day.
func NewEntry(day int, song models.Song, match *models.ResolvedMatch) Entry {
	return Entry{
		Title: fmt.Sprintf("Day %d", day),
		Src:   SourceLink(song.Name, match.TrackID),
		Embed: EmbedMarkup(song.Name, match.TrackID),
		PID:   song.PID,
		Metadata: Metadata{
			OriginalName:   song.Name,
			OriginalArtist: song.Artist,
			MatchedName:    match.MatchedTitle,
			MatchedArtist:  match.MatchedArtist,
			MatchQuality:   string(match.Tier),
		},
	}
}
