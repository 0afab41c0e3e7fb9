package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"songcal/internal/calendar"
)

var _ list.Item = songItem{}

// songItem wraps a calendar day's entry to implement [list.Item].
type songItem struct {
	day   int
	entry calendar.Entry
}

func (i songItem) FilterValue() string {
	return i.entry.Metadata.OriginalName + " " + i.entry.Metadata.OriginalArtist
}

func (i songItem) Title() string {
	return fmt.Sprintf("%s - %s", i.entry.Metadata.OriginalArtist, i.entry.Metadata.OriginalName)
}

func (i songItem) Description() string {
	desc := fmt.Sprintf("day %d", i.day)
	if i.entry.Metadata.MatchQuality != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.entry.Metadata.MatchQuality)
	}
	return desc
}
