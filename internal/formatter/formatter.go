// package formatter renders the calendar and its reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"songcal/internal/calendar"
	"songcal/internal/models"
)

// ExportToCSV converts a calendar mapping to CSV with columns: Day, Date, Song, Artist, Matched Song, Matched Artist, Quality, PID
func ExportToCSV(m calendar.Mapping, dates calendar.Dates) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Day", "Date", "Song", "Artist", "Matched Song", "Matched Artist", "Quality", "PID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, day := range m.Days() {
		entry := m[calendar.DayKey(day)]
		record := []string{
			strconv.Itoa(day),
			dates.Date(day).Format("2006-01-02"),
			entry.Metadata.OriginalName,
			entry.Metadata.OriginalArtist,
			entry.Metadata.MatchedName,
			entry.Metadata.MatchedArtist,
			entry.Metadata.MatchQuality,
			entry.PID,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a calendar mapping to a Markdown listing.
func ExportToMarkdown(m calendar.Mapping, dates calendar.Dates) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Song Calendar\n\n")
	buf.WriteString(fmt.Sprintf("**Days**: %d of %d\n", len(m), dates.Total))
	buf.WriteString(fmt.Sprintf("**Starts**: %s\n\n", dates.Start.Format("January 2, 2006")))

	buf.WriteString("## Days\n\n")
	for _, day := range m.Days() {
		entry := m[calendar.DayKey(day)]
		buf.WriteString(fmt.Sprintf("%d. **%s** — %s - %s (%s)\n",
			day,
			dates.Date(day).Format("Jan 2"),
			entry.Metadata.OriginalArtist,
			entry.Metadata.OriginalName,
			entry.Metadata.MatchQuality,
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a calendar mapping to plain text.
func ExportToText(m calendar.Mapping, dates calendar.Dates) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Song calendar: %d of %d days\n\n", len(m), dates.Total))
	for _, day := range m.Days() {
		entry := m[calendar.DayKey(day)]
		buf.WriteString(fmt.Sprintf("%s: %s - %s\n",
			dates.Label(day), entry.Metadata.OriginalArtist, entry.Metadata.OriginalName))
	}

	return buf.Bytes(), nil
}

// SkippedReport renders the skipped-songs list as plain text, grouped the
// way the skip file records them.
func SkippedReport(skipped []models.SkippedSong) []byte {
	var buf bytes.Buffer
	if len(skipped) == 0 {
		buf.WriteString("No songs were skipped.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Skipped songs: %d\n\n", len(skipped)))
	for _, s := range skipped {
		buf.WriteString(fmt.Sprintf("Day %d: %s - %s (%s)\n", s.Day, s.Song.Artist, s.Song.Name, s.Reason))
	}
	return buf.Bytes()
}

// RemainingReport lists the days still missing from a mapping that should
// span total days, with any recorded skips alongside.
func RemainingReport(m calendar.Mapping, total int, skipped []models.SkippedSong) []byte {
	var buf bytes.Buffer

	missing := m.MissingDays(total)
	if len(missing) == 0 {
		buf.WriteString(fmt.Sprintf("Calendar complete: all %d days resolved.\n", total))
		return buf.Bytes()
	}

	skipReasons := make(map[int]string, len(skipped))
	for _, s := range skipped {
		skipReasons[s.Day] = s.Reason
	}

	buf.WriteString(fmt.Sprintf("Remaining days: %d of %d\n\n", len(missing), total))
	for _, day := range missing {
		if reason, ok := skipReasons[day]; ok {
			buf.WriteString(fmt.Sprintf("Day %d (skipped: %s)\n", day, reason))
		} else {
			buf.WriteString(fmt.Sprintf("Day %d\n", day))
		}
	}
	return buf.Bytes()
}

// WriteCalendarExport writes a mapping to path in the requested format
// (csv, markdown, or txt).
func WriteCalendarExport(m calendar.Mapping, dates calendar.Dates, format, path string) error {
	var data []byte
	var err error
	switch format {
	case "csv":
		data, err = ExportToCSV(m, dates)
	case "markdown", "md":
		data, err = ExportToMarkdown(m, dates)
	case "txt", "text", "":
		data, err = ExportToText(m, dates)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
