package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"songcal/internal/calendar"
	"songcal/internal/formatter"
	"songcal/internal/models"
	"songcal/internal/store"
)

// CalendarStatus summarizes the calendar document: coverage, tier counts,
// and missing days.
func (r *Runner) CalendarStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	doc, err := store.LoadDocument(r.config.Calendar.File)
	if err != nil {
		return fmt.Errorf("no calendar yet (%v); run 'songcal build' first", err)
	}

	total := r.config.Calendar.Days
	tiers := make(map[string]int)
	for _, day := range doc.Mapping.Days() {
		tiers[doc.Mapping[calendar.DayKey(day)].Metadata.MatchQuality]++
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"days":         len(doc.Mapping),
			"total":        total,
			"missing_days": doc.Mapping.MissingDays(total),
			"by_quality":   tiers,
		}, true)
	}

	r.writePlainHeader("Calendar Status")
	r.writePlain("Days resolved: %d/%d\n", len(doc.Mapping), total)
	for tier, count := range tiers {
		r.writePlain("  %s: %d\n", tier, count)
	}
	if missing := doc.Mapping.MissingDays(total); len(missing) > 0 {
		r.writePlain("Missing days: %v\n", missing)
	}
	return nil
}

// CalendarRemaining reports the days still unresolved, with skip reasons.
func (r *Runner) CalendarRemaining(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	doc, _, err := r.loadMapping()
	if err != nil {
		return err
	}
	skipped, err := store.LoadSkipped(r.config.Calendar.SkippedFile)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		songs, err := r.playlistSongs()
		if err != nil {
			return err
		}
		index := doc.Mapping.PIDIndex()
		remaining := make([]models.Song, 0)
		for _, song := range songs {
			if _, placed := index[song.PID]; !placed {
				remaining = append(remaining, song)
			}
		}
		return r.writeJSON(remaining, true)
	}

	report := formatter.RemainingReport(doc.Mapping, r.config.Calendar.Days, skipped)
	return r.writePlain("%s", report)
}

// CalendarClean reconciles the document against the current library
// playlist: removes songs that left, migrates changed persistent IDs
// (pins included), and renumbers the surviving days.
func (r *Runner) CalendarClean(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	doc, err := store.LoadDocument(r.config.Calendar.File)
	if err != nil {
		return err
	}
	songs, err := r.playlistSongs()
	if err != nil {
		return err
	}

	cleaned, removed, updated := calendar.Reconcile(doc.Mapping, songs)
	if len(removed) == 0 && len(updated) == 0 {
		r.writePlainln("Calendar already matches the playlist; nothing to do.")
		return nil
	}

	for _, u := range updated {
		r.writePlain("↻ Day %d: %s - %s PID %s → %s\n", u.Day, u.Artist, u.Name, u.OldPID, u.NewPID)
	}
	for _, rem := range removed {
		r.writePlain("✗ Day %d: %s - %s removed (left playlist)\n", rem.Day, rem.Artist, rem.Name)
	}

	pins, err := store.LoadPins(r.config.Calendar.PinsFile)
	if err != nil {
		return err
	}
	migratedPins, pinCount := calendar.MigratePins(pins, updated)
	if pinCount > 0 {
		r.writePlain("↻ %d pin(s) follow their songs to new persistent IDs\n", pinCount)
	}

	if cmd.Bool("dry-run") {
		r.writePlainln("Dry run: %d removal(s), %d migration(s) not written.", len(removed), len(updated))
		return nil
	}
	if !cmd.Bool("yes") {
		r.writePlainln("%d removal(s), %d migration(s) pending; re-run with --yes to apply.",
			len(removed), len(updated))
		return nil
	}

	if pinCount > 0 {
		if err := store.SavePins(r.config.Calendar.PinsFile, migratedPins); err != nil {
			return err
		}
	}

	doc.Mapping = cleaned
	skipped, err := store.LoadSkipped(r.config.Calendar.SkippedFile)
	if err != nil {
		return err
	}
	if err := r.saveCalendar(doc, skipped); err != nil {
		return err
	}

	r.writePlainln("✓ Calendar cleaned: %d removed, %d migrated, %d days remain.",
		len(removed), len(updated), len(cleaned))
	return nil
}

// CalendarExport writes the calendar to CSV, Markdown, or plain text.
func (r *Runner) CalendarExport(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	doc, err := store.LoadDocument(r.config.Calendar.File)
	if err != nil {
		return err
	}
	dates, err := r.dates()
	if err != nil {
		return err
	}

	format := cmd.String("format")
	out := cmd.String("output")
	if out == "" {
		out = "calendar_export." + format
	}

	if err := formatter.WriteCalendarExport(doc.Mapping, dates, format, out); err != nil {
		return err
	}
	r.writePlainln("✓ Exported %d days to %s", len(doc.Mapping), out)
	return nil
}

// calendarCommand groups calendar inspection and maintenance.
func calendarCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	return &cli.Command{
		Name:  "calendar",
		Usage: "Inspect and maintain the calendar document",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show coverage and match quality",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of text"},
				},
				Action: r.CalendarStatus,
			},
			{
				Name:  "remaining",
				Usage: "List unresolved days and why they were skipped",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "json", Usage: "Emit the unplaced playlist songs as JSON"},
				},
				Action: r.CalendarRemaining,
			},
			{
				Name:  "clean",
				Usage: "Reconcile the calendar with the current playlist",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "dry-run", Usage: "Report changes without writing"},
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Apply changes without confirmation"},
				},
				Action: r.CalendarClean,
			},
			{
				Name:  "export",
				Usage: "Export the calendar to csv, markdown, or txt",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Export format", Value: "csv"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output path"},
				},
				Action: r.CalendarExport,
			},
		},
	}
}
