package main

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"songcal/internal/calendar"
	"songcal/internal/shared"
	"songcal/internal/store"
	"songcal/internal/ui"
)

// PinsAdd pins a song to a day. The day target is a day number or an
// M/D/YY date; the song is picked by search query, or interactively when
// no query is given (or the query is ambiguous and --interactive is set).
func (r *Runner) PinsAdd(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	doc, err := store.LoadDocument(r.config.Calendar.File)
	if err != nil {
		return err
	}
	dates, err := r.dates()
	if err != nil {
		return err
	}
	day, err := dates.ParseTarget(cmd.String("day"))
	if err != nil {
		return err
	}
	pins, err := store.LoadPins(r.config.Calendar.PinsFile)
	if err != nil {
		return err
	}

	query := cmd.String("song")
	if query == "" || cmd.Bool("interactive") {
		return r.pickPin(doc.Mapping, dates, day, pins)
	}

	hits := doc.Mapping.FindSongs(query)
	switch len(hits) {
	case 0:
		return fmt.Errorf("%w: no song matches %q", shared.ErrTrackNotFound, query)
	case 1:
		// unambiguous
	default:
		r.writePlain("%d songs match %q:\n", len(hits), query)
		for _, hit := range hits {
			r.writePlain("  day %d: %s\n", hit.Day, hit.Entry.Summary())
		}
		return fmt.Errorf("%w: %q is ambiguous; narrow the query or use --interactive", shared.ErrInvalidArgument, query)
	}

	entry := hits[0].Entry
	pins[strconv.Itoa(day)] = entry.PID
	if err := store.SavePins(r.config.Calendar.PinsFile, pins); err != nil {
		return err
	}

	r.writePlainln("✓ Pinned %s to %s", entry.Summary(), dates.Label(day))
	r.writePlainln("Run 'songcal pins apply' to reshuffle around the new pin.")
	return nil
}

// pickPin hands selection to the interactive picker.
func (r *Runner) pickPin(mapping calendar.Mapping, dates calendar.Dates, day int, pins calendar.PinSet) error {
	fileLogger, err := shared.NewFileLogger("./tmp/songcal-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(mapping, dates, day, pins, func(updated calendar.PinSet) error {
		return store.SavePins(r.config.Calendar.PinsFile, updated)
	})
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// PinsRemove drops the pin for a day.
func (r *Runner) PinsRemove(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	dates, err := r.dates()
	if err != nil {
		return err
	}
	day, err := dates.ParseTarget(cmd.String("day"))
	if err != nil {
		return err
	}

	pins, err := store.LoadPins(r.config.Calendar.PinsFile)
	if err != nil {
		return err
	}
	key := strconv.Itoa(day)
	pid, ok := pins[key]
	if !ok {
		r.writePlainln("No pin on %s.", dates.Label(day))
		return nil
	}

	delete(pins, key)
	if err := store.SavePins(r.config.Calendar.PinsFile, pins); err != nil {
		return err
	}
	r.writePlainln("✓ Removed pin (PID %s) from %s", pid, dates.Label(day))
	return nil
}

// PinsList shows every pin with the song it points at.
func (r *Runner) PinsList(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	pins, err := store.LoadPins(r.config.Calendar.PinsFile)
	if err != nil {
		return err
	}
	if len(pins) == 0 {
		r.writePlainln("No pins.")
		return nil
	}

	dates, err := r.dates()
	if err != nil {
		return err
	}

	var index map[string]string
	if doc, err := store.LoadDocument(r.config.Calendar.File); err == nil {
		index = make(map[string]string, len(doc.Mapping))
		for pid, key := range doc.Mapping.PIDIndex() {
			if day, err := calendar.ParseDayKey(key); err == nil {
				index[pid] = doc.Mapping[calendar.DayKey(day)].Summary()
			}
		}
	}

	r.writePlainHeader("Pins")
	for _, day := range pins.Days() {
		pid := pins[strconv.Itoa(day)]
		if desc, ok := index[pid]; ok {
			r.writePlain("%s → %s\n", dates.Label(day), desc)
		} else {
			r.writePlain("%s → PID %s (not in calendar)\n", dates.Label(day), pid)
		}
	}
	return nil
}

// PinsApply reshuffles the calendar honoring the current pins.
func (r *Runner) PinsApply(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	doc, err := store.LoadDocument(r.config.Calendar.File)
	if err != nil {
		return err
	}
	if err := r.shuffle(doc, int64(cmd.Int("seed")), cmd.IsSet("seed")); err != nil {
		return err
	}

	skipped, err := store.LoadSkipped(r.config.Calendar.SkippedFile)
	if err != nil {
		return err
	}
	if err := r.saveCalendar(doc, skipped); err != nil {
		return err
	}
	r.writePlainln("✓ Calendar reshuffled with pins applied.")
	return nil
}

// pinsCommand groups pin management.
func pinsCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
	dayFlag := &cli.StringFlag{
		Name:     "day",
		Aliases:  []string{"d"},
		Usage:    "Day number, or a date like 3/14/26",
		Required: true,
	}

	return &cli.Command{
		Name:  "pins",
		Usage: "Pin songs to specific days",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Pin a song to a day",
				Flags: []cli.Flag{
					configFlag,
					dayFlag,
					&cli.StringFlag{Name: "song", Aliases: []string{"s"}, Usage: "Song search query"},
					&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "Choose interactively"},
				},
				Action: r.PinsAdd,
			},
			{
				Name:   "remove",
				Usage:  "Remove the pin for a day",
				Flags:  []cli.Flag{configFlag, dayFlag},
				Action: r.PinsRemove,
			},
			{
				Name:   "list",
				Usage:  "List all pins",
				Flags:  []cli.Flag{configFlag},
				Action: r.PinsList,
			},
			{
				Name:  "apply",
				Usage: "Reshuffle the calendar honoring pins",
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{Name: "seed", Usage: "Seed for the day shuffle"},
				},
				Action: r.PinsApply,
			},
		},
	}
}
