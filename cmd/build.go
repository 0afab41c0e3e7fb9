package main

import (
	"context"
	"math/rand"

	"github.com/urfave/cli/v3"

	"songcal/internal/calendar"
	"songcal/internal/models"
	"songcal/internal/store"
	"songcal/internal/tasks"
)

// Build resolves the configured playlist into the calendar document:
// sequential search resolution with pacing and checkpoints, then a
// pin-aware shuffle of the resolved songs across the days.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	songs, err := r.playlistSongs()
	if err != nil {
		return err
	}
	r.logger.Info("library loaded", "songs", len(songs), "playlist", r.config.Library.Playlist)
	r.writePlain("Building calendar for %d songs...\n\n", len(songs))

	doc, existed, err := r.loadMapping()
	if err != nil {
		return err
	}
	if cmd.Bool("rebuild") {
		if err := store.RemoveCheckpoint(r.config.Calendar.CheckpointFile); err != nil {
			return err
		}
		doc.Mapping = calendar.Mapping{}
		existed = false
	}
	cp := store.LoadCheckpoint(r.config.Calendar.CheckpointFile, r.logger)
	if existed {
		// The document is the source of truth once it exists; the
		// checkpoint only contributes its skip history.
		cp.Mapping = doc.Mapping
	}
	if resumed := len(cp.Mapping); resumed > 0 {
		r.logger.Info("resuming checkpointed run", "run_id", cp.RunID, "days", resumed)
		r.writePlain("Resuming: %d days already resolved\n\n", resumed)
	}

	cache, err := r.openCache()
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}

	engine := r.buildEngine(cache)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.ResolveSongs, tasks.CacheHit:
				r.writePlain("   %s\n", update.Message)
			case tasks.SkipSong:
				r.writePlain("   %s\n", update.Message)
			case tasks.Pause:
				r.writePlain("☕ %s\n", update.Message)
			case tasks.Checkpoint:
				r.writePlain("💾 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh, tasks.BuildOpts{
		Songs:           songs,
		Checkpoint:      cp,
		CheckpointPath:  r.config.Calendar.CheckpointFile,
		CheckpointEvery: r.config.Pacing.CheckpointEvery,
	})
	close(progressCh)
	if err != nil {
		return err
	}

	doc.Mapping = result.Mapping
	if !cmd.Bool("keep-order") {
		if err := r.shuffle(doc, int64(cmd.Int("seed")), cmd.IsSet("seed")); err != nil {
			return err
		}
	}

	if err := r.saveCalendar(doc, result.Skipped); err != nil {
		return err
	}
	if err := store.RemoveCheckpoint(r.config.Calendar.CheckpointFile); err != nil {
		r.logger.Warn("checkpoint cleanup failed", "error", err)
	}

	r.writePlain("\n")
	r.writePlainHeader("Build Complete!")
	r.writePlain("Resolved: %d/%d songs (%d cache hits, %d API calls)\n",
		result.Resolved, len(songs), result.CacheHits, result.APICalls)
	if len(result.Skipped) > 0 {
		r.writePlain("Skipped: %d songs (see %s)\n", len(result.Skipped), r.config.Calendar.SkippedFile)
		for _, s := range result.Skipped {
			r.writePlain("  - Day %d: %s - %s (%s)\n", s.Day, s.Song.Artist, s.Song.Name, s.Reason)
		}
	}
	r.writePlain("Calendar written to %s\n", r.config.Calendar.File)
	return nil
}

// shuffle applies the pin-aware randomized assignment to the document.
func (r *Runner) shuffle(doc *store.Document, seed int64, seeded bool) error {
	pins, err := store.LoadPins(r.config.Calendar.PinsFile)
	if err != nil {
		return err
	}

	rng := calendar.NewRand()
	if seeded {
		rng = rand.New(rand.NewSource(seed))
	}

	shuffled, warnings := calendar.Assign(doc.Mapping, pins, rng)
	for _, warning := range warnings {
		r.logger.Warn(warning)
		r.writePlain("⚠ %s\n", warning)
	}
	doc.Mapping = shuffled
	return nil
}

// saveCalendar backs up and rewrites the calendar document plus the
// skipped-songs report.
func (r *Runner) saveCalendar(doc *store.Document, skipped []models.SkippedSong) error {
	backup, err := store.BackupFile(r.config.Calendar.File)
	if err != nil {
		r.logger.Warn("backup failed", "error", err)
	} else if backup != "" {
		r.logger.Info("backup written", "path", backup)
	}

	if err := doc.Save(r.config.Calendar.File); err != nil {
		return err
	}
	return store.SaveSkipped(r.config.Calendar.SkippedFile, skipped)
}

func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Resolve the playlist and write the calendar document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "rebuild",
				Usage: "Discard the existing calendar and checkpoint, resolving every song again",
			},
			&cli.BoolFlag{
				Name:  "keep-order",
				Usage: "Skip the randomized day assignment, keeping playlist order",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Seed for the day shuffle (reproducible layouts)",
			},
		},
		Action: r.Build,
	}
}
