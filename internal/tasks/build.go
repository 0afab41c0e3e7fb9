// package tasks orchestrates the long-running build of the song calendar:
// resolving each playlist song against the search API, pacing and
// checkpointing along the way, and reporting progress via channels for
// non-blocking status display in CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"songcal/internal/calendar"
	"songcal/internal/models"
	"songcal/internal/shared"
	"songcal/internal/store"
)

// SongResolver resolves one playlist song to its best catalog match.
type SongResolver interface {
	Resolve(ctx context.Context, song models.Song) (*models.ResolvedMatch, error)
}

// ResolutionCache is the subset of the store cache the builder needs.
type ResolutionCache interface {
	Get(ctx context.Context, songKey string) (*models.ResolvedMatch, bool, error)
	Put(ctx context.Context, songKey string, match *models.ResolvedMatch) error
}

// BuildEngine runs the resolution loop. Songs are processed strictly one at
// a time in playlist order; the pacer spaces calls out and the checkpoint
// file makes an interrupted run resumable.
type BuildEngine struct {
	resolver SongResolver
	cache    ResolutionCache // nil disables caching
	pacer    *Pacer
	logger   *log.Logger
}

// NewBuildEngine creates a BuildEngine with the provided collaborators.
func NewBuildEngine(resolver SongResolver, cache ResolutionCache, pacer *Pacer, logger *log.Logger) *BuildEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &BuildEngine{resolver: resolver, cache: cache, pacer: pacer, logger: logger}
}

// BuildOpts configures one build run.
type BuildOpts struct {
	Songs           []models.Song     // one per day, in playlist order
	Checkpoint      *store.Checkpoint // prior progress; nil starts fresh
	CheckpointPath  string            // where to flush progress; "" disables
	CheckpointEvery int               // flush interval in processed songs
}

// BuildResult is the outcome of a build run.
type BuildResult struct {
	Mapping     calendar.Mapping
	Skipped     []models.SkippedSong
	RunID       string
	Resolved    int
	CacheHits   int
	APICalls    int
	Interrupted bool
}

// Run resolves every song that is not already covered by the checkpoint.
// On cancellation it flushes a final checkpoint and returns the partial
// result with Interrupted set, alongside the context error.
func (e *BuildEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, opts BuildOpts) (*BuildResult, error) {
	cp := opts.Checkpoint
	if cp == nil {
		cp = store.NewCheckpoint()
	}

	result := &BuildResult{
		Mapping: cp.Mapping.Clone(),
		Skipped: append([]models.SkippedSong(nil), cp.Skipped...),
		RunID:   cp.RunID,
	}
	skippedDays := make(map[int]bool, len(result.Skipped))
	for _, s := range result.Skipped {
		skippedDays[s.Day] = true
	}

	total := len(opts.Songs)
	processed := 0
	for i, song := range opts.Songs {
		day := i + 1
		if _, done := result.Mapping[calendar.DayKey(day)]; done || skippedDays[day] {
			continue
		}

		if err := ctx.Err(); err != nil {
			return e.interrupt(result, opts, err)
		}

		key := shared.SongKey(song.Name, song.Artist)
		cachedMatch := e.cached(ctx, key)
		if cachedMatch != nil {
			if err := calendar.ValidateEmbed(calendar.EmbedMarkup(song.Name, cachedMatch.TrackID)); err != nil {
				e.logger.Warn("cached match has unusable embed, re-resolving", "key", key, "error", err)
				cachedMatch = nil
			}
		}
		if cachedMatch != nil {
			result.Mapping[calendar.DayKey(day)] = calendar.NewEntry(day, song, cachedMatch)
			result.Resolved++
			result.CacheHits++
			e.sendProgress(progress, cacheHitUpdate(day, total, song))
		} else {
			e.sendProgress(progress, resolvingUpdate(day, total, song))
			result.APICalls++

			match, err := e.resolver.Resolve(ctx, song)
			switch {
			case err == nil:
				entry := calendar.NewEntry(day, song, match)
				if verr := calendar.ValidateEmbed(entry.Embed); verr != nil {
					result.Skipped = append(result.Skipped, models.SkippedSong{Day: day, Song: song, Reason: "invalid_embed"})
					e.logger.Warn("song skipped", "day", day, "song", song.Name, "artist", song.Artist, "reason", "invalid_embed")
					e.sendProgress(progress, skipUpdate(day, total, song, "invalid_embed"))
					break
				}
				e.store(ctx, key, match)
				result.Mapping[calendar.DayKey(day)] = entry
				result.Resolved++
				e.sendProgress(progress, resolvedUpdate(day, total, match))
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				return e.interrupt(result, opts, err)
			default:
				reason := skipReason(err)
				result.Skipped = append(result.Skipped, models.SkippedSong{Day: day, Song: song, Reason: reason})
				e.logger.Warn("song skipped", "day", day, "song", song.Name, "artist", song.Artist, "reason", reason)
				e.sendProgress(progress, skipUpdate(day, total, song, reason))
			}

			if err := e.pace(ctx, progress, result.APICalls, day, total); err != nil {
				return e.interrupt(result, opts, err)
			}
		}

		processed++
		if opts.CheckpointEvery > 0 && processed%opts.CheckpointEvery == 0 {
			e.flush(result, opts)
			e.sendProgress(progress, checkpointUpdate(day, total))
		}
	}

	e.flush(result, opts)
	return result, nil
}

// cached consults the resolution cache; a read failure only logs.
func (e *BuildEngine) cached(ctx context.Context, key string) *models.ResolvedMatch {
	if e.cache == nil {
		return nil
	}
	match, hit, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("cache read failed", "key", key, "error", err)
		return nil
	}
	if !hit {
		return nil
	}
	return match
}

// store writes a resolution to the cache; a write failure only logs.
func (e *BuildEngine) store(ctx context.Context, key string, match *models.ResolvedMatch) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Put(ctx, key, match); err != nil {
		e.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// pace applies the per-track pause and, when due, the longer break.
func (e *BuildEngine) pace(ctx context.Context, progress chan<- ProgressUpdate, calls, day, total int) error {
	if e.pacer == nil {
		return nil
	}
	if _, err := e.pacer.TrackPause(ctx); err != nil {
		return err
	}
	d, err := e.pacer.MaybeBreak(ctx, calls)
	if err != nil {
		return err
	}
	if d > 0 {
		e.sendProgress(progress, breakUpdate(day, total, d))
	}
	return nil
}

// interrupt flushes the partial result and returns it with the cause.
func (e *BuildEngine) interrupt(result *BuildResult, opts BuildOpts, cause error) (*BuildResult, error) {
	result.Interrupted = true
	e.flush(result, opts)
	return result, fmt.Errorf("build interrupted: %w", cause)
}

// flush writes the checkpoint file, if one is configured.
func (e *BuildEngine) flush(result *BuildResult, opts BuildOpts) {
	if opts.CheckpointPath == "" {
		return
	}
	cp := store.NewCheckpoint()
	if result.RunID != "" {
		cp.RunID = result.RunID
	}
	cp.Mapping = result.Mapping
	cp.Skipped = result.Skipped
	if err := cp.Save(opts.CheckpointPath); err != nil {
		e.logger.Error("checkpoint save failed", "path", opts.CheckpointPath, "error", err)
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *BuildEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// skipReason maps a resolution failure to the reason recorded in the
// skipped-songs report.
func skipReason(err error) string {
	switch {
	case errors.Is(err, shared.ErrNoResults):
		return shared.ErrNoResults.Error()
	case errors.Is(err, shared.ErrRateLimited):
		return shared.ErrRateLimited.Error()
	case errors.Is(err, shared.ErrTimeout):
		return shared.ErrTimeout.Error()
	default:
		return err.Error()
	}
}
