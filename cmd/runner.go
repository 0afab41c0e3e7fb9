package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"songcal/internal/calendar"
	"songcal/internal/library"
	"songcal/internal/models"
	"songcal/internal/services"
	"songcal/internal/shared"
	"songcal/internal/store"
	"songcal/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	search     services.SearchService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Search     services.SearchService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Search == nil {
		opts.Search = services.NewITunesService(services.ITunesOpts{
			BaseURL:    opts.Config.Search.BaseURL,
			HTTPClient: opts.HTTPClient,
			RateLimit:  opts.Config.Search.RateLimit,
			Timeout:    time.Duration(opts.Config.Search.TimeoutSeconds) * time.Second,
		})
	}

	return &Runner{
		config:     opts.Config,
		search:     opts.Search,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, e.g. to a file logger while a TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, buildCommand, calendarCommand, pinsCommand, cacheCommand, resolveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig swaps the runner's configuration from the flag-supplied path,
// when that file exists.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("config unreadable, keeping current settings", "path", path, "error", err)
		return
	}
	r.config = config
}

// playlistSongs loads the library and returns the configured playlist's
// songs, truncated to the calendar length.
func (r *Runner) playlistSongs() ([]models.Song, error) {
	path := r.config.Library.File
	if _, err := os.Stat(path); err != nil {
		found, err := library.FindFile(path)
		if err != nil {
			return nil, err
		}
		path = found
	}

	lib, err := library.Open(path, r.logger)
	if err != nil {
		return nil, err
	}

	songs, err := lib.PlaylistSongs(r.config.Library.Playlist)
	if err != nil {
		return nil, err
	}
	if days := r.config.Calendar.Days; days > 0 && len(songs) > days {
		songs = songs[:days]
	}
	return songs, nil
}

// dates builds the day↔date translator from configuration.
func (r *Runner) dates() (calendar.Dates, error) {
	start, err := r.config.StartDate()
	if err != nil {
		return calendar.Dates{}, err
	}
	return calendar.Dates{Start: start, Total: r.config.Calendar.Days}, nil
}

// openCache opens the resolution cache when enabled; nil means disabled.
func (r *Runner) openCache() (*store.Cache, error) {
	if !r.config.Cache.Enabled {
		return nil, nil
	}
	return store.OpenCache(r.config.Cache, r.logger)
}

// buildEngine assembles the resolution pipeline from configuration.
func (r *Runner) buildEngine(cache *store.Cache) *tasks.BuildEngine {
	resolver := services.NewResolver(r.search, r.config.Search.Limit, r.logger)
	pacer := tasks.NewPacer(r.config.Pacing, calendar.NewRand())
	var rc tasks.ResolutionCache
	if cache != nil {
		rc = cache
	}
	return tasks.NewBuildEngine(resolver, rc, pacer, r.logger)
}

// loadMapping reads the calendar document if present, else falls back to
// the checkpoint. The bool reports whether the document existed.
func (r *Runner) loadMapping() (*store.Document, bool, error) {
	doc, err := store.LoadDocument(r.config.Calendar.File)
	if err == nil {
		return doc, true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	doc = store.NewDocument()
	cp := store.LoadCheckpoint(r.config.Calendar.CheckpointFile, r.logger)
	doc.Mapping = cp.Mapping
	return doc, false, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
