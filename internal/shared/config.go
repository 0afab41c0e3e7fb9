package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library  LibraryConfig  `toml:"library"`
	Calendar CalendarConfig `toml:"calendar"`
	Search   SearchConfig   `toml:"search"`
	Pacing   PacingConfig   `toml:"pacing"`
	Cache    CacheConfig    `toml:"cache"`
}

// LibraryConfig locates the exported library and the playlist to draw from.
type LibraryConfig struct {
	File string `toml:"file"`
	// Playlist is a playlist name, or "PID:<persistent id>" to address a
	// playlist by its persistent ID.
	Playlist string `toml:"playlist"`
}

// CalendarConfig contains calendar shape and artifact paths.
type CalendarConfig struct {
	Days           int    `toml:"days"`
	StartDate      string `toml:"start_date"` // YYYY-MM-DD, day 1 of the calendar
	File           string `toml:"file"`
	CheckpointFile string `toml:"checkpoint_file"`
	PinsFile       string `toml:"pins_file"`
	SkippedFile    string `toml:"skipped_file"`
}

// SearchConfig contains iTunes Search API client settings.
type SearchConfig struct {
	BaseURL        string  `toml:"base_url"`
	Limit          int     `toml:"limit"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"` // requests per second ceiling
}

// PacingConfig contains the politeness budget for sequential resolution.
//
// The pauses are deliberate rate-shaping toward the external service, not a
// correctness requirement; the build stays sequential and paced regardless.
type PacingConfig struct {
	TrackPauseMinSeconds float64 `toml:"track_pause_min_seconds"`
	TrackPauseMaxSeconds float64 `toml:"track_pause_max_seconds"`
	BreakEvery           int     `toml:"break_every"`
	BreakMinSeconds      int     `toml:"break_min_seconds"`
	BreakMaxSeconds      int     `toml:"break_max_seconds"`
	CheckpointEvery      int     `toml:"checkpoint_every"`
}

// CacheConfig contains resolution cache database settings.
type CacheConfig struct {
	Enabled      bool   `toml:"enabled"`
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// StartDate parses the configured calendar start date (day 1).
func (c *Config) StartDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.Calendar.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start_date %q: %v", ErrInvalidConfig, c.Calendar.StartDate, err)
	}
	return t, nil
}
