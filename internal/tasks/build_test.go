package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"songcal/internal/calendar"
	"songcal/internal/models"
	"songcal/internal/shared"
	"songcal/internal/store"
)

// mockResolver returns canned matches or errors keyed by song name.
type mockResolver struct {
	matches map[string]*models.ResolvedMatch
	errs    map[string]error
	calls   []string
}

func (m *mockResolver) Resolve(_ context.Context, song models.Song) (*models.ResolvedMatch, error) {
	m.calls = append(m.calls, song.Name)
	if err, ok := m.errs[song.Name]; ok {
		return nil, err
	}
	if match, ok := m.matches[song.Name]; ok {
		return match, nil
	}
	return nil, shared.ErrNoResults
}

// mockCache is an in-memory ResolutionCache.
type mockCache struct {
	entries map[string]*models.ResolvedMatch
	puts    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]*models.ResolvedMatch{}}
}

func (m *mockCache) Get(_ context.Context, key string) (*models.ResolvedMatch, bool, error) {
	match, ok := m.entries[key]
	return match, ok, nil
}

func (m *mockCache) Put(_ context.Context, key string, match *models.ResolvedMatch) error {
	m.puts++
	m.entries[key] = match
	return nil
}

func instantPacer() *Pacer {
	p := NewPacer(shared.PacingConfig{
		TrackPauseMinSeconds: 3.0,
		TrackPauseMaxSeconds: 6.5,
		BreakEvery:           25,
		BreakMinSeconds:      45,
		BreakMaxSeconds:      90,
	}, rand.New(rand.NewSource(1)))
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func testSongs(n int) []models.Song {
	songs := make([]models.Song, n)
	for i := range songs {
		songs[i] = models.Song{
			Name:   fmt.Sprintf("Song %d", i+1),
			Artist: fmt.Sprintf("Artist %d", i+1),
			PID:    fmt.Sprintf("PID-%d", i+1),
		}
	}
	return songs
}

func matchFor(song models.Song) *models.ResolvedMatch {
	return &models.ResolvedMatch{
		TrackID:       int64(1000 + len(song.Name)),
		MatchedTitle:  song.Name,
		MatchedArtist: song.Artist,
		Tier:          models.TierHigh,
		Score:         18,
	}
}

func matchesFor(songs []models.Song) map[string]*models.ResolvedMatch {
	out := make(map[string]*models.ResolvedMatch, len(songs))
	for _, song := range songs {
		out[song.Name] = matchFor(song)
	}
	return out
}

func TestBuildResolvesEverySong(t *testing.T) {
	songs := testSongs(5)
	resolver := &mockResolver{matches: matchesFor(songs)}
	engine := NewBuildEngine(resolver, nil, instantPacer(), shared.NewLogger(io.Discard))

	result, err := engine.Run(context.Background(), nil, BuildOpts{Songs: songs})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Resolved != 5 || result.APICalls != 5 || len(result.Skipped) != 0 {
		t.Fatalf("result = %+v", result)
	}
	for day := 1; day <= 5; day++ {
		entry, ok := result.Mapping[calendar.DayKey(day)]
		if !ok {
			t.Fatalf("day %d missing", day)
		}
		if want := fmt.Sprintf("Day %d", day); entry.Title != want {
			t.Errorf("day %d title = %q", day, entry.Title)
		}
		if entry.Metadata.OriginalName != songs[day-1].Name {
			t.Errorf("day %d holds %q", day, entry.Metadata.OriginalName)
		}
	}
}

func TestBuildRecordsSkips(t *testing.T) {
	songs := testSongs(4)
	resolver := &mockResolver{
		matches: matchesFor(songs),
		errs: map[string]error{
			"Song 2": fmt.Errorf("giving up: %w", shared.ErrNoResults),
			"Song 3": fmt.Errorf("giving up: %w", shared.ErrRateLimited),
		},
	}
	engine := NewBuildEngine(resolver, nil, instantPacer(), shared.NewLogger(io.Discard))

	result, err := engine.Run(context.Background(), nil, BuildOpts{Songs: songs})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Resolved != 2 || len(result.Skipped) != 2 {
		t.Fatalf("result = %+v", result)
	}
	if result.Skipped[0].Day != 2 || result.Skipped[0].Reason != "no_results" {
		t.Errorf("first skip = %+v", result.Skipped[0])
	}
	if result.Skipped[1].Day != 3 || result.Skipped[1].Reason != "rate_limit_exceeded" {
		t.Errorf("second skip = %+v", result.Skipped[1])
	}
	if _, ok := result.Mapping[calendar.DayKey(2)]; ok {
		t.Error("skipped day 2 present in mapping")
	}
}

func TestBuildUsesCache(t *testing.T) {
	songs := testSongs(3)
	cache := newMockCache()
	cache.entries[shared.SongKey(songs[0].Name, songs[0].Artist)] = matchFor(songs[0])

	resolver := &mockResolver{matches: matchesFor(songs)}
	engine := NewBuildEngine(resolver, cache, instantPacer(), shared.NewLogger(io.Discard))

	result, err := engine.Run(context.Background(), nil, BuildOpts{Songs: songs})
	if err != nil {
		t.Fatal(err)
	}
	if result.CacheHits != 1 || result.APICalls != 2 {
		t.Errorf("hits=%d calls=%d, want 1/2", result.CacheHits, result.APICalls)
	}
	if len(resolver.calls) != 2 {
		t.Errorf("resolver called for %v", resolver.calls)
	}
	// Fresh resolutions land in the cache.
	if cache.puts != 2 {
		t.Errorf("cache puts = %d, want 2", cache.puts)
	}
}

func TestBuildResumesFromCheckpoint(t *testing.T) {
	songs := testSongs(4)
	cp := store.NewCheckpoint()
	cp.Mapping[calendar.DayKey(1)] = calendar.NewEntry(1, songs[0], matchFor(songs[0]))
	cp.Skipped = []models.SkippedSong{{Day: 2, Song: songs[1], Reason: "no_results"}}

	resolver := &mockResolver{matches: matchesFor(songs)}
	engine := NewBuildEngine(resolver, nil, instantPacer(), shared.NewLogger(io.Discard))

	result, err := engine.Run(context.Background(), nil, BuildOpts{Songs: songs, Checkpoint: cp})
	if err != nil {
		t.Fatal(err)
	}
	// Only days 3 and 4 hit the resolver.
	if len(resolver.calls) != 2 || resolver.calls[0] != "Song 3" || resolver.calls[1] != "Song 4" {
		t.Errorf("resolver calls = %v", resolver.calls)
	}
	if len(result.Mapping) != 3 {
		t.Errorf("mapping has %d days", len(result.Mapping))
	}
	if len(result.Skipped) != 1 {
		t.Errorf("skipped = %v", result.Skipped)
	}
}

func TestBuildFlushesCheckpointPeriodically(t *testing.T) {
	songs := testSongs(5)
	path := filepath.Join(t.TempDir(), "progress_checkpoint.json")

	resolver := &mockResolver{
		matches: matchesFor(songs),
		errs:    map[string]error{"Song 4": errors.New("socket closed")},
	}
	engine := NewBuildEngine(resolver, nil, instantPacer(), shared.NewLogger(io.Discard))

	_, err := engine.Run(context.Background(), nil, BuildOpts{
		Songs:           songs,
		CheckpointPath:  path,
		CheckpointEvery: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	cp := store.LoadCheckpoint(path, shared.NewLogger(io.Discard))
	if len(cp.Mapping) != 4 {
		t.Errorf("checkpoint has %d days, want 4", len(cp.Mapping))
	}
	if len(cp.Skipped) != 1 || cp.Skipped[0].Reason != "socket closed" {
		t.Errorf("checkpoint skipped = %v", cp.Skipped)
	}
}

func TestBuildInterruptFlushesCheckpoint(t *testing.T) {
	songs := testSongs(5)
	path := filepath.Join(t.TempDir(), "progress_checkpoint.json")

	ctx, cancel := context.WithCancel(context.Background())
	resolver := &mockResolver{matches: matchesFor(songs)}
	engine := NewBuildEngine(resolver, nil, instantPacer(), shared.NewLogger(io.Discard))

	// Cancel while the third song is in flight.
	engine.pacer.sleep = func(ctx context.Context, _ time.Duration) error {
		if len(resolver.calls) == 3 {
			cancel()
		}
		return ctx.Err()
	}

	result, err := engine.Run(ctx, nil, BuildOpts{Songs: songs, CheckpointPath: path})
	if err == nil {
		t.Fatal("expected interruption error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if !result.Interrupted {
		t.Error("Interrupted not set")
	}

	cp := store.LoadCheckpoint(path, shared.NewLogger(io.Discard))
	if len(cp.Mapping) != 3 {
		t.Errorf("checkpoint has %d days, want 3", len(cp.Mapping))
	}
}

func TestBuildProgressUpdates(t *testing.T) {
	songs := testSongs(2)
	resolver := &mockResolver{
		matches: matchesFor(songs),
		errs:    map[string]error{"Song 2": shared.ErrNoResults},
	}
	engine := NewBuildEngine(resolver, nil, instantPacer(), shared.NewLogger(io.Discard))

	progress := make(chan ProgressUpdate, 32)
	if _, err := engine.Run(context.Background(), progress, BuildOpts{Songs: songs}); err != nil {
		t.Fatal(err)
	}
	close(progress)

	var phases []Phase
	for update := range progress {
		phases = append(phases, update.Phase)
	}
	want := []Phase{ResolveSongs, ResolveSongs, ResolveSongs, SkipSong}
	if len(phases) != len(want) {
		t.Fatalf("phases = %v, want %v", phases, want)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("phase[%d] = %s, want %s", i, phases[i], want[i])
		}
	}
}

func TestSkipReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrapped: %w", shared.ErrNoResults), "no_results"},
		{fmt.Errorf("wrapped: %w", shared.ErrRateLimited), "rate_limit_exceeded"},
		{fmt.Errorf("wrapped: %w", shared.ErrTimeout), "timeout"},
		{errors.New("connection reset"), "connection reset"},
	}
	for _, tc := range tests {
		if got := skipReason(tc.err); got != tc.want {
			t.Errorf("skipReason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
