package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"songcal/internal/models"
	"songcal/internal/shared"
)

// Cache is the sqlite-backed resolution cache. Entries are keyed by the
// normalized song key, so a rebuilt calendar reuses earlier lookups instead
// of hitting the search API again.
type Cache struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenCache opens (and migrates) the cache database at cfg.Path.
func OpenCache(cfg shared.CacheConfig, logger *log.Logger) (*Cache, error) {
	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache: %w", err)
	}
	return &Cache{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get looks up a cached resolution by song key. The second return is false
// on a miss.
func (c *Cache) Get(ctx context.Context, songKey string) (*models.ResolvedMatch, bool, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT track_id, matched_title, matched_artist, matched_album, tier, score
		FROM resolutions WHERE song_key = ?`, songKey)

	var match models.ResolvedMatch
	var tier string
	err := row.Scan(&match.TrackID, &match.MatchedTitle, &match.MatchedArtist,
		&match.MatchedAlbum, &tier, &match.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: cache read for %s: %v", shared.ErrPersistence, songKey, err)
	}
	match.Tier = models.ConfidenceTier(tier)
	return &match, true, nil
}

// Put stores (or replaces) a resolution for a song key.
func (c *Cache) Put(ctx context.Context, songKey string, match *models.ResolvedMatch) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO resolutions
			(song_key, track_id, matched_title, matched_artist, matched_album, tier, score, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(song_key) DO UPDATE SET
			track_id = excluded.track_id,
			matched_title = excluded.matched_title,
			matched_artist = excluded.matched_artist,
			matched_album = excluded.matched_album,
			tier = excluded.tier,
			score = excluded.score,
			resolved_at = excluded.resolved_at`,
		songKey, match.TrackID, match.MatchedTitle, match.MatchedArtist,
		match.MatchedAlbum, string(match.Tier), match.Score, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: cache write for %s: %v", shared.ErrPersistence, songKey, err)
	}
	return nil
}

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Total  int            `json:"total"`
	ByTier map[string]int `json:"by_tier"`
}

// Stats counts cached resolutions, overall and per confidence tier.
func (c *Cache) Stats(ctx context.Context) (*CacheStats, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT tier, COUNT(*) FROM resolutions GROUP BY tier`)
	if err != nil {
		return nil, fmt.Errorf("%w: cache stats: %v", shared.ErrPersistence, err)
	}
	defer rows.Close()

	stats := &CacheStats{ByTier: map[string]int{}}
	for rows.Next() {
		var tier string
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("%w: cache stats: %v", shared.ErrPersistence, err)
		}
		stats.ByTier[tier] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: cache stats: %v", shared.ErrPersistence, err)
	}
	return stats, nil
}

// Clear drops every cached resolution.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM resolutions`)
	if err != nil {
		return 0, fmt.Errorf("%w: cache clear: %v", shared.ErrPersistence, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
