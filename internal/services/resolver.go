package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"songcal/internal/models"
	"songcal/internal/shared"
)

const (
	maxThrottleRetries = 5
	throttleBase       = 30 * time.Second
	throttleCap        = 300 * time.Second

	maxTimeoutRetries = 3
	timeoutPause      = 5 * time.Second
)

// Resolver turns a [models.Song] into a scored [models.ResolvedMatch] using
// a [SearchService], with bounded retry on throttling and timeouts.
//
// Stateless between calls: the attempt counters reset on every Resolve.
type Resolver struct {
	service SearchService
	limit   int
	logger  *log.Logger

	// sleep is swapped out in tests; honors ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewResolver creates a Resolver requesting up to limit candidates per query.
func NewResolver(service SearchService, limit int, logger *log.Logger) *Resolver {
	if limit <= 0 {
		limit = 10
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Resolver{
		service: service,
		limit:   limit,
		logger:  logger,
		sleep:   sleepCtx,
	}
}

// Resolve searches the catalog for song and returns the best-scoring
// candidate.
//
// Retry policy: throttling statuses back off exponentially (30s doubling,
// capped at 300s) up to 5 times before surfacing [shared.ErrRateLimited];
// timeouts pause a flat 5s up to 3 times before surfacing
// [shared.ErrTimeout]; any other failure surfaces immediately. An empty
// result set is [shared.ErrNoResults].
func (r *Resolver) Resolve(ctx context.Context, song models.Song) (*models.ResolvedMatch, error) {
	term := fmt.Sprintf("%s %s", song.Name, song.Artist)

	throttleAttempts := 0
	timeoutAttempts := 0

	for {
		candidates, err := r.service.SearchSongs(ctx, term, r.limit)
		if err != nil {
			var statusErr *StatusError
			switch {
			case errors.As(err, &statusErr) && statusErr.Throttled():
				if throttleAttempts >= maxThrottleRetries {
					r.logger.Error("giving up after throttle retries", "song", song.Name, "attempts", throttleAttempts)
					return nil, shared.ErrRateLimited
				}
				wait := throttleBase << throttleAttempts
				if wait > throttleCap {
					wait = throttleCap
				}
				r.logger.Warn("rate limited, backing off", "song", song.Name, "wait", wait,
					"attempt", fmt.Sprintf("%d/%d", throttleAttempts+1, maxThrottleRetries))
				if err := r.sleep(ctx, wait); err != nil {
					return nil, err
				}
				throttleAttempts++

			case errors.As(err, &statusErr):
				// Non-throttle HTTP failure, never retried.
				return nil, fmt.Errorf("%w: %v", shared.ErrHTTPStatus, statusErr)

			case isTimeout(err):
				if timeoutAttempts >= maxTimeoutRetries {
					return nil, shared.ErrTimeout
				}
				r.logger.Warn("search timed out, retrying", "song", song.Name)
				if err := r.sleep(ctx, timeoutPause); err != nil {
					return nil, err
				}
				timeoutAttempts++

			default:
				// Transport fault, surfaced with its description, never retried.
				return nil, err
			}
			continue
		}

		if len(candidates) == 0 {
			return nil, shared.ErrNoResults
		}
		return pickBest(song, candidates), nil
	}
}

// pickBest scores every candidate and keeps the maximum; ties keep the
// first-seen candidate in scan order. When nothing scores above zero the
// first returned candidate is kept as a fallback with score 0.
func pickBest(song models.Song, candidates []Candidate) *models.ResolvedMatch {
	var best *Candidate
	bestScore := 0

	for i := range candidates {
		score := scoreCandidate(song, candidates[i])
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best == nil {
		return matchFrom(candidates[0], models.TierFallback, 0)
	}
	return matchFrom(*best, models.TierForScore(bestScore), bestScore)
}

// scoreCandidate scores one candidate against the source song. Exact title
// match +10, substring either direction +5; artist +5/+2; album +3/+1. All
// comparisons on normalized keys.
func scoreCandidate(song models.Song, c Candidate) int {
	normTitle := shared.NormalizeKey(song.Name)
	normArtist := shared.NormalizeKey(song.Artist)
	normAlbum := shared.NormalizeKey(song.Album)

	apiTitle := shared.NormalizeKey(c.Title)
	apiArtist := shared.NormalizeKey(c.Artist)
	apiAlbum := shared.NormalizeKey(c.Album)

	score := 0

	switch {
	case apiTitle == normTitle:
		score += 10
	case strings.Contains(apiTitle, normTitle) || strings.Contains(normTitle, apiTitle):
		score += 5
	}

	switch {
	case apiArtist == normArtist:
		score += 5
	case strings.Contains(apiArtist, normArtist) || strings.Contains(normArtist, apiArtist):
		score += 2
	}

	switch {
	case apiAlbum == normAlbum:
		score += 3
	case strings.Contains(apiAlbum, normAlbum) || strings.Contains(normAlbum, apiAlbum):
		score += 1
	}

	return score
}

func matchFrom(c Candidate, tier models.ConfidenceTier, score int) *models.ResolvedMatch {
	return &models.ResolvedMatch{
		TrackID:       c.TrackID,
		MatchedTitle:  c.Title,
		MatchedArtist: c.Artist,
		MatchedAlbum:  c.Album,
		Tier:          tier,
		Score:         score,
	}
}

// isTimeout reports whether err is a deadline or network timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
