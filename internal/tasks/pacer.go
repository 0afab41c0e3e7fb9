package tasks

import (
	"context"
	"math/rand"
	"time"

	"songcal/internal/shared"
)

// Pacer spaces out search API calls: a randomized pause between tracks and
// a longer randomized break every N calls. The randomness keeps request
// timing from looking mechanical; the source is injected so tests and
// reproducible runs can pin it.
type Pacer struct {
	cfg shared.PacingConfig
	rng *rand.Rand

	// sleep is swapped out in tests; honors ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer builds a Pacer from configuration and a random source.
func NewPacer(cfg shared.PacingConfig, rng *rand.Rand) *Pacer {
	return &Pacer{cfg: cfg, rng: rng, sleep: sleepCtx}
}

// TrackPause sleeps for a random duration in the configured per-track
// window and returns how long it slept.
func (p *Pacer) TrackPause(ctx context.Context) (time.Duration, error) {
	d := p.between(p.cfg.TrackPauseMinSeconds, p.cfg.TrackPauseMaxSeconds)
	if d <= 0 {
		return 0, nil
	}
	return d, p.sleep(ctx, d)
}

// MaybeBreak sleeps for a random break if calls is a positive multiple of
// the configured break interval. Returns 0 when no break is due.
func (p *Pacer) MaybeBreak(ctx context.Context, calls int) (time.Duration, error) {
	if p.cfg.BreakEvery <= 0 || calls <= 0 || calls%p.cfg.BreakEvery != 0 {
		return 0, nil
	}
	d := p.between(float64(p.cfg.BreakMinSeconds), float64(p.cfg.BreakMaxSeconds))
	if d <= 0 {
		return 0, nil
	}
	return d, p.sleep(ctx, d)
}

// between returns a random duration in [min, max] seconds.
func (p *Pacer) between(min, max float64) time.Duration {
	if max < min {
		max = min
	}
	secs := min
	if max > min {
		secs += p.rng.Float64() * (max - min)
	}
	return time.Duration(secs * float64(time.Second))
}

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
