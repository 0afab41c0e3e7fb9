package tasks

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"songcal/internal/shared"
)

func recordingPacer(cfg shared.PacingConfig) (*Pacer, *[]time.Duration) {
	var slept []time.Duration
	p := NewPacer(cfg, rand.New(rand.NewSource(7)))
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func TestTrackPauseWithinWindow(t *testing.T) {
	cfg := shared.PacingConfig{TrackPauseMinSeconds: 3.0, TrackPauseMaxSeconds: 6.5}
	p, slept := recordingPacer(cfg)

	for i := 0; i < 50; i++ {
		d, err := p.TrackPause(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if d < 3*time.Second || d > 6500*time.Millisecond {
			t.Fatalf("pause %s outside [3s, 6.5s]", d)
		}
	}
	if len(*slept) != 50 {
		t.Errorf("slept %d times", len(*slept))
	}
}

func TestMaybeBreakInterval(t *testing.T) {
	cfg := shared.PacingConfig{BreakEvery: 25, BreakMinSeconds: 45, BreakMaxSeconds: 90}
	p, _ := recordingPacer(cfg)

	for calls := 1; calls <= 100; calls++ {
		d, err := p.MaybeBreak(context.Background(), calls)
		if err != nil {
			t.Fatal(err)
		}
		due := calls%25 == 0
		if due && (d < 45*time.Second || d > 90*time.Second) {
			t.Errorf("call %d: break %s outside [45s, 90s]", calls, d)
		}
		if !due && d != 0 {
			t.Errorf("call %d: unexpected break %s", calls, d)
		}
	}
}

func TestMaybeBreakDisabled(t *testing.T) {
	p, slept := recordingPacer(shared.PacingConfig{BreakEvery: 0, BreakMinSeconds: 45, BreakMaxSeconds: 90})
	if d, err := p.MaybeBreak(context.Background(), 25); err != nil || d != 0 {
		t.Errorf("disabled break returned %s, %v", d, err)
	}
	if len(*slept) != 0 {
		t.Error("disabled break slept")
	}
}

func TestTrackPauseZeroConfig(t *testing.T) {
	p, slept := recordingPacer(shared.PacingConfig{})
	if d, err := p.TrackPause(context.Background()); err != nil || d != 0 {
		t.Errorf("zero config pause = %s, %v", d, err)
	}
	if len(*slept) != 0 {
		t.Error("zero config slept")
	}
}

func TestPauseHonorsCancellation(t *testing.T) {
	p := NewPacer(shared.PacingConfig{TrackPauseMinSeconds: 30, TrackPauseMaxSeconds: 30}, rand.New(rand.NewSource(1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.TrackPause(ctx); err != context.Canceled {
		t.Errorf("cancelled pause returned %v", err)
	}
}
