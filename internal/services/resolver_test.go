package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"songcal/internal/models"
	"songcal/internal/shared"
)

// mockSearchService implements SearchService with scripted responses.
type mockSearchService struct {
	candidates []Candidate
	errs       []error // consumed one per call until exhausted
	calls      int
	lastTerm   string
}

func (m *mockSearchService) Name() string { return "mock" }

func (m *mockSearchService) SearchSongs(ctx context.Context, term string, limit int) ([]Candidate, error) {
	m.lastTerm = term
	m.calls++
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return m.candidates, nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func newTestResolver(svc SearchService) (*Resolver, *[]time.Duration) {
	r := NewResolver(svc, 10, shared.NewLogger(io.Discard))
	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return r, &slept
}

func TestResolveBestMatch(t *testing.T) {
	svc := &mockSearchService{
		candidates: []Candidate{
			{TrackID: 111, Title: "Yellow", Artist: "Coldplay", Album: "Parachutes"},
			{TrackID: 222, Title: "Yellow Submarine", Artist: "The Beatles", Album: "Revolver"},
		},
	}
	r, _ := newTestResolver(svc)

	match, err := r.Resolve(context.Background(), models.Song{Name: "Yellow", Artist: "Coldplay", Album: "Parachutes"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if match.TrackID != 111 {
		t.Errorf("TrackID = %d, want 111", match.TrackID)
	}
	if match.Score != 18 {
		t.Errorf("Score = %d, want 18", match.Score)
	}
	if match.Tier != models.TierHigh {
		t.Errorf("Tier = %q, want %q", match.Tier, models.TierHigh)
	}
	if svc.lastTerm != "Yellow Coldplay" {
		t.Errorf("search term = %q, want \"Yellow Coldplay\"", svc.lastTerm)
	}
}

func TestResolveDeterministic(t *testing.T) {
	svc := &mockSearchService{
		candidates: []Candidate{
			{TrackID: 1, Title: "Song", Artist: "Artist", Album: "Album"},
			{TrackID: 2, Title: "Song", Artist: "Artist", Album: "Album"},
		},
	}
	r, _ := newTestResolver(svc)
	song := models.Song{Name: "Song", Artist: "Artist", Album: "Album"}

	first, err := r.Resolve(context.Background(), song)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Resolve(context.Background(), song)
		if err != nil {
			t.Fatal(err)
		}
		if again.TrackID != first.TrackID || again.Score != first.Score {
			t.Fatalf("resolution not deterministic: %+v then %+v", first, again)
		}
	}
	// Equal scores keep the first-seen candidate.
	if first.TrackID != 1 {
		t.Errorf("TrackID = %d, want first-seen 1", first.TrackID)
	}
}

func TestResolveFallback(t *testing.T) {
	svc := &mockSearchService{
		candidates: []Candidate{
			{TrackID: 900, Title: "Completely Different", Artist: "Nobody", Album: "Nothing"},
			{TrackID: 901, Title: "Also Different", Artist: "Nobody Else", Album: "Nil"},
		},
	}
	r, _ := newTestResolver(svc)

	match, err := r.Resolve(context.Background(), models.Song{Name: "Xyzzy", Artist: "Qwerty", Album: "Asdf"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if match.Tier != models.TierFallback {
		t.Errorf("Tier = %q, want %q", match.Tier, models.TierFallback)
	}
	if match.Score != 0 {
		t.Errorf("Score = %d, want 0", match.Score)
	}
	if match.TrackID != 900 {
		t.Errorf("TrackID = %d, want first candidate 900", match.TrackID)
	}
}

func TestResolveNoResults(t *testing.T) {
	r, _ := newTestResolver(&mockSearchService{})
	_, err := r.Resolve(context.Background(), models.Song{Name: "X", Artist: "Y"})
	if !errors.Is(err, shared.ErrNoResults) {
		t.Errorf("error = %v, want ErrNoResults", err)
	}
}

func TestResolveHTTPErrorNoRetry(t *testing.T) {
	svc := &mockSearchService{errs: []error{&StatusError{Code: 500}}}
	r, slept := newTestResolver(svc)

	_, err := r.Resolve(context.Background(), models.Song{Name: "X", Artist: "Y"})
	if !errors.Is(err, shared.ErrHTTPStatus) {
		t.Errorf("error = %v, want ErrHTTPStatus", err)
	}
	if svc.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", svc.calls)
	}
	if len(*slept) != 0 {
		t.Errorf("slept %v, want no pauses", *slept)
	}
}

func TestResolveThrottleBackoff(t *testing.T) {
	throttled := &StatusError{Code: 429}
	svc := &mockSearchService{
		errs:       []error{throttled, throttled, nil},
		candidates: []Candidate{{TrackID: 1, Title: "X", Artist: "Y"}},
	}
	r, slept := newTestResolver(svc)

	if _, err := r.Resolve(context.Background(), models.Song{Name: "X", Artist: "Y"}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := []time.Duration{30 * time.Second, 60 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("pauses = %v, want %v", *slept, want)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("pause %d = %v, want %v", i, (*slept)[i], d)
		}
	}
}

func TestResolveThrottleExhausted(t *testing.T) {
	var errs []error
	for i := 0; i < 10; i++ {
		errs = append(errs, &StatusError{Code: 403})
	}
	svc := &mockSearchService{errs: errs}
	r, slept := newTestResolver(svc)

	_, err := r.Resolve(context.Background(), models.Song{Name: "X", Artist: "Y"})
	if !errors.Is(err, shared.ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
	if len(*slept) != 5 {
		t.Errorf("pauses = %d, want 5", len(*slept))
	}
	// Doubling capped at 300s: 30, 60, 120, 240, 300.
	if last := (*slept)[len(*slept)-1]; last != 300*time.Second {
		t.Errorf("final backoff = %v, want 300s cap", last)
	}
}

func TestResolveTimeoutRetry(t *testing.T) {
	svc := &mockSearchService{
		errs:       []error{timeoutErr{}, nil},
		candidates: []Candidate{{TrackID: 1, Title: "X", Artist: "Y"}},
	}
	r, slept := newTestResolver(svc)

	if _, err := r.Resolve(context.Background(), models.Song{Name: "X", Artist: "Y"}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(*slept) != 1 || (*slept)[0] != 5*time.Second {
		t.Errorf("pauses = %v, want [5s]", *slept)
	}
}

func TestResolveTimeoutExhausted(t *testing.T) {
	svc := &mockSearchService{
		errs: []error{timeoutErr{}, timeoutErr{}, timeoutErr{}, timeoutErr{}, timeoutErr{}},
	}
	r, _ := newTestResolver(svc)

	_, err := r.Resolve(context.Background(), models.Song{Name: "X", Artist: "Y"})
	if !errors.Is(err, shared.ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
	if svc.calls != 4 {
		t.Errorf("calls = %d, want 4 (initial + 3 retries)", svc.calls)
	}
}

func TestResolveTransportFaultImmediate(t *testing.T) {
	fault := fmt.Errorf("connection refused")
	svc := &mockSearchService{errs: []error{fault}}
	r, slept := newTestResolver(svc)

	_, err := r.Resolve(context.Background(), models.Song{Name: "X", Artist: "Y"})
	if !errors.Is(err, fault) {
		t.Errorf("error = %v, want the transport fault", err)
	}
	if svc.calls != 1 || len(*slept) != 0 {
		t.Errorf("calls = %d pauses = %d, want 1 and 0", svc.calls, len(*slept))
	}
}

func TestResolveCancelledDuringBackoff(t *testing.T) {
	svc := &mockSearchService{errs: []error{&StatusError{Code: 429}, &StatusError{Code: 429}}}
	r := NewResolver(svc, 10, shared.NewLogger(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	r.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := r.Resolve(ctx, models.Song{Name: "X", Artist: "Y"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestScoreCandidate(t *testing.T) {
	song := models.Song{Name: "Yellow", Artist: "Coldplay", Album: "Parachutes"}

	tc := []struct {
		name      string
		candidate Candidate
		want      int
	}{
		{
			name:      "exact everything",
			candidate: Candidate{Title: "Yellow", Artist: "Coldplay", Album: "Parachutes"},
			want:      18,
		},
		{
			name:      "case and whitespace insensitive",
			candidate: Candidate{Title: " YELLOW ", Artist: "coldplay", Album: "PARACHUTES "},
			want:      18,
		},
		{
			name:      "title substring only",
			candidate: Candidate{Title: "Yellow (Live)", Artist: "Nobody", Album: "Nothing"},
			want:      5,
		},
		{
			name:      "artist exact title different",
			candidate: Candidate{Title: "Clocks", Artist: "Coldplay", Album: "A Rush of Blood"},
			want:      5,
		},
		{
			name:      "substring artist and album",
			candidate: Candidate{Title: "Yellow", Artist: "Coldplay & Friends", Album: "Parachutes (Deluxe)"},
			want:      13,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreCandidate(song, tt.candidate); got != tt.want {
				t.Errorf("scoreCandidate() = %d, want %d", got, tt.want)
			}
		})
	}
}
