package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestITunesSearchSongs(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"resultCount": 2,
			"results": [
				{"trackId": 111, "trackName": "Yellow", "artistName": "Coldplay", "collectionName": "Parachutes"},
				{"trackId": 222, "trackName": "Yellow Submarine", "artistName": "The Beatles", "collectionName": "Revolver"}
			]
		}`))
	}))
	defer server.Close()

	svc := NewITunesService(ITunesOpts{BaseURL: server.URL})
	candidates, err := svc.SearchSongs(context.Background(), "Yellow Coldplay", 10)
	if err != nil {
		t.Fatalf("SearchSongs() error = %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}
	if candidates[0].TrackID != 111 || candidates[0].Title != "Yellow" {
		t.Errorf("unexpected first candidate: %+v", candidates[0])
	}

	req, _ := http.NewRequest(http.MethodGet, "http://x/?"+gotQuery, nil)
	q := req.URL.Query()
	if q.Get("term") != "Yellow Coldplay" {
		t.Errorf("term = %q, want \"Yellow Coldplay\"", q.Get("term"))
	}
	if q.Get("entity") != "song" {
		t.Errorf("entity = %q, want song", q.Get("entity"))
	}
	if q.Get("limit") != "10" {
		t.Errorf("limit = %q, want 10", q.Get("limit"))
	}
}

func TestITunesSearchSongsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCount": 0, "results": []}`))
	}))
	defer server.Close()

	svc := NewITunesService(ITunesOpts{BaseURL: server.URL})
	candidates, err := svc.SearchSongs(context.Background(), "nothing", 5)
	if err != nil {
		t.Fatalf("SearchSongs() error = %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("len(candidates) = %d, want 0", len(candidates))
	}
}

func TestITunesSearchSongsStatusError(t *testing.T) {
	tc := []struct {
		name      string
		status    int
		throttled bool
	}{
		{name: "too many requests", status: http.StatusTooManyRequests, throttled: true},
		{name: "forbidden treated as throttle", status: http.StatusForbidden, throttled: true},
		{name: "server error", status: http.StatusInternalServerError, throttled: false},
		{name: "not found", status: http.StatusNotFound, throttled: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			svc := NewITunesService(ITunesOpts{BaseURL: server.URL})
			_, err := svc.SearchSongs(context.Background(), "x", 1)

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("error = %v, want *StatusError", err)
			}
			if statusErr.Code != tt.status {
				t.Errorf("Code = %d, want %d", statusErr.Code, tt.status)
			}
			if statusErr.Throttled() != tt.throttled {
				t.Errorf("Throttled() = %v, want %v", statusErr.Throttled(), tt.throttled)
			}
		})
	}
}

func TestITunesSearchSongsBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resultCount": `))
	}))
	defer server.Close()

	svc := NewITunesService(ITunesOpts{BaseURL: server.URL})
	if _, err := svc.SearchSongs(context.Background(), "x", 1); err == nil {
		t.Error("SearchSongs() expected decode error")
	}
}
