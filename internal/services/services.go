// package services defines interface SearchService for querying external
// song catalogs over HTTP
//
// iTunes Search API
package services

import (
	"context"
	"fmt"
)

// SearchService defines the interface for external song catalog lookups.
type SearchService interface {
	// SearchSongs issues a free-text song search and returns up to limit
	// candidate records in the catalog's ranking order.
	SearchSongs(ctx context.Context, term string, limit int) ([]Candidate, error)

	// Name returns the name of the catalog (e.g. "iTunes")
	Name() string
}

// Candidate is one song record returned by a catalog search.
type Candidate struct {
	TrackID int64  `json:"trackId"`
	Title   string `json:"trackName"`
	Artist  string `json:"artistName"`
	Album   string `json:"collectionName"`
}

// StatusError is a non-2xx response from the catalog.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http_%d", e.Code)
}

// Throttled reports whether the status is the catalog's rate-limiting
// response. The iTunes Search API answers bursts with 403 as often as 429.
func (e *StatusError) Throttled() bool {
	return e.Code == 429 || e.Code == 403
}
