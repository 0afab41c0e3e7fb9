package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Library and source errors
	ErrLibraryNotFound  = fmt.Errorf("library file not found")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrTrackNotFound    = fmt.Errorf("track not found")

	// Resolution errors, recorded per-song as skip reasons and never fatal
	ErrNoResults   = fmt.Errorf("no_results")
	ErrRateLimited = fmt.Errorf("rate_limit_exceeded")
	ErrTimeout     = fmt.Errorf("timeout")
	ErrHTTPStatus  = fmt.Errorf("unexpected HTTP status")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidDay      = fmt.Errorf("invalid day")
	ErrInvalidEmbed    = fmt.Errorf("invalid_embed")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Persistence errors
	ErrPersistence = fmt.Errorf("persistence failure")
)
