// Package services implements the external catalog integration for the song
// calendar: the [SearchService] interface, its iTunes Search API client, and
// the [Resolver] that scores candidates into confidence-tiered matches.
//
// The resolver is the only component with a retry policy; the client itself
// reports failures exactly once (typed [*StatusError] for HTTP statuses,
// untyped transport errors otherwise) so that policy lives in one place.
// Resolution is deliberately sequential and paced by the calling task; this
// package never issues concurrent requests on its own.
package services
