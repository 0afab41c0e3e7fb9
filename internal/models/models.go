// Package models defines the domain data types shared across the song
// calendar packages.
//
// Two categories of types live here:
//
//  1. Source-side: [Song], one entry of the library playlist feeding the
//     calendar, carrying the library's persistent ID as payload.
//  2. Resolution-side: [ResolvedMatch] (the scored outcome of an external
//     catalog lookup) and [SkippedSong] (a song the build run could not
//     place, recorded for manual follow-up).
package models

// ConfidenceTier buckets a match score into a coarse quality label.
type ConfidenceTier string

const (
	TierHigh     ConfidenceTier = "High Confidence"
	TierMedium   ConfidenceTier = "Medium Confidence"
	TierLow      ConfidenceTier = "Low Confidence"
	TierFallback ConfidenceTier = "Fallback"
)

// tierForScore maps a match score to its confidence tier.
func TierForScore(score int) ConfidenceTier {
	switch {
	case score >= 15:
		return TierHigh
	case score >= 8:
		return TierMedium
	default:
		return TierLow
	}
}

// Song is one entry from the source library playlist.
//
// PID is the library's persistent identifier for the underlying media item.
// It rides along as payload; identity for pins and reconciliation is the
// normalized name+artist pair, because persistent IDs have been observed to
// change silently between library exports.
type Song struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	PID    string `json:"PID"`
}

// ResolvedMatch is the outcome of resolving one Song against the external
// catalog. Immutable once written into the calendar; re-resolution replaces
// the whole value.
type ResolvedMatch struct {
	TrackID       int64          `json:"id"`
	MatchedTitle  string         `json:"official_name"`
	MatchedArtist string         `json:"official_artist"`
	MatchedAlbum  string         `json:"official_album"`
	Tier          ConfidenceTier `json:"match_quality"`
	Score         int            `json:"match_score"`
}

// SkippedSong records a song the build run failed to resolve, with the day
// it was destined for and the reason code. A reporting artifact, not an
// error: skips never abort a build.
type SkippedSong struct {
	Day    int    `json:"day"`
	Song   Song   `json:"song"`
	Reason string `json:"reason"`
}
