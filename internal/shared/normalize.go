package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFKD and drops combining marks, so "Beyoncé"
// becomes "Beyonce" before slugging.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Slugify produces a URL/embed-safe identifier from free text: accents are
// folded away, the result is lowercased, spaces become hyphens, everything
// outside [a-z0-9-] is dropped, runs of hyphens collapse, and leading or
// trailing hyphens are trimmed.
//
// Total and deterministic; the empty string maps to itself.
func Slugify(text string) string {
	if text == "" {
		return ""
	}

	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		folded = text
	}

	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, " ", "-")

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// NormalizeKey produces the comparison key used for match scoring and
// reconciliation lookups: lowercase plus whitespace trim, nothing else.
func NormalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// SongKey returns the stable identity key for a song, "title|artist" with
// both halves normalized. Identity is name+artist rather than persistent ID
// because library exports have been observed to rewrite persistent IDs while
// the user-recognizable name+artist pair stays put.
func SongKey(title, artist string) string {
	return NormalizeKey(title) + "|" + NormalizeKey(artist)
}
