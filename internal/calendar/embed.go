package calendar

import (
	"fmt"
	"strings"

	"songcal/internal/shared"
)

const embedBase = "https://embed.music.apple.com/us/song"

// SourceLink builds the embeddable player URL for a matched track.
func SourceLink(name string, trackID int64) string {
	return fmt.Sprintf("%s/%s/%d", embedBase, shared.Slugify(name), trackID)
}

// EmbedMarkup builds the iframe markup stored alongside the source link.
func EmbedMarkup(name string, trackID int64) string {
	return fmt.Sprintf(
		`<iframe allow="autoplay *; encrypted-media *;" frameborder="0" height="150" style="width:100%%;max-width:660px;overflow:hidden;border-radius:10px;" sandbox="allow-forms allow-popups allow-same-origin allow-scripts allow-storage-access-by-user-activation allow-top-navigation-by-user-activation" src="%s"></iframe>`,
		SourceLink(name, trackID),
	)
}

// ValidateEmbed reports whether markup looks like a usable player embed:
// an iframe pointing at the embed host.
func ValidateEmbed(markup string) error {
	trimmed := strings.TrimSpace(markup)
	if !strings.HasPrefix(trimmed, "<iframe") {
		return fmt.Errorf("%w: markup is not an iframe", shared.ErrInvalidEmbed)
	}
	if !strings.Contains(trimmed, "embed.music.apple.com") {
		return fmt.Errorf("%w: markup does not reference the embed host", shared.ErrInvalidEmbed)
	}
	return nil
}
