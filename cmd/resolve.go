package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"songcal/internal/calendar"
	"songcal/internal/models"
	"songcal/internal/services"
)

// Resolve runs a one-off resolution for a title/artist pair and prints the
// best match. Useful for checking what a song would land on before a build.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	song := models.Song{
		Name:   cmd.String("title"),
		Artist: cmd.String("artist"),
		Album:  cmd.String("album"),
	}

	resolver := services.NewResolver(r.search, r.config.Search.Limit, r.logger)
	match, err := resolver.Resolve(ctx, song)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(match, true)
	}

	r.writePlainHeader("Best Match")
	r.writePlain("Song: %s - %s\n", match.MatchedArtist, match.MatchedTitle)
	if match.MatchedAlbum != "" {
		r.writePlain("Album: %s\n", match.MatchedAlbum)
	}
	r.writePlain("Quality: %s (score %d)\n", match.Tier, match.Score)
	r.writePlain("Embed: %s\n", calendar.SourceLink(song.Name, match.TrackID))
	return nil
}

func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve one song against the catalog and show the match",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Song title", Required: true},
			&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Artist name", Required: true},
			&cli.StringFlag{Name: "album", Usage: "Album name (improves scoring)"},
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of text"},
		},
		Action: r.Resolve,
	}
}
