package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"songcal/internal/shared"
	"songcal/internal/store"
)

// Setup writes a starter config file and initializes the cache database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	r.writePlainln("✓ Wrote %s", path)

	if r.config.Cache.Enabled {
		cache, err := store.OpenCache(r.config.Cache, r.logger)
		if err != nil {
			return err
		}
		defer cache.Close()
		r.writePlainln("✓ Cache ready at %s", r.config.Cache.Path)
	}

	r.writePlainln("Edit the [library] section to point at your exported library, then run 'songcal build'.")
	return nil
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a starter config file and initialize the cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
