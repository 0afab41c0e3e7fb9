package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"songcal/internal/shared"
)

// CacheStats reports how many resolutions are cached, per confidence tier.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	cache, err := r.openCache()
	if err != nil {
		return err
	}
	if cache == nil {
		return fmt.Errorf("%w: cache disabled in config", shared.ErrInvalidConfig)
	}
	defer cache.Close()

	stats, err := cache.Stats(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainHeader("Resolution Cache")
	r.writePlain("Cached resolutions: %d\n", stats.Total)
	for tier, count := range stats.ByTier {
		r.writePlain("  %s: %d\n", tier, count)
	}
	return nil
}

// CacheClear drops every cached resolution.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	cache, err := r.openCache()
	if err != nil {
		return err
	}
	if cache == nil {
		return fmt.Errorf("%w: cache disabled in config", shared.ErrInvalidConfig)
	}
	defer cache.Close()

	cleared, err := cache.Clear(ctx)
	if err != nil {
		return err
	}
	r.writePlainln("✓ Cleared %d cached resolution(s).", cleared)
	return nil
}

// cacheCommand handles the local resolution cache.
func cacheCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the resolution cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cache contents by confidence tier",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of text"},
				},
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Drop every cached resolution",
				Flags:  []cli.Flag{configFlag},
				Action: r.CacheClear,
			},
		},
	}
}
