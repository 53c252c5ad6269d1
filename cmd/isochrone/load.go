package main

import (
	"github.com/spf13/cobra"

	"isochrone/internal/feedcache"
	"isochrone/internal/feedload"
	"isochrone/internal/spatial"
	"isochrone/internal/transfer"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Parse a feed zip and write its SQLite snapshot, then exit",
	RunE:  runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg := resolvedConfig()

	logger.Info("parsing feed", "path", cfg.FeedPath)
	feed, err := feedload.FromZip(cfg.FeedPath)
	if err != nil {
		return err
	}

	// Build the transfer table once from the parsed stops. transfer.Build
	// returns no error, and the table is discarded: the snapshot holds
	// only the parsed feed.
	idx := spatial.Build(feed.Stops)
	transfer.Build(feed.Stops, idx)

	hash, err := feedcache.HashFile(cfg.FeedPath)
	if err != nil {
		return err
	}

	cache, err := feedcache.Open(cfg.CachePath, logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.Store(hash, feed); err != nil {
		return err
	}

	logger.Info("feed loaded and cached", "hash", hash, "stops", len(feed.Stops), "trips", len(feed.Trips))
	return nil
}
