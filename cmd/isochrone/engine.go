package main

import (
	"fmt"
	"log/slog"

	"isochrone/internal/calendar"
	"isochrone/internal/config"
	"isochrone/internal/feedcache"
	"isochrone/internal/feedload"
	"isochrone/internal/feedstore"
	"isochrone/internal/isochrone"
	"isochrone/internal/model"
	"isochrone/internal/spatial"
	"isochrone/internal/transfer"
)

// engine bundles the built-once, load-time collaborators shared by the
// serve and query subcommands (spec §5: the feed store, spatial index
// and transfer table are immutable after load).
type engine struct {
	search   *isochrone.Search
	resolver *calendar.Resolver
}

// loadEngine builds the engine from cfg's feed path, using the SQLite
// snapshot cache when the feed's content hash matches an existing
// entry (spec §4.9).
func loadEngine(cfg *config.Config, logger *slog.Logger) (*engine, error) {
	feed, err := loadFeed(cfg, logger)
	if err != nil {
		return nil, err
	}
	return buildEngine(feed), nil
}

// loadFeed resolves feed either from the SQLite snapshot cache or by
// parsing cfg.FeedPath, writing a fresh snapshot when it parses.
func loadFeed(cfg *config.Config, logger *slog.Logger) (*model.Feed, error) {
	hash, err := feedcache.HashFile(cfg.FeedPath)
	if err != nil {
		return nil, fmt.Errorf("hash feed: %w", err)
	}

	cache, err := feedcache.Open(cfg.CachePath, logger)
	if err != nil {
		return nil, fmt.Errorf("open feed cache: %w", err)
	}
	defer cache.Close()

	if feed, ok, err := cache.Load(hash); err != nil {
		logger.Warn("feed cache lookup failed, parsing feed instead", "error", err)
	} else if ok {
		logger.Info("loaded feed from snapshot cache", "hash", hash)
		return feed, nil
	}

	logger.Info("parsing feed", "path", cfg.FeedPath)
	feed, err := feedload.FromZip(cfg.FeedPath)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	if err := cache.Store(hash, feed); err != nil {
		logger.Warn("failed to write feed snapshot", "error", err)
	}

	return feed, nil
}

func buildEngine(feed *model.Feed) *engine {
	store := feedstore.Build(feed)
	idx := spatial.Build(feed.Stops)
	transfers := transfer.Build(store.AllStops(), idx)
	resolver := calendar.NewResolver(feed.Calendar, feed.CalendarDates)
	search := isochrone.New(store, idx, transfers)
	return &engine{search: search, resolver: resolver}
}
