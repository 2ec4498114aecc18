package main

import (
	"context"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/cache"
	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/feed"
	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/portal"
	"github.com/bilgisen/khobor/internal/query"
	"github.com/bilgisen/khobor/internal/server"
	"github.com/bilgisen/khobor/internal/services"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: logOutput(cfg),
		Pretty: cfg.LogPretty,
		App:    "portal",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Str("api", cfg.InternalAPIURL).Msg("Starting portal...")

	// Query cache
	store, err := cache.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer func() {
		log.Info().Msg("Closing cache...")
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing cache")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache.StartExpiry(ctx, store, cfg.CacheTTL)

	api := apiclient.New(apiclient.OptionsFromConfig(cfg))
	svc := services.New(api, query.NewClient(store, cfg.CacheTTL))

	// Infinite lists opened by rendered pages
	feeds := feed.NewRegistry(svc, cfg.FeedIdleTTL)
	go feeds.Run(ctx, cfg.FeedIdleTTL/2)

	app := portal.NewApp(cfg, svc, feeds)
	if err := server.Serve(app, ":"+cfg.Port, cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Server error")
	}
}

func logOutput(cfg *config.Config) string {
	if cfg.LogFile != "" {
		return cfg.LogFile
	}
	return "stdout"
}
