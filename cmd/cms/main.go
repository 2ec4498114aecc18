package main

import (
	"context"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/cache"
	"github.com/bilgisen/khobor/internal/cms"
	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/query"
	"github.com/bilgisen/khobor/internal/server"
	"github.com/bilgisen/khobor/internal/services"
	"github.com/bilgisen/khobor/internal/storage"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.LogPretty,
		App:    "cms",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Str("upload_mode", cfg.UploadMode).Msg("Starting CMS...")
	if cfg.IsProduction() && !cfg.AuthCookieSecure {
		log.Warn().Msg("AUTH_COOKIE_SECURE is off in production; the session cookie will be sent over plain HTTP")
	}

	// The CMS shares the query cache with the portal when CACHE_BACKEND=redis,
	// so its invalidations reach readers.
	store, err := cache.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing cache")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache.StartExpiry(ctx, store, cfg.CacheTTL)

	api := apiclient.New(apiclient.OptionsFromConfig(cfg))
	svc := services.New(api, query.NewClient(store, cfg.CacheTTL))

	uploads, err := storage.New(ctx, cfg, api)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize thumbnail storage")
	}

	app := cms.NewApp(cfg, api, svc, uploads)
	if err := server.Serve(app, ":"+cfg.CMSPort, cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Server error")
	}
}
