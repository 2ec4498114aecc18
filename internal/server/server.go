// Package server assembles the fiber app shared by the portal and the CMS:
// panic recovery, request logging, static assets, health and metrics.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/middleware"
	"github.com/bilgisen/khobor/internal/view"
)

// Options configures New.
type Options struct {
	// App names the process in logs and metrics.
	App          string
	Config       *config.Config
	Views        fiber.Views
	ErrorHandler fiber.ErrorHandler
}

// New creates the fiber app with the shared middleware and endpoints.
func New(opts Options) *fiber.App {
	cfg := opts.Config

	bodyLimit := 4 << 20
	if limit := int(cfg.MaxUploadSize) + 1<<20; limit > bodyLimit {
		bodyLimit = limit
	}

	app := fiber.New(fiber.Config{
		AppName:               opts.App,
		ReadTimeout:           cfg.HTTPTimeout,
		WriteTimeout:          cfg.HTTPTimeout,
		IdleTimeout:           120 * time.Second,
		BodyLimit:             bodyLimit,
		Views:                 opts.Views,
		ViewsLayout:           "layout",
		ErrorHandler:          opts.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(opts.App))

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:       http.FS(view.Static()),
		PathPrefix: "static",
		MaxAge:     3600,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"app":    opts.App,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

// Serve listens on addr until SIGINT or SIGTERM, then shuts the app down
// within timeout.
func Serve(app *fiber.App, addr string, timeout time.Duration) error {
	log := logger.Get()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting server")
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	log.Info().Msg("Server exited properly")
	return nil
}
