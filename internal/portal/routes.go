package portal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/feed"
	"github.com/bilgisen/khobor/internal/middleware"
	"github.com/bilgisen/khobor/internal/server"
	"github.com/bilgisen/khobor/internal/services"
	"github.com/bilgisen/khobor/internal/view"
)

// NewApp builds the portal fiber app with every route registered.
func NewApp(cfg *config.Config, svc *services.Service, feeds *feed.Registry) *fiber.App {
	handlers := NewHandlers(cfg, svc, feeds)

	app := server.New(server.Options{
		App:          "portal",
		Config:       cfg,
		Views:        view.NewEngine("portal").AddFunc("thumb", view.ThumbFunc(cfg.PublicAPIURL)),
		ErrorHandler: middleware.NewErrorHandler(handlers.RenderError),
	})

	SetupRoutes(app, handlers, cfg)
	return app
}

// SetupRoutes configures all the routes of the portal
func SetupRoutes(app *fiber.App, h *Handlers, cfg *config.Config) {
	app.Use(Language(cfg.AuthCookieSecure))

	app.Get("/", h.Home)

	news := app.Group("/news")
	{
		news.Get("", h.Latest)        // latest news, infinite list
		news.Get("/:slug", h.Article) // single article
	}

	app.Get("/search", h.Search)
	app.Get("/author/:id", h.Author)
	app.Get("/category/:slug", h.Category)
	feeds := app.Group("/feed/:id")
	{
		feeds.Get("/more", h.More)    // next page fragment
		feeds.Get("/sort", h.Sort)    // restart in another order
		feeds.Post("/close", h.Close) // reader left the page
	}

	app.Get("/about", h.Static("about"))
	app.Get("/contact", h.Static("contact"))
	app.Get("/privacy", h.Static("privacy"))

	// Top-level category pages; must stay last.
	app.Get("/:category", h.Category)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
