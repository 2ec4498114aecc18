package cms

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/middleware"
	"github.com/bilgisen/khobor/internal/server"
	"github.com/bilgisen/khobor/internal/services"
	"github.com/bilgisen/khobor/internal/storage"
	"github.com/bilgisen/khobor/internal/view"
)

// NewApp builds the CMS fiber app with every route behind the session gate.
func NewApp(cfg *config.Config, api API, svc *services.Service, uploads storage.Uploader) *fiber.App {
	handlers := NewHandlers(cfg, api, svc, uploads)

	app := server.New(server.Options{
		App:          "cms",
		Config:       cfg,
		Views:        view.NewEngine("cms"),
		ErrorHandler: handlers.errorHandler(),
	})

	SetupRoutes(app, handlers, cfg)
	return app
}

// SetupRoutes configures all the routes of the CMS
func SetupRoutes(app *fiber.App, h *Handlers, cfg *config.Config) {
	app.Use(middleware.NewAuth(middleware.AuthConfig{Secure: cfg.AuthCookieSecure}))

	app.Get("/login", h.LoginPage)
	app.Post("/login", h.Login)
	app.Post("/logout", h.Logout)

	app.Get("/", h.Dashboard)

	categories := app.Group("/categories")
	{
		categories.Get("", h.Categories)
		categories.Get("/create", h.NewCategory)
		categories.Post("/create", h.CreateCategory)
		categories.Get("/edit/:id", h.EditCategory)
		categories.Post("/:id/update", h.UpdateCategory)
		categories.Post("/:id/delete", h.DeleteCategory)
	}

	news := app.Group("/news")
	{
		news.Get("", middleware.ValidateQuery(func() interface{} { return &newsQuery{} }), h.News)
		news.Get("/create", h.NewNews)
		news.Post("/create", h.CreateNews)
		news.Get("/edit/:slug", h.EditNews)
		news.Post("/edit/:slug", h.UpdateNews)
		news.Post("/:id/delete", h.DeleteNews)
	}

	users := app.Group("/users")
	{
		users.Get("", h.Users)
		users.Post("", h.CreateUser)
		users.Post("/password", h.ChangePassword)
	}

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
