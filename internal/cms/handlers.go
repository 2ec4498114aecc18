package cms

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/middleware"
	"github.com/bilgisen/khobor/internal/models"
	"github.com/bilgisen/khobor/internal/query"
	"github.com/bilgisen/khobor/internal/services"
	"github.com/bilgisen/khobor/internal/storage"
)

type Handlers struct {
	config   *config.Config
	api      API
	services *services.Service
	uploads  storage.Uploader
	validate *middleware.Validator
	log      zerolog.Logger
}

func NewHandlers(cfg *config.Config, api API, svc *services.Service, uploads storage.Uploader) *Handlers {
	return &Handlers{
		config:   cfg,
		api:      api,
		services: svc,
		uploads:  uploads,
		validate: middleware.NewValidator(),
		log:      logger.Component("cms"),
	}
}

// page returns the data shared by every screen inside the dashboard shell.
func (h *Handlers) page(c *fiber.Ctx, title, active string) fiber.Map {
	return fiber.Map{
		"Title":  title,
		"Active": active,
		"Flash":  takeFlash(c),
	}
}

// invalidate drops the cached reads under prefix after a successful
// mutation. A failure only delays freshness until the entries expire.
func (h *Handlers) invalidate(ctx context.Context, prefix query.Key) {
	if err := h.services.Queries().Invalidate(ctx, prefix); err != nil {
		h.log.Warn().Err(err).Str("prefix", prefix.String()).Msg("Failed to invalidate cache")
	}
}

// parseForm binds, normalizes and validates the posted form. Invalid fields
// come back as FieldErrors; a malformed body is returned as the error.
func (h *Handlers) parseForm(c *fiber.Ctx, dst interface{}) (middleware.FieldErrors, error) {
	err := h.validate.ParseForm(c, dst)
	var fields middleware.FieldErrors
	if errors.As(err, &fields) {
		return fields, nil
	}
	return nil, err
}

// redirectWith stores a flash notice and redirects after a form post.
func redirectWith(c *fiber.Ctx, to, kind, message string) error {
	setFlash(c, kind, message)
	return c.Redirect(to, fiber.StatusSeeOther)
}

// LoginPage handles GET /login
func (h *Handlers) LoginPage(c *fiber.Ctx) error {
	return c.Render("cms/login", fiber.Map{"Title": "Admin Login", "Flash": takeFlash(c)}, "auth")
}

// Login handles POST /login. A failed login shows the backend message and
// leaves the session cookie untouched.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid form")
	}
	form.Email = strings.TrimSpace(form.Email)

	fail := func(status int, message string) error {
		return c.Status(status).Render("cms/login", fiber.Map{
			"Title": "Admin Login",
			"Email": form.Email,
			"Error": message,
		}, "auth")
	}

	if form.Email == "" || form.Password == "" {
		return fail(fiber.StatusUnprocessableEntity, "Email and password are required")
	}

	token, err := h.api.Login(c.UserContext(), models.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		h.log.Info().Err(err).Str("email", form.Email).Msg("Login failed")
		status := fiber.StatusUnauthorized
		if s := apiclient.StatusOf(err); s == 0 || s >= fiber.StatusInternalServerError {
			status = fiber.StatusBadGateway
		}
		return fail(status, apiclient.MessageOf(err, "Invalid credentials"))
	}

	middleware.SetSession(c, token, h.config.AuthCookieSecure)
	h.log.Info().Str("email", form.Email).Msg("Admin signed in")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout handles POST /logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	middleware.ClearSession(c, h.config.AuthCookieSecure)
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// statBar is one row of a dashboard bar chart.
type statBar struct {
	Label   string
	Value   int64
	Percent int64
}

func bars[T any](items []T, label func(T) string, value func(T) int64) []statBar {
	var top int64
	for _, it := range items {
		if v := value(it); v > top {
			top = v
		}
	}
	out := make([]statBar, 0, len(items))
	for _, it := range items {
		b := statBar{Label: label(it), Value: value(it)}
		if top > 0 {
			b.Percent = b.Value * 100 / top
		}
		out = append(out, b)
	}
	return out
}

// Dashboard handles GET /. Stats and the current user are loaded in
// parallel; either failing renders zeros instead of an error page.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	token := middleware.Token(c)

	var (
		stats *models.DashboardStats
		me    *models.AdminUser
	)
	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		s, err := h.api.Stats(ctx, token)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				return err
			}
			h.log.Error().Err(err).Msg("Failed to fetch dashboard stats")
			return nil
		}
		stats = s
		return nil
	})
	g.Go(func() error {
		u, err := h.api.Me(ctx, token)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				return err
			}
			h.log.Warn().Err(err).Msg("Failed to fetch current user")
			return nil
		}
		me = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if stats == nil {
		stats = &models.DashboardStats{}
	}

	data := h.page(c, "Dashboard", "overview")
	data["Stats"] = stats
	data["Me"] = me
	data["CategoryBars"] = bars(stats.CategoryStats,
		func(s models.CategoryViewStat) string { return s.Name },
		func(s models.CategoryViewStat) int64 { return s.Value })
	data["TopNews"] = bars(stats.TopNews,
		func(s models.NewsViewStat) string { return s.Title },
		func(s models.NewsViewStat) int64 { return s.Views })
	return c.Render("cms/dashboard", data)
}

// RenderError renders the CMS error page.
func (h *Handlers) RenderError(c *fiber.Ctx, status int) error {
	data := h.page(c, "Error", "")
	data["Status"] = status
	return c.Status(status).Render("cms/error", data)
}

// errorHandler sends rejected sessions back to the login page and renders
// everything else as an error page.
func (h *Handlers) errorHandler() fiber.ErrorHandler {
	render := middleware.NewErrorHandler(h.RenderError)
	return func(c *fiber.Ctx, err error) error {
		if apiclient.IsUnauthorized(err) {
			h.log.Info().Str("path", c.Path()).Msg("Backend rejected session token")
			middleware.ClearSession(c, h.config.AuthCookieSecure)
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return render(c, err)
	}
}
