package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bilgisen/khobor/internal/logger"
)

// SessionCookie is the cookie holding the CMS bearer token.
const SessionCookie = "auth-token"

// SessionTTL is the lifetime of the session cookie.
const SessionTTL = 7 * 24 * time.Hour

// TokenKey is the Locals key holding the session token.
const TokenKey = "token"

// AuthConfig defines the config for the session gate
type AuthConfig struct {
	// Next defines a function to skip middleware.
	// Optional. Default: skips static assets and probes
	Next func(c *fiber.Ctx) bool

	// LoginPath is the page anonymous users are sent to.
	// Optional. Default: "/login"
	LoginPath string

	// HomePath is where signed-in users visiting LoginPath are sent.
	// Optional. Default: "/"
	HomePath string

	// Secure marks the cookie Secure.
	Secure bool

	// Now is the clock used for token expiry.
	// Optional. Default: time.Now
	Now func() time.Time
}

// ConfigDefault is the default config
var ConfigDefault = AuthConfig{
	Next:      isPublicAsset,
	LoginPath: "/login",
	HomePath:  "/",
	Now:       time.Now,
}

// StaticPrefix is the mount point of the embedded assets.
const StaticPrefix = "/static/"

// isPublicAsset reports whether the path is under the static mount or is a
// probe endpoint.
func isPublicAsset(c *fiber.Ctx) bool {
	p := c.Path()
	if p == "/health" || p == "/metrics" {
		return true
	}
	return strings.HasPrefix(p, StaticPrefix)
}

// NewAuth gates every route behind the session cookie. Requests without a
// usable token are redirected to the login page; signed-in requests for the
// login page are redirected home.
func NewAuth(config ...AuthConfig) fiber.Handler {
	cfg := ConfigDefault

	if len(config) > 0 {
		cfg = config[0]

		if cfg.Next == nil {
			cfg.Next = ConfigDefault.Next
		}
		if cfg.LoginPath == "" {
			cfg.LoginPath = ConfigDefault.LoginPath
		}
		if cfg.HomePath == "" {
			cfg.HomePath = ConfigDefault.HomePath
		}
		if cfg.Now == nil {
			cfg.Now = ConfigDefault.Now
		}
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		token := c.Cookies(SessionCookie)
		if token != "" && TokenExpired(token, cfg.Now()) {
			logger.Get().Info().
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Session token expired")
			ClearSession(c, cfg.Secure)
			token = ""
		}

		onLogin := strings.TrimSuffix(c.Path(), "/") == cfg.LoginPath
		switch {
		case onLogin && token != "":
			return c.Redirect(cfg.HomePath, fiber.StatusSeeOther)
		case !onLogin && token == "":
			return c.Redirect(cfg.LoginPath, fiber.StatusSeeOther)
		}

		if token != "" {
			c.Locals(TokenKey, token)
		}
		return c.Next()
	}
}

// TokenExpired reports whether the token is a JWT whose exp claim has
// passed. The signature is not checked: the backend verifies it on every
// call, this only avoids sending a token that is known to be dead. Opaque
// tokens never expire here.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Token returns the session token stored by NewAuth.
func Token(c *fiber.Ctx) string {
	t, _ := c.Locals(TokenKey).(string)
	return t
}

// SetSession stores token in the session cookie.
func SetSession(c *fiber.Ctx, token string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		Expires:  time.Now().Add(SessionTTL),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// ClearSession expires the session cookie.
func ClearSession(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
