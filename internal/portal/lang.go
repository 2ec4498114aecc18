package portal

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khobor/internal/i18n"
)

const (
	langCookie = "lang"
	langKey    = "lang"
)

// Language resolves the reader's language: ?lang= wins and is remembered in
// a cookie, otherwise the cookie, otherwise Bengali.
func Language(secure bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lang := c.Query("lang")
		if lang != "" {
			lang = i18n.Normalize(lang)
			c.Cookie(&fiber.Cookie{
				Name:     langCookie,
				Value:    lang,
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour) / time.Second),
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		} else {
			lang = i18n.Normalize(c.Cookies(langCookie))
		}
		c.Locals(langKey, lang)
		return c.Next()
	}
}

func langOf(c *fiber.Ctx) string {
	if lang, ok := c.Locals(langKey).(string); ok {
		return lang
	}
	return i18n.Default
}
