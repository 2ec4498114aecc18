package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/logger"
)

// RenderError writes the error page for status.
type RenderError func(c *fiber.Ctx, status int) error

// NewErrorHandler returns a fiber error handler that logs the failure and
// hands the response to render. Backend errors keep a 404 status and map
// everything else to 502.
func NewErrorHandler(render RenderError) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)

		event := logger.Get().Warn()
		if code >= fiber.StatusInternalServerError {
			event = logger.Get().Error()
		}
		event.
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", code).
			Msg("HTTP error")

		if rerr := render(c, code); rerr != nil {
			return c.Status(code).SendString(fiber.ErrInternalServerError.Message)
		}
		return nil
	}
}

// StatusFor returns the response status for a handler error.
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == fiber.StatusNotFound {
			return fiber.StatusNotFound
		}
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
