package cms

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/middleware"
	"github.com/bilgisen/khobor/internal/models"
	"github.com/bilgisen/khobor/internal/query"
	"github.com/bilgisen/khobor/internal/services"
	"github.com/bilgisen/khobor/internal/utils"
)

// users returns the administrator list. Entries are cached per session
// token under the users prefix.
func (h *Handlers) users(ctx context.Context, token string) ([]models.AdminUser, error) {
	key := services.UsersKey.With(utils.ShortHash(token))
	return query.Fetch(ctx, h.services.Queries(), key, func(ctx context.Context) ([]models.AdminUser, error) {
		return h.api.Users(ctx, token)
	})
}

// Users handles GET /users
func (h *Handlers) Users(c *fiber.Ctx) error {
	return h.renderUsers(c, fiber.StatusOK, userForm{}, nil, nil)
}

// CreateUser handles POST /users
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var form userForm
	fields, err := h.parseForm(c, &form)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return h.renderUsers(c, fiber.StatusUnprocessableEntity, form, fields, nil)
	}

	err = h.api.CreateUser(c.UserContext(), middleware.Token(c), models.NewUser{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return err
		}
		h.log.Warn().Err(err).Str("email", form.Email).Msg("Failed to create user")
		return redirectWith(c, "/users", "error", apiclient.MessageOf(err, "Failed to create user"))
	}

	h.invalidate(c.UserContext(), services.UsersKey)
	return redirectWith(c, "/users", "success", "User created successfully")
}

// ChangePassword handles POST /users/password
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	var form passwordForm
	fields, err := h.parseForm(c, &form)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return h.renderUsers(c, fiber.StatusUnprocessableEntity, userForm{}, nil, fields)
	}

	err = h.api.ChangePassword(c.UserContext(), middleware.Token(c), models.PasswordChange{
		OldPassword: form.OldPassword,
		NewPassword: form.NewPassword,
	})
	if err != nil {
		// A wrong old password comes back as 401 too; it must not end the
		// session.
		h.log.Warn().Err(err).Msg("Failed to update password")
		return redirectWith(c, "/users", "error", apiclient.MessageOf(err, "Failed to update password"))
	}

	return redirectWith(c, "/users", "success", "Password updated successfully")
}

func (h *Handlers) renderUsers(c *fiber.Ctx, status int, form userForm, userErrors, passwordErrors middleware.FieldErrors) error {
	users, err := h.users(c.UserContext(), middleware.Token(c))
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return err
		}
		h.log.Error().Err(err).Msg("Failed to fetch users")
	}
	if userErrors == nil {
		userErrors = middleware.FieldErrors{}
	}
	if passwordErrors == nil {
		passwordErrors = middleware.FieldErrors{}
	}

	data := h.page(c, "User Management", "users")
	data["Users"] = users
	data["Form"] = form
	data["UserErrors"] = userErrors
	data["PasswordErrors"] = passwordErrors
	return c.Status(status).Render("cms/users", data)
}
