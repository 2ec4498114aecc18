package cms

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/middleware"
	"github.com/bilgisen/khobor/internal/models"
	"github.com/bilgisen/khobor/internal/services"
)

// Categories handles GET /categories
func (h *Handlers) Categories(c *fiber.Ctx) error {
	cats, err := h.services.Categories(c.UserContext())
	if err != nil {
		return err
	}

	data := h.page(c, "Categories", "categories")
	data["Categories"] = cats
	return c.Render("cms/categories", data)
}

// NewCategory handles GET /categories/create
func (h *Handlers) NewCategory(c *fiber.Ctx) error {
	return h.renderCategoryForm(c, fiber.StatusOK, nil, categoryForm{}, nil, "")
}

// EditCategory handles GET /categories/edit/:id
func (h *Handlers) EditCategory(c *fiber.Ctx) error {
	cat, err := h.category(c, c.Params("id"))
	if err != nil {
		return err
	}
	return h.renderCategoryForm(c, fiber.StatusOK, cat, categoryFormOf(*cat), nil, "")
}

// CreateCategory handles POST /categories/create
func (h *Handlers) CreateCategory(c *fiber.Ctx) error {
	var form categoryForm
	fields, err := h.parseForm(c, &form)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return h.renderCategoryForm(c, fiber.StatusUnprocessableEntity, nil, form, fields, "")
	}

	if err := h.api.CreateCategory(c.UserContext(), middleware.Token(c), form.input()); err != nil {
		if apiclient.IsUnauthorized(err) {
			return err
		}
		h.log.Warn().Err(err).Str("name", form.Name).Msg("Failed to create category")
		return h.renderCategoryForm(c, fiber.StatusOK, nil, form, nil, apiclient.MessageOf(err, "Failed to create category"))
	}

	h.invalidate(c.UserContext(), services.CategoriesKey)
	return redirectWith(c, "/categories", "success", "Category created successfully")
}

// UpdateCategory handles POST /categories/:id/update
func (h *Handlers) UpdateCategory(c *fiber.Ctx) error {
	cat, err := h.category(c, c.Params("id"))
	if err != nil {
		return err
	}

	var form categoryForm
	fields, err := h.parseForm(c, &form)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return h.renderCategoryForm(c, fiber.StatusUnprocessableEntity, cat, form, fields, "")
	}

	if err := h.api.UpdateCategory(c.UserContext(), middleware.Token(c), cat.ID, form.input()); err != nil {
		if apiclient.IsUnauthorized(err) {
			return err
		}
		h.log.Warn().Err(err).Str("category_id", cat.ID).Msg("Failed to update category")
		return h.renderCategoryForm(c, fiber.StatusOK, cat, form, nil, apiclient.MessageOf(err, "Failed to update category"))
	}

	h.invalidate(c.UserContext(), services.CategoriesKey)
	// Articles embed the category name.
	h.invalidate(c.UserContext(), services.NewsKey)
	return redirectWith(c, "/categories", "success", "Category updated successfully")
}

// DeleteCategory handles POST /categories/:id/delete
func (h *Handlers) DeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.api.DeleteCategory(c.UserContext(), middleware.Token(c), id); err != nil {
		if apiclient.IsUnauthorized(err) {
			return err
		}
		h.log.Warn().Err(err).Str("category_id", id).Msg("Failed to delete category")
		return redirectWith(c, "/categories", "error", apiclient.MessageOf(err, "Failed to delete category"))
	}

	h.invalidate(c.UserContext(), services.CategoriesKey)
	return redirectWith(c, "/categories", "success", "Category deleted successfully")
}

func (h *Handlers) category(c *fiber.Ctx, id string) (*models.Category, error) {
	cats, err := h.services.Categories(c.UserContext())
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if cats[i].ID == id {
			return &cats[i], nil
		}
	}
	return nil, fiber.ErrNotFound
}

func (h *Handlers) renderCategoryForm(c *fiber.Ctx, status int, cat *models.Category, form categoryForm, verr error, message string) error {
	title := "Create Category"
	action := "/categories/create"
	if cat != nil {
		title = "Edit Category"
		action = "/categories/" + cat.ID + "/update"
	}

	data := h.page(c, title, "categories")
	data["Form"] = form
	data["Action"] = action
	data["Errors"] = fieldErrors(verr)
	data["Error"] = message
	return c.Status(status).Render("cms/category_form", data)
}

// fieldErrors returns the per-field messages of a validation error.
func fieldErrors(err error) middleware.FieldErrors {
	if fe, ok := err.(middleware.FieldErrors); ok {
		return fe
	}
	return middleware.FieldErrors{}
}
