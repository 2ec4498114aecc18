package cms

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/middleware"
	"github.com/bilgisen/khobor/internal/models"
	"github.com/bilgisen/khobor/internal/services"
	"github.com/bilgisen/khobor/internal/storage"
)

// News handles GET /news, the paginated article table. The list is read
// with the session token and never cached, so drafts and fresh edits show.
func (h *Handlers) News(c *fiber.Ctx) error {
	q, _ := c.Locals("query").(*newsQuery)
	if q == nil {
		q = &newsQuery{}
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	sort := q.Sort
	if sort == "" {
		sort = "latest"
	}

	list, err := h.api.ListNews(c.UserContext(), models.ListParams{
		Page:  page,
		Limit: NewsPageSize,
		Sort:  sort,
	}, middleware.Token(c))
	if err != nil {
		return err
	}

	totalPages := list.TotalPages(NewsPageSize)

	data := h.page(c, "News Articles", "news")
	data["News"] = list.NewsList
	data["Page"] = page
	data["Sort"] = sort
	data["Sorts"] = newsSorts
	data["TotalPages"] = totalPages
	data["HasPrev"] = page > 1
	data["HasNext"] = page < totalPages
	return c.Render("cms/news", data)
}

// NewNews handles GET /news/create
func (h *Handlers) NewNews(c *fiber.Ctx) error {
	return h.renderNewsForm(c, fiber.StatusOK, nil, newsForm{}, nil, "")
}

// EditNews handles GET /news/edit/:slug
func (h *Handlers) EditNews(c *fiber.Ctx) error {
	article, err := h.services.Article(c.UserContext(), c.Params("slug"))
	if err != nil {
		if apiclient.IsNotFound(err) || errors.Is(err, apiclient.ErrEmptySlug) {
			return fiber.ErrNotFound
		}
		return err
	}
	return h.renderNewsForm(c, fiber.StatusOK, article, newsFormOf(*article), nil, "")
}

// CreateNews handles POST /news/create
func (h *Handlers) CreateNews(c *fiber.Ctx) error {
	return h.saveNews(c, nil)
}

// UpdateNews handles POST /news/edit/:slug
func (h *Handlers) UpdateNews(c *fiber.Ctx) error {
	article, err := h.services.Article(c.UserContext(), c.Params("slug"))
	if err != nil {
		if apiclient.IsNotFound(err) || errors.Is(err, apiclient.ErrEmptySlug) {
			return fiber.ErrNotFound
		}
		return err
	}
	return h.saveNews(c, article)
}

// saveNews validates the article form, places the thumbnail through the
// configured uploader and creates or updates the article.
func (h *Handlers) saveNews(c *fiber.Ctx, existing *models.News) error {
	var form newsForm
	fields, err := h.parseForm(c, &form)
	if err != nil {
		return err
	}
	if fields == nil {
		fields = middleware.FieldErrors{}
	}
	if existing != nil && form.ThumbnailURL == "" {
		form.ThumbnailURL = existing.Thumbnail
	}

	// No file part, or an empty one from an untouched file input, means the
	// stored thumbnail is kept.
	fh, err := c.FormFile("thumbnail")
	if err != nil || fh.Filename == "" {
		fh = nil
	}

	var upload *models.Upload
	if fh != nil {
		upload = uploadOf(fh)
		switch err := storage.CheckImage(upload, h.config.MaxUploadSize); {
		case errors.Is(err, storage.ErrTooLarge):
			fields["thumbnail"] = fmt.Sprintf("Image is too large. Please select an image smaller than %dMB.", megabytes(h.config.MaxUploadSize))
		case errors.Is(err, storage.ErrNotImage):
			fields["thumbnail"] = "Please select an image file"
		}
	} else if form.ThumbnailURL == "" {
		fields["thumbnail"] = "Thumbnail is required"
	}

	if len(fields) > 0 {
		return h.renderNewsForm(c, fiber.StatusUnprocessableEntity, existing, form, fields, "")
	}

	fallback := "Failed to create news"
	if existing != nil {
		fallback = "Failed to update news"
	}

	ctx := c.UserContext()
	token := middleware.Token(c)
	in := form.input()

	if upload != nil {
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open thumbnail: %w", err)
		}
		defer f.Close()
		upload.Reader = f

		if err := h.uploads.Attach(ctx, token, &in, upload); err != nil {
			if apiclient.IsUnauthorized(err) {
				return err
			}
			h.log.Error().Err(err).Str("mode", h.uploads.Mode()).Msg("Failed to store thumbnail")
			return h.renderNewsForm(c, fiber.StatusOK, existing, form, nil, apiclient.MessageOf(err, fallback))
		}
	}

	if existing == nil {
		err = h.api.CreateNews(ctx, token, in)
	} else {
		err = h.api.UpdateNews(ctx, token, existing.ID, in)
	}
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			return err
		}
		h.log.Warn().Err(err).Str("title", form.Title).Msg(fallback)
		return h.renderNewsForm(c, fiber.StatusOK, existing, form, nil, apiclient.MessageOf(err, fallback))
	}

	h.invalidate(ctx, services.NewsKey)
	if existing == nil {
		return redirectWith(c, "/news", "success", "News published successfully")
	}
	return redirectWith(c, "/news", "success", "News updated successfully")
}

// DeleteNews handles POST /news/:id/delete
func (h *Handlers) DeleteNews(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.api.DeleteNews(c.UserContext(), middleware.Token(c), id); err != nil {
		if apiclient.IsUnauthorized(err) {
			return err
		}
		h.log.Warn().Err(err).Str("news_id", id).Msg("Failed to delete news")
		return redirectWith(c, "/news", "error", apiclient.MessageOf(err, "Failed to delete news"))
	}

	h.invalidate(c.UserContext(), services.NewsKey)
	return redirectWith(c, "/news", "success", "News deleted successfully")
}

func (h *Handlers) renderNewsForm(c *fiber.Ctx, status int, existing *models.News, form newsForm, fields middleware.FieldErrors, message string) error {
	cats, err := h.services.Categories(c.UserContext())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to load categories for news form")
	}

	title := "Create News"
	action := "/news/create"
	if existing != nil {
		title = "Edit News"
		action = "/news/edit/" + existing.Slug
	}
	if fields == nil {
		fields = middleware.FieldErrors{}
	}

	data := h.page(c, title, "news")
	data["Form"] = form
	data["Action"] = action
	data["Categories"] = cats
	data["Errors"] = fields
	data["Error"] = message
	data["MaxUploadMB"] = megabytes(h.config.MaxUploadSize)
	return c.Status(status).Render("cms/news_form", data)
}

func uploadOf(fh *multipart.FileHeader) *models.Upload {
	return &models.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
}

func megabytes(n int64) int64 {
	mb := n >> 20
	if mb < 1 {
		return 1
	}
	return mb
}
