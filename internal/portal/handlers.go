// Package portal serves the public news site.
package portal

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/config"
	"github.com/bilgisen/khobor/internal/feed"
	"github.com/bilgisen/khobor/internal/i18n"
	"github.com/bilgisen/khobor/internal/logger"
	"github.com/bilgisen/khobor/internal/models"
	"github.com/bilgisen/khobor/internal/richtext"
	"github.com/bilgisen/khobor/internal/services"
)

// descriptionLength bounds the meta description derived from an article.
const descriptionLength = 160

type Handlers struct {
	config   *config.Config
	services *services.Service
	feeds    *feed.Registry
	log      zerolog.Logger
}

func NewHandlers(cfg *config.Config, svc *services.Service, feeds *feed.Registry) *Handlers {
	return &Handlers{
		config:   cfg,
		services: svc,
		feeds:    feeds,
		log:      logger.Component("portal"),
	}
}

// feedView is the first page of an infinite list as rendered by "feed".
type feedView struct {
	ID       string
	Items    []models.News
	HasMore  bool
	Failed   bool
	EmptyKey string
	MoreURL  string
	SortURL  string
}

// readerSorts are the orders a reader can switch a list to.
var readerSorts = map[string]bool{
	"latest":     true,
	"oldest":     true,
	"views_desc": true,
}

// page returns the data shared by every page: language, navigation
// categories and the current path for the language switch. A category
// failure only empties the navigation.
func (h *Handlers) page(c *fiber.Ctx, title string) fiber.Map {
	lang := langOf(c)

	cats, err := h.services.Categories(c.UserContext())
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to load categories for navigation")
	}

	return fiber.Map{
		"Lang":        lang,
		"Title":       title,
		"Description": i18n.T(lang, "site.tagline"),
		"Categories":  cats,
		"Active":      "",
		"Path":        c.Path(),
		"Today":       time.Now(),
		"SearchQuery": "",
	}
}

// openFeed starts a list for filter and loads its first page.
func (h *Handlers) openFeed(c *fiber.Ctx, filter feed.Filter, emptyKey string) feedView {
	if filter.Limit == 0 {
		filter.Limit = h.config.FeedPageSize
	}
	id, list := h.feeds.Open(filter)

	view := feedView{
		ID:       id,
		EmptyKey: emptyKey,
		MoreURL:  "/feed/" + id + "/more?lang=" + langOf(c),
		SortURL:  "/feed/" + id + "/sort?lang=" + langOf(c),
	}

	items, err := list.LoadMore(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Str("filter", filter.Key()).Msg("Failed to load first page")
		view.Failed = true
		view.HasMore = true
		return view
	}

	view.Items = items
	view.HasMore = list.Snapshot().HasMore()
	return view
}

// Home handles GET /
func (h *Handlers) Home(c *fiber.Ctx) error {
	data := h.page(c, "")

	home, err := h.services.Homepage(c.UserContext())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load homepage")
		data["Failed"] = true
		return c.Render("portal/home", data)
	}

	data["Home"] = SplitHomepage(home)
	return c.Render("portal/home", data)
}

// Latest handles GET /news
func (h *Handlers) Latest(c *fiber.Ctx) error {
	data := h.page(c, i18n.T(langOf(c), "news.latest"))
	data["Active"] = "latest"
	data["Heading"] = i18n.T(langOf(c), "news.latest")
	data["Feed"] = h.openFeed(c, feed.Filter{}, "news.none")
	return c.Render("portal/listing", data)
}

// Category handles GET /:category and GET /category/:slug
func (h *Handlers) Category(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		slug = c.Params("category")
	}

	cats, err := h.services.Categories(c.UserContext())
	if err != nil {
		return err
	}
	cat, ok := models.FindCategory(cats, slug)
	if !ok {
		return fiber.ErrNotFound
	}

	lang := langOf(c)
	name := i18n.CategoryName(cat, lang)

	data := h.page(c, name)
	data["Active"] = cat.Slug
	data["Heading"] = name
	if cat.Description != "" {
		data["Subheading"] = cat.Description
		data["Description"] = cat.Description
	}
	data["Feed"] = h.openFeed(c, feed.Filter{Category: cat.Slug}, "category.empty")
	return c.Render("portal/listing", data)
}

// Search handles GET /search?q=
func (h *Handlers) Search(c *fiber.Ctx) error {
	lang := langOf(c)
	q := strings.TrimSpace(c.Query("q"))

	data := h.page(c, i18n.T(lang, "search.title"))
	data["SearchQuery"] = q
	data["Heading"] = i18n.T(lang, "search.title")

	if q == "" {
		data["Subheading"] = i18n.T(lang, "search.empty")
		data["Feed"] = feedView{EmptyKey: "search.empty"}
		return c.Render("portal/listing", data)
	}

	data["Subheading"] = "“" + q + "”"
	data["Feed"] = h.openFeed(c, feed.Filter{Search: q}, "news.none")
	return c.Render("portal/listing", data)
}

// Author handles GET /author/:id
func (h *Handlers) Author(c *fiber.Ctx) error {
	id := c.Params("id")
	lang := langOf(c)

	name := i18n.T(lang, "author.default")
	if first, err := h.services.News(c.UserContext(), models.ListParams{AuthorID: id, Limit: 1}); err != nil {
		h.log.Warn().Err(err).Str("author_id", id).Msg("Failed to resolve author name")
	} else if len(first.NewsList) > 0 && first.NewsList[0].AuthorName != "" {
		name = first.NewsList[0].AuthorName
	}

	data := h.page(c, name)
	data["AuthorName"] = name
	data["Feed"] = h.openFeed(c, feed.Filter{AuthorID: id}, "news.none")
	return c.Render("portal/author", data)
}

// Article handles GET /news/:slug. Any failure to load the article renders
// the not-found page.
func (h *Handlers) Article(c *fiber.Ctx) error {
	slug := c.Params("slug")

	article, err := h.services.Article(c.UserContext(), slug)
	if err != nil {
		if !apiclient.IsNotFound(err) && !errors.Is(err, apiclient.ErrEmptySlug) {
			h.log.Warn().Err(err).Str("slug", slug).Msg("Failed to load article")
		}
		return fiber.ErrNotFound
	}

	data := h.page(c, article.Title)
	data["Active"] = article.CategorySlug
	data["Article"] = article
	data["ReadingMinutes"] = richtext.ReadingMinutes(article.Content)
	if desc := article.Excerpt; desc != "" {
		data["Description"] = richtext.Truncate(richtext.CleanText(desc), descriptionLength)
	} else {
		data["Description"] = richtext.Excerpt(article.Content, descriptionLength)
	}
	data["Related"] = Related(c.UserContext(), h.services, *article)
	return c.Render("portal/article", data)
}

// More handles GET /feed/:id/more, the continuation request of an infinite
// list. It answers with the next items as an HTML fragment; X-Feed-State
// tells the script whether the list is done.
func (h *Handlers) More(c *fiber.Ctx) error {
	list, ok := h.feeds.Get(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusGone)
	}
	return h.nextPage(c, list)
}

// Sort handles GET /feed/:id/sort?sort=, switching a list to another order.
// The list restarts at page 1 and the answer is its new first page, which
// replaces the rendered items.
func (h *Handlers) Sort(c *fiber.Ctx) error {
	list, ok := h.feeds.Get(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusGone)
	}
	sort := c.Query("sort")
	if !readerSorts[sort] {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	filter := list.Filter()
	filter.Sort = sort
	list.Reset(filter)
	return h.nextPage(c, list)
}

// Close handles POST /feed/:id/close, sent when the reader leaves the page.
func (h *Handlers) Close(c *fiber.Ctx) error {
	h.feeds.Remove(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

// nextPage loads the next page of list and renders it as a fragment. A
// trigger that lost to a concurrent fetch or reset gets 204.
func (h *Handlers) nextPage(c *fiber.Ctx, list *feed.List) error {
	items, err := list.LoadMore(c.UserContext())
	switch {
	case errors.Is(err, feed.ErrInFlight), errors.Is(err, feed.ErrStale):
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, feed.ErrExhausted):
		c.Set("X-Feed-State", "done")
		return c.Render("portal/more", fiber.Map{"Lang": langOf(c), "End": true}, "")
	case err != nil:
		h.log.Error().Err(err).Str("feed", c.Params("id")).Msg("Failed to load next page")
		return c.SendStatus(fiber.StatusBadGateway)
	}

	done := !list.Snapshot().HasMore()
	state := "more"
	if done {
		state = "done"
	}
	c.Set("X-Feed-State", state)
	return c.Render("portal/more", fiber.Map{
		"Lang":  langOf(c),
		"Items": items,
		"End":   done,
	}, "")
}

// Static renders one of the fixed informational pages.
func (h *Handlers) Static(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render("portal/"+name, h.page(c, i18n.T(langOf(c), name+".title")))
	}
}

// RenderError renders the not-found or generic error page.
func (h *Handlers) RenderError(c *fiber.Ctx, status int) error {
	data := h.page(c, "")
	data["Status"] = status

	name := "portal/error"
	if status == fiber.StatusNotFound {
		name = "portal/notfound"
		data["Title"] = i18n.T(langOf(c), "notfound.title")
	}
	return c.Status(status).Render(name, data)
}
