package models

import "time"

// Publication states of a news article.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// News is a single article as returned by the backend.
type News struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	CategoryID   string    `json:"category_id"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	Content      string    `json:"content,omitempty"`
	Thumbnail    string    `json:"thumbnail"`
	Slug         string    `json:"slug"`
	Status       string    `json:"status"`
	IsFeatured   bool      `json:"is_featured"`
	ViewsCount   int64     `json:"views_count"`
	PublishedAt  time.Time `json:"published_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	AuthorName   string    `json:"author_name,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	CategorySlug string    `json:"category_slug,omitempty"`
}

// IsPublished reports whether the article is publicly visible.
func (n News) IsPublished() bool {
	return n.Status == StatusPublished
}

// NewsList is the body of GET /news. Total is only present when the backend
// reports it, so it is a pointer.
type NewsList struct {
	NewsList []News `json:"newsList"`
	Total    *int64 `json:"total,omitempty"`
}

// TotalPages derives the number of pages for the CMS table.
func (l NewsList) TotalPages(limit int) int {
	if l.Total == nil || limit <= 0 || *l.Total <= 0 {
		return 1
	}
	return int((*l.Total + int64(limit) - 1) / int64(limit))
}

// Homepage is the pre-partitioned payload of GET /news/homepage.
type Homepage struct {
	Featured *News `json:"featured"`
	Latest   []News `json:"latest"`
	Popular  []News `json:"popular"`
}

// ListParams are the query parameters accepted by GET /news. Zero values are
// omitted from the request.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	AuthorID string
	Sort     string
	Featured *bool
	Search   string
}
