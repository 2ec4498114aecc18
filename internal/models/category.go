package models

import "time"

// Category groups news articles. NameBN is optional.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NameBN      string    `json:"name_bn,omitempty"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// DisplayName returns the Bengali name when present, the English one otherwise.
func (c Category) DisplayName() string {
	if c.NameBN != "" {
		return c.NameBN
	}
	return c.Name
}

// FindCategory returns the category with the given slug.
func FindCategory(categories []Category, slug string) (Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryInput is the body of POST/PUT /categories.
type CategoryInput struct {
	Name        string `json:"name"`
	NameBN      string `json:"name_bn"`
	Description string `json:"description"`
}
