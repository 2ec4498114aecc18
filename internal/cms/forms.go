package cms

import (
	"strings"

	"github.com/bilgisen/khobor/internal/models"
)

// NewsPageSize is the number of rows of the news table.
const NewsPageSize = 10

// News table orderings understood by the backend.
var newsSorts = []sortOption{
	{Value: "latest", Label: "Latest First"},
	{Value: "oldest", Label: "Oldest First"},
	{Value: "views_desc", Label: "Views (High to Low)"},
	{Value: "views_asc", Label: "Views (Low to High)"},
}

type sortOption struct {
	Value string
	Label string
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type categoryForm struct {
	Name        string `form:"name" validate:"min=2" msg:"Name must be at least 2 characters"`
	NameBN      string `form:"name_bn"`
	Description string `form:"description"`
}

func (f *categoryForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.NameBN = strings.TrimSpace(f.NameBN)
	f.Description = strings.TrimSpace(f.Description)
}

func (f categoryForm) input() models.CategoryInput {
	return models.CategoryInput{Name: f.Name, NameBN: f.NameBN, Description: f.Description}
}

func categoryFormOf(c models.Category) categoryForm {
	return categoryForm{Name: c.Name, NameBN: c.NameBN, Description: c.Description}
}

// newsForm is the create/edit article form. The thumbnail arrives either as
// a file part named "thumbnail" or, when editing without a new image, as the
// stored URL in "thumbnail_url".
type newsForm struct {
	Title        string `form:"title" validate:"min=5" msg:"Title must be at least 5 characters"`
	CategoryID   string `form:"category_id" validate:"required" msg:"Category is required"`
	Excerpt      string `form:"excerpt" validate:"min=10" msg:"Excerpt must be at least 10 characters"`
	Content      string `form:"content" validate:"min=20" msg:"Content must be at least 20 characters"`
	IsFeatured   bool   `form:"is_featured"`
	ThumbnailURL string `form:"thumbnail_url"`
}

func (f *newsForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Excerpt = strings.TrimSpace(f.Excerpt)
	f.Content = strings.TrimSpace(f.Content)
	f.ThumbnailURL = strings.TrimSpace(f.ThumbnailURL)
}

func (f newsForm) input() models.NewsInput {
	return models.NewsInput{
		Title:      f.Title,
		CategoryID: f.CategoryID,
		Excerpt:    f.Excerpt,
		Content:    f.Content,
		IsFeatured: f.IsFeatured,
		Thumbnail:  f.ThumbnailURL,
	}
}

func newsFormOf(n models.News) newsForm {
	return newsForm{
		Title:        n.Title,
		CategoryID:   n.CategoryID,
		Excerpt:      n.Excerpt,
		Content:      n.Content,
		IsFeatured:   n.IsFeatured,
		ThumbnailURL: n.Thumbnail,
	}
}

type userForm struct {
	Name     string `form:"name" validate:"required" msg:"Name is required"`
	Email    string `form:"email" validate:"required,email" msg:"Enter a valid email address"`
	Password string `form:"password" validate:"required" msg:"Password is required"`
}

func (f *userForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
}

type passwordForm struct {
	OldPassword string `form:"old_password" validate:"required" msg:"Old password is required"`
	NewPassword string `form:"new_password" validate:"required" msg:"New password is required"`
}

// newsQuery holds the news table query string.
type newsQuery struct {
	Page int    `query:"page" validate:"omitempty,min=1"`
	Sort string `query:"sort" validate:"omitempty,oneof=latest oldest views_desc views_asc"`
}
