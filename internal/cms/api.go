// Package cms serves the administrative back office: session handling,
// dashboard, and the category, news and user management screens.
package cms

import (
	"context"

	"github.com/bilgisen/khobor/internal/models"
)

// API is the part of the backend client used by the CMS. Every method that
// takes a token sends it as the bearer credential.
type API interface {
	Login(ctx context.Context, creds models.Credentials) (string, error)
	Me(ctx context.Context, token string) (*models.AdminUser, error)
	Stats(ctx context.Context, token string) (*models.DashboardStats, error)

	Users(ctx context.Context, token string) ([]models.AdminUser, error)
	CreateUser(ctx context.Context, token string, user models.NewUser) error
	ChangePassword(ctx context.Context, token string, change models.PasswordChange) error

	CreateCategory(ctx context.Context, token string, in models.CategoryInput) error
	UpdateCategory(ctx context.Context, token, id string, in models.CategoryInput) error
	DeleteCategory(ctx context.Context, token, id string) error

	ListNews(ctx context.Context, params models.ListParams, token string) (*models.NewsList, error)
	CreateNews(ctx context.Context, token string, in models.NewsInput) error
	UpdateNews(ctx context.Context, token, id string, in models.NewsInput) error
	DeleteNews(ctx context.Context, token, id string) error
}
