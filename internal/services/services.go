// Package services exposes the cached read paths of the backend: categories,
// news lists, single articles and the homepage payload.
package services

import (
	"context"

	"github.com/bilgisen/khobor/internal/apiclient"
	"github.com/bilgisen/khobor/internal/models"
	"github.com/bilgisen/khobor/internal/query"
	"github.com/bilgisen/khobor/internal/utils"
)

// Cache key roots. Mutations invalidate by these prefixes.
var (
	CategoriesKey = query.Key{"categories"}
	NewsKey       = query.Key{"news"}
	UsersKey      = query.Key{"users"}
)

// Backend is the subset of the API client read by the services.
type Backend interface {
	Categories(ctx context.Context) ([]models.Category, error)
	ListNews(ctx context.Context, params models.ListParams, token string) (*models.NewsList, error)
	NewsBySlug(ctx context.Context, slug string) (*models.News, error)
	Homepage(ctx context.Context) (*models.Homepage, error)
}

type Service struct {
	api     Backend
	queries *query.Client
}

func New(api Backend, queries *query.Client) *Service {
	return &Service{api: api, queries: queries}
}

// Queries returns the query client shared with the mutation side.
func (s *Service) Queries() *query.Client {
	return s.queries
}

// Categories returns every category. All concurrent readers share one
// request and one cached result.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return query.Fetch(ctx, s.queries, CategoriesKey, s.api.Categories)
}

// News returns one page of the news list for params.
func (s *Service) News(ctx context.Context, params models.ListParams) (*models.NewsList, error) {
	return query.Fetch(ctx, s.queries, ListKey(params), func(ctx context.Context) (*models.NewsList, error) {
		return s.api.ListNews(ctx, params, "")
	})
}

// Article returns the article with the given slug. An empty slug fails
// without a backend call.
func (s *Service) Article(ctx context.Context, slug string) (*models.News, error) {
	if slug == "" {
		return nil, apiclient.ErrEmptySlug
	}
	return query.Fetch(ctx, s.queries, NewsKey.With("slug", slug), func(ctx context.Context) (*models.News, error) {
		return s.api.NewsBySlug(ctx, slug)
	})
}

func (s *Service) Homepage(ctx context.Context) (*models.Homepage, error) {
	return query.Fetch(ctx, s.queries, NewsKey.With("homepage"), s.api.Homepage)
}

// ListKey is the cache key of one news list page. Equal parameter sets map to
// the same key regardless of field order.
func ListKey(params models.ListParams) query.Key {
	return NewsKey.With("list", utils.ShortHash(apiclient.EncodeListParams(params).Encode()))
}
