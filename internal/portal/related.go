package portal

import (
	"context"

	"github.com/bilgisen/khobor/internal/models"
)

// RelatedLimit is the number of related articles shown under an article.
const RelatedLimit = 3

// relatedPool is the number of articles fetched per pool. One slot is lost
// when the current article is part of the pool.
const relatedPool = 4

// NewsSource returns one page of news.
type NewsSource interface {
	News(ctx context.Context, params models.ListParams) (*models.NewsList, error)
}

// SelectRelated prefers same-category articles and falls back to the latest
// ones, excluding current from both, keeping backend order and at most
// RelatedLimit items.
func SelectRelated(current models.News, category, latest []models.News) []models.News {
	pool := exclude(category, current.ID)
	if len(pool) == 0 {
		pool = exclude(latest, current.ID)
	}
	if len(pool) > RelatedLimit {
		pool = pool[:RelatedLimit]
	}
	return pool
}

// Related fetches the pools for SelectRelated. The latest pool is only
// requested when the category pool has nothing to offer. Fetch failures
// leave a pool empty.
func Related(ctx context.Context, src NewsSource, current models.News) []models.News {
	var category []models.News
	if current.CategorySlug != "" {
		if list, err := src.News(ctx, models.ListParams{Category: current.CategorySlug, Limit: relatedPool}); err == nil {
			category = list.NewsList
		}
	}
	if len(exclude(category, current.ID)) > 0 {
		return SelectRelated(current, category, nil)
	}

	var latest []models.News
	if list, err := src.News(ctx, models.ListParams{Limit: relatedPool}); err == nil {
		latest = list.NewsList
	}
	return SelectRelated(current, category, latest)
}

func exclude(items []models.News, id string) []models.News {
	out := make([]models.News, 0, len(items))
	for _, n := range items {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
