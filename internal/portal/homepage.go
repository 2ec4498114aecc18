package portal

import "github.com/bilgisen/khobor/internal/models"

// HomeView is the homepage payload sliced for the layout: the first two
// latest articles sit under the featured one, the next four in the side
// column and the rest in the grid.
type HomeView struct {
	Featured  *models.News
	Secondary []models.News
	Side      []models.News
	Grid      []models.News
	Popular   []models.News
}

func SplitHomepage(h *models.Homepage) HomeView {
	if h == nil {
		return HomeView{}
	}
	return HomeView{
		Featured:  h.Featured,
		Secondary: window(h.Latest, 0, 2),
		Side:      window(h.Latest, 2, 6),
		Grid:      window(h.Latest, 6, len(h.Latest)),
		Popular:   h.Popular,
	}
}

func window(items []models.News, from, to int) []models.News {
	if from >= len(items) {
		return nil
	}
	if to > len(items) {
		to = len(items)
	}
	return items[from:to]
}
