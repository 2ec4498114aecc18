package models

// CategoryViewStat is the aggregate views of one category.
type CategoryViewStat struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// NewsViewStat is one entry of the top-news ranking.
type NewsViewStat struct {
	Title string `json:"title"`
	Views int64  `json:"views"`
}

// DashboardStats is the body of GET /stats.
type DashboardStats struct {
	TotalNews       int64              `json:"total_news"`
	TotalCategories int64              `json:"total_categories"`
	TotalUsers      int64              `json:"total_users"`
	TotalViews      int64              `json:"total_views"`
	CategoryStats   []CategoryViewStat `json:"category_stats"`
	TopNews         []NewsViewStat     `json:"top_news"`
}
