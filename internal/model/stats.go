package model

// DashboardStats carries the aggregate counters shown on the console
// dashboard.  Served by the upstream stats endpoint; when that endpoint
// fails the console derives a best-effort version from the movie list.
type DashboardStats struct {
	TotalMovies    int   `json:"totalMovies"`
	TotalUsers     int   `json:"totalUsers"`
	TotalViews     int64 `json:"totalViews"`
	TrendingMovies int   `json:"trendingMovies"`
}
