package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nilemovies/admin-console/internal/model"
	"github.com/nilemovies/admin-console/internal/upstream"
)

func TestStatsPassesThrough(t *testing.T) {
	api := &mockCatalog{
		stats: func(_ context.Context, _ string) (model.DashboardStats, error) {
			return model.DashboardStats{TotalMovies: 12, TotalUsers: 40, TotalViews: 900, TrendingMovies: 3}, nil
		},
	}
	h := NewDashboardHandler(api)

	c, rec := newContext(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))
	primeSession(c)

	if err := h.Stats(c); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	var body struct {
		Data    model.DashboardStats `json:"data"`
		Derived bool                 `json:"derived"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Derived {
		t.Error("derived flag set on a direct stats reply")
	}
	if body.Data.TotalMovies != 12 || body.Data.TotalUsers != 40 {
		t.Errorf("stats = %+v", body.Data)
	}
}

func TestStatsFallsBackToMovieList(t *testing.T) {
	api := &mockCatalog{
		stats: func(_ context.Context, _ string) (model.DashboardStats, error) {
			return model.DashboardStats{}, &upstream.APIError{Status: http.StatusNotFound, Message: "no stats endpoint"}
		},
		listMovies: func(_ context.Context, _ string, f upstream.MovieFilter) (model.MovieList, error) {
			if f.Limit != 100 {
				t.Errorf("fallback limit = %d, want 100", f.Limit)
			}
			return model.MovieList{
				Data: []model.Movie{
					{ID: "1", Views: 10, Trending: true},
					{ID: "2", Views: 5},
					{ID: "3", Views: 1, Trending: true},
				},
				Total: 3,
			}, nil
		},
	}
	h := NewDashboardHandler(api)

	c, rec := newContext(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))
	primeSession(c)

	if err := h.Stats(c); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	var body struct {
		Data    model.DashboardStats `json:"data"`
		Derived bool                 `json:"derived"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Derived {
		t.Error("derived flag missing on a fallback reply")
	}
	if body.Data.TotalMovies != 3 || body.Data.TotalViews != 16 || body.Data.TrendingMovies != 2 {
		t.Errorf("derived stats = %+v", body.Data)
	}
}

func TestStatsFallbackFailureSurfacesOriginalError(t *testing.T) {
	api := &mockCatalog{
		stats: func(_ context.Context, _ string) (model.DashboardStats, error) {
			return model.DashboardStats{}, &upstream.APIError{Status: http.StatusBadGateway, Message: "stats down"}
		},
		listMovies: func(_ context.Context, _ string, _ upstream.MovieFilter) (model.MovieList, error) {
			return model.MovieList{}, &upstream.APIError{Status: http.StatusBadGateway, Message: "list down"}
		},
	}
	h := NewDashboardHandler(api)

	c, rec := newContext(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))
	primeSession(c)

	if err := h.Stats(c); err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestStatsForcedLogoutPropagates(t *testing.T) {
	api := &mockCatalog{
		stats: func(_ context.Context, _ string) (model.DashboardStats, error) {
			return model.DashboardStats{}, upstream.ErrUnauthorized
		},
	}
	h := NewDashboardHandler(api)

	c, _ := newContext(t, httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil))
	primeSession(c)

	if err := h.Stats(c); !errors.Is(err, upstream.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
