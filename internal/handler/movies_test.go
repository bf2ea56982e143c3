package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nilemovies/admin-console/internal/config"
	"github.com/nilemovies/admin-console/internal/model"
	"github.com/nilemovies/admin-console/internal/upstream"
)

func testConfig() config.Config {
	return config.Config{
		MaxThumbnailBytes: 5 << 20,
		MaxVideoBytes:     500 << 20,
	}
}

func TestCreateValidationNeverReachesUpstream(t *testing.T) {
	cases := []struct {
		name    string
		fields  map[string][]string
		files   []filePart
		wantMsg string
	}{
		{
			name: "missing required text fields",
			fields: map[string][]string{
				"title":  {"X"},
				"genres": {"Drama"},
			},
			files:   validMovieFiles(),
			wantMsg: "required",
		},
		{
			name: "no genre selected",
			fields: map[string][]string{
				"title":       {"X"},
				"description": {"Y"},
				"director":    {"Z"},
			},
			files:   validMovieFiles(),
			wantMsg: "genre",
		},
		{
			name:    "missing video file",
			fields:  validMovieFields(),
			files:   []filePart{{field: "thumbnail", filename: "p.jpg", contentType: "image/jpeg", content: "JPG"}},
			wantMsg: "video file is required",
		},
		{
			name:   "thumbnail is not an image",
			fields: validMovieFields(),
			files: []filePart{
				{field: "thumbnail", filename: "p.pdf", contentType: "application/pdf", content: "PDF"},
				{field: "video", filename: "f.mp4", contentType: "video/mp4", content: "MP4"},
			},
			wantMsg: "image/",
		},
		{
			name: "two thumbnails",
			fields: func() map[string][]string {
				return validMovieFields()
			}(),
			files: []filePart{
				{field: "thumbnail", filename: "a.jpg", contentType: "image/jpeg", content: "A"},
				{field: "thumbnail", filename: "b.jpg", contentType: "image/jpeg", content: "B"},
				{field: "video", filename: "f.mp4", contentType: "video/mp4", content: "MP4"},
			},
			wantMsg: "exactly one",
		},
		{
			name: "bad age rating",
			fields: func() map[string][]string {
				f := validMovieFields()
				f["ageRating"] = []string{"AO"}
				return f
			}(),
			files:   validMovieFiles(),
			wantMsg: "age rating",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			api := &mockCatalog{
				createMovie: func(_ context.Context, _ string, _ upstream.MovieDraft, _, _ *upstream.FileUpload) (model.Movie, error) {
					calls++
					return model.Movie{}, nil
				},
			}
			h := NewMovieHandler(testConfig(), api)

			c, rec := newContext(t, buildMovieForm(t, tc.fields, tc.files...))
			primeSession(c)

			if err := h.Create(c); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if calls != 0 {
				t.Errorf("upstream called %d times on invalid form", calls)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(body["error"], tc.wantMsg) {
				t.Errorf("error = %q, want substring %q", body["error"], tc.wantMsg)
			}
		})
	}
}

func TestCreateRejectsOversizedThumbnail(t *testing.T) {
	cfg := testConfig()
	cfg.MaxThumbnailBytes = 2 // anything real exceeds this

	calls := 0
	api := &mockCatalog{
		createMovie: func(_ context.Context, _ string, _ upstream.MovieDraft, _, _ *upstream.FileUpload) (model.Movie, error) {
			calls++
			return model.Movie{}, nil
		},
	}
	h := NewMovieHandler(cfg, api)

	c, rec := newContext(t, buildMovieForm(t, validMovieFields(), validMovieFiles()...))
	primeSession(c)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if calls != 0 {
		t.Errorf("upstream called despite oversized thumbnail")
	}
}

func TestCreateForwardsDraftAndFiles(t *testing.T) {
	var gotToken string
	var gotDraft upstream.MovieDraft
	var gotThumb, gotVideo *upstream.FileUpload
	api := &mockCatalog{
		createMovie: func(_ context.Context, token string, draft upstream.MovieDraft, thumb, video *upstream.FileUpload) (model.Movie, error) {
			gotToken, gotDraft, gotThumb, gotVideo = token, draft, thumb, video
			return model.Movie{ID: "77", Title: draft.Title, ThumbnailURL: "/uploads/p.jpg"}, nil
		},
	}
	h := NewMovieHandler(testConfig(), api)

	c, rec := newContext(t, buildMovieForm(t, validMovieFields(), validMovieFiles()...))
	sess := primeSession(c)

	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if gotToken != sess.Token {
		t.Errorf("token = %q, want %q", gotToken, sess.Token)
	}
	if gotDraft.Title != "Interstellar" || gotDraft.Year != 2014 || gotDraft.Rating != 4.8 {
		t.Errorf("draft = %+v", gotDraft)
	}
	if len(gotDraft.Genres) != 2 || gotDraft.Genres[0] != "Sci-Fi" {
		t.Errorf("genres = %v", gotDraft.Genres)
	}
	if len(gotDraft.Cast) != 2 || gotDraft.Cast[0] != "M. McConaughey" {
		t.Errorf("cast = %v", gotDraft.Cast)
	}
	if gotThumb == nil || gotThumb.ContentType != "image/jpeg" {
		t.Errorf("thumbnail = %+v", gotThumb)
	}
	if gotVideo == nil || gotVideo.Filename != "film.mp4" {
		t.Errorf("video = %+v", gotVideo)
	}

	var body struct {
		Data model.Movie `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data.ThumbnailURL != "http://api.test/uploads/p.jpg" {
		t.Errorf("thumbnail url = %q, want resolved absolute", body.Data.ThumbnailURL)
	}
}

func TestUpdateWithoutFilesKeepsMedia(t *testing.T) {
	var gotThumb, gotVideo *upstream.FileUpload
	api := &mockCatalog{
		updateMovie: func(_ context.Context, _ string, id string, draft upstream.MovieDraft, thumb, video *upstream.FileUpload) (model.Movie, error) {
			gotThumb, gotVideo = thumb, video
			return model.Movie{ID: id, Title: draft.Title}, nil
		},
	}
	h := NewMovieHandler(testConfig(), api)

	c, rec := newContext(t, buildMovieForm(t, validMovieFields()))
	c.SetPath("/v1/movies/:id")
	c.SetParamNames("id")
	c.SetParamValues("9")
	primeSession(c)

	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if gotThumb != nil || gotVideo != nil {
		t.Errorf("file parts sent without any upload: thumb=%v video=%v", gotThumb, gotVideo)
	}
}

func TestListClearsAllGenreAndResolvesMedia(t *testing.T) {
	var gotFilter upstream.MovieFilter
	api := &mockCatalog{
		listMovies: func(_ context.Context, _ string, f upstream.MovieFilter) (model.MovieList, error) {
			gotFilter = f
			return model.MovieList{
				Data:  []model.Movie{{ID: "1", Title: "A", ThumbnailURL: "uploads/a.jpg"}},
				Total: 1,
			}, nil
		},
	}
	h := NewMovieHandler(testConfig(), api)

	req := httptest.NewRequest(http.MethodGet, "/v1/movies?genre=All&search=a&page=2&limit=12", nil)
	c, rec := newContext(t, req)
	primeSession(c)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotFilter.Genre != "" {
		t.Errorf("genre filter = %q, want cleared for All", gotFilter.Genre)
	}
	if gotFilter.Page != 2 || gotFilter.Limit != 12 || gotFilter.Search != "a" {
		t.Errorf("filter = %+v", gotFilter)
	}
	var body model.MovieList
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data[0].ThumbnailURL != "http://api.test/uploads/a.jpg" {
		t.Errorf("thumbnail = %q", body.Data[0].ThumbnailURL)
	}
}

func TestListEmptyIsArrayNotNull(t *testing.T) {
	h := NewMovieHandler(testConfig(), &mockCatalog{})

	c, rec := newContext(t, httptest.NewRequest(http.MethodGet, "/v1/movies", nil))
	primeSession(c)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty array", rec.Body.String())
	}
}

func TestListUpstreamFailureRendersStatus(t *testing.T) {
	api := &mockCatalog{
		listMovies: func(_ context.Context, _ string, _ upstream.MovieFilter) (model.MovieList, error) {
			return model.MovieList{}, &upstream.APIError{Status: http.StatusServiceUnavailable, Message: "maintenance"}
		},
	}
	h := NewMovieHandler(testConfig(), api)

	c, rec := newContext(t, httptest.NewRequest(http.MethodGet, "/v1/movies", nil))
	primeSession(c)

	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "maintenance") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDeleteForcedLogoutPropagates(t *testing.T) {
	api := &mockCatalog{
		deleteMovie: func(_ context.Context, _, _ string) error {
			return upstream.ErrUnauthorized
		},
	}
	h := NewMovieHandler(testConfig(), api)

	c, rec := newContext(t, httptest.NewRequest(http.MethodDelete, "/v1/movies/5", nil))
	c.SetParamNames("id")
	c.SetParamValues("5")
	primeSession(c)

	err := h.Delete(c)
	if !errors.Is(err, upstream.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized for the sweep", err)
	}
	if rec.Body.Len() != 0 {
		body, _ := io.ReadAll(rec.Body)
		t.Errorf("handler wrote %q before returning the sentinel", body)
	}
}

func TestToggleReturnsUpdatedMovie(t *testing.T) {
	api := &mockCatalog{
		toggle: func(_ context.Context, _, id string) (model.Movie, error) {
			return model.Movie{ID: id, Title: "Heat", IsActive: false}, nil
		},
	}
	h := NewMovieHandler(testConfig(), api)

	c, rec := newContext(t, httptest.NewRequest(http.MethodPatch, "/v1/movies/3/toggle", nil))
	c.SetParamNames("id")
	c.SetParamValues("3")
	primeSession(c)

	if err := h.Toggle(c); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"isActive":false`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestMetaExposesVocabulary(t *testing.T) {
	h := NewMovieHandler(testConfig(), &mockCatalog{})

	c, rec := newContext(t, httptest.NewRequest(http.MethodGet, "/v1/movies/meta", nil))
	if err := h.Meta(c); err != nil {
		t.Fatalf("Meta: %v", err)
	}
	var body struct {
		Genres            []string `json:"genres"`
		AgeRatings        []string `json:"ageRatings"`
		MaxThumbnailBytes int64    `json:"maxThumbnailBytes"`
		MaxVideoBytes     int64    `json:"maxVideoBytes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Genres) == 0 || len(body.AgeRatings) == 0 {
		t.Errorf("vocabularies missing: %+v", body)
	}
	if body.MaxThumbnailBytes != 5<<20 || body.MaxVideoBytes != 500<<20 {
		t.Errorf("limits = %d / %d", body.MaxThumbnailBytes, body.MaxVideoBytes)
	}
}
