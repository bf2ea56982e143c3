package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/nilemovies/admin-console/internal/model"
	"github.com/nilemovies/admin-console/internal/upstream"
)

// mockCatalog substitutes the upstream client behind the handlers.  Only
// the function fields a test sets are expected to be called; a nil field
// returns zero values.
type mockCatalog struct {
	login       func(ctx context.Context, creds upstream.Credentials) (model.Session, error)
	listMovies  func(ctx context.Context, token string, f upstream.MovieFilter) (model.MovieList, error)
	getMovie    func(ctx context.Context, token, id string) (model.Movie, error)
	createMovie func(ctx context.Context, token string, draft upstream.MovieDraft, thumbnail, video *upstream.FileUpload) (model.Movie, error)
	updateMovie func(ctx context.Context, token, id string, draft upstream.MovieDraft, thumbnail, video *upstream.FileUpload) (model.Movie, error)
	deleteMovie func(ctx context.Context, token, id string) error
	toggle      func(ctx context.Context, token, id string) (model.Movie, error)
	stats       func(ctx context.Context, token string) (model.DashboardStats, error)
	listUsers   func(ctx context.Context, token string, f upstream.UserFilter) (model.UserList, error)
	getUser     func(ctx context.Context, token, id string) (model.AdminUser, error)
	updateUser  func(ctx context.Context, token, id string, upd upstream.UserUpdate) (model.AdminUser, error)
	deleteUser  func(ctx context.Context, token, id string) error
}

func (m *mockCatalog) Login(ctx context.Context, creds upstream.Credentials) (model.Session, error) {
	if m.login == nil {
		return model.Session{}, nil
	}
	return m.login(ctx, creds)
}

func (m *mockCatalog) ListMovies(ctx context.Context, token string, f upstream.MovieFilter) (model.MovieList, error) {
	if m.listMovies == nil {
		return model.MovieList{}, nil
	}
	return m.listMovies(ctx, token, f)
}

func (m *mockCatalog) GetMovie(ctx context.Context, token, id string) (model.Movie, error) {
	if m.getMovie == nil {
		return model.Movie{}, nil
	}
	return m.getMovie(ctx, token, id)
}

func (m *mockCatalog) CreateMovie(ctx context.Context, token string, draft upstream.MovieDraft, thumbnail, video *upstream.FileUpload) (model.Movie, error) {
	if m.createMovie == nil {
		return model.Movie{}, nil
	}
	return m.createMovie(ctx, token, draft, thumbnail, video)
}

func (m *mockCatalog) UpdateMovie(ctx context.Context, token, id string, draft upstream.MovieDraft, thumbnail, video *upstream.FileUpload) (model.Movie, error) {
	if m.updateMovie == nil {
		return model.Movie{}, nil
	}
	return m.updateMovie(ctx, token, id, draft, thumbnail, video)
}

func (m *mockCatalog) DeleteMovie(ctx context.Context, token, id string) error {
	if m.deleteMovie == nil {
		return nil
	}
	return m.deleteMovie(ctx, token, id)
}

func (m *mockCatalog) ToggleStatus(ctx context.Context, token, id string) (model.Movie, error) {
	if m.toggle == nil {
		return model.Movie{}, nil
	}
	return m.toggle(ctx, token, id)
}

func (m *mockCatalog) Stats(ctx context.Context, token string) (model.DashboardStats, error) {
	if m.stats == nil {
		return model.DashboardStats{}, nil
	}
	return m.stats(ctx, token)
}

func (m *mockCatalog) ListUsers(ctx context.Context, token string, f upstream.UserFilter) (model.UserList, error) {
	if m.listUsers == nil {
		return model.UserList{}, nil
	}
	return m.listUsers(ctx, token, f)
}

func (m *mockCatalog) GetUser(ctx context.Context, token, id string) (model.AdminUser, error) {
	if m.getUser == nil {
		return model.AdminUser{}, nil
	}
	return m.getUser(ctx, token, id)
}

func (m *mockCatalog) UpdateUser(ctx context.Context, token, id string, upd upstream.UserUpdate) (model.AdminUser, error) {
	if m.updateUser == nil {
		return model.AdminUser{}, nil
	}
	return m.updateUser(ctx, token, id, upd)
}

func (m *mockCatalog) DeleteUser(ctx context.Context, token, id string) error {
	if m.deleteUser == nil {
		return nil
	}
	return m.deleteUser(ctx, token, id)
}

func (m *mockCatalog) ResolveMedia(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http") {
		return ref
	}
	return "http://api.test/" + strings.TrimPrefix(ref, "/")
}

// newContext builds an echo context around the given request and returns
// it with its recorder.
func newContext(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// primeSession stashes an admin session the way the route guard would.
func primeSession(c echo.Context) model.Session {
	sess := model.Session{
		Token: "tok-abc",
		User:  model.AdminUser{ID: "u1", Role: model.RoleAdmin, FullName: "Admin", Email: "admin@test"},
	}
	c.Set("session", sess)
	c.Set("sid", "sid-1")
	return sess
}

// filePart is one file attachment for buildMovieForm.
type filePart struct {
	field       string
	filename    string
	contentType string
	content     string
}

// buildMovieForm encodes a multipart movie submission.
func buildMovieForm(t *testing.T, fields map[string][]string, files ...filePart) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, vals := range fields {
		for _, v := range vals {
			if err := mw.WriteField(name, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		hdr.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(f.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/movies", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

// validMovieFields returns a complete, passing set of form values.
func validMovieFields() map[string][]string {
	return map[string][]string{
		"title":       {"Interstellar"},
		"description": {"Space and time"},
		"director":    {"C. Nolan"},
		"genres":      {"Sci-Fi", "Drama"},
		"cast":        {`["M. McConaughey","A. Hathaway"]`},
		"year":        {"2014"},
		"rating":      {"4.8"},
		"ageRating":   {"PG-13"},
	}
}

func validMovieFiles() []filePart {
	return []filePart{
		{field: "thumbnail", filename: "poster.jpg", contentType: "image/jpeg", content: "JPG"},
		{field: "video", filename: "film.mp4", contentType: "video/mp4", content: "MP4"},
	}
}
