package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nilemovies/admin-console/internal/middleware"
	"github.com/nilemovies/admin-console/internal/model"
	"github.com/nilemovies/admin-console/internal/upstream"
)

// Catalog is the slice of the upstream client the handlers consume.
// *upstream.Client satisfies it; tests substitute function-field mocks.
type Catalog interface {
	Login(ctx context.Context, creds upstream.Credentials) (model.Session, error)
	ListMovies(ctx context.Context, token string, f upstream.MovieFilter) (model.MovieList, error)
	GetMovie(ctx context.Context, token, id string) (model.Movie, error)
	CreateMovie(ctx context.Context, token string, draft upstream.MovieDraft, thumbnail, video *upstream.FileUpload) (model.Movie, error)
	UpdateMovie(ctx context.Context, token, id string, draft upstream.MovieDraft, thumbnail, video *upstream.FileUpload) (model.Movie, error)
	DeleteMovie(ctx context.Context, token, id string) error
	ToggleStatus(ctx context.Context, token, id string) (model.Movie, error)
	Stats(ctx context.Context, token string) (model.DashboardStats, error)
	ListUsers(ctx context.Context, token string, f upstream.UserFilter) (model.UserList, error)
	GetUser(ctx context.Context, token, id string) (model.AdminUser, error)
	UpdateUser(ctx context.Context, token, id string, upd upstream.UserUpdate) (model.AdminUser, error)
	DeleteUser(ctx context.Context, token, id string) error
	ResolveMedia(ref string) string
}

// currentToken pulls the bearer token out of the guarded request context.
func currentToken(c echo.Context) string {
	sess, _ := middleware.CurrentSession(c)
	return sess.Token
}

// isForcedLogout reports whether err is the upstream 401 sentinel, which
// handlers must return unrendered so the session sweep middleware can
// clear the session and redirect.
func isForcedLogout(err error) bool {
	return errors.Is(err, upstream.ErrUnauthorized)
}

// upstreamFail renders a non-401 upstream failure view-locally: the
// upstream status and message pass through unchanged so the caller can
// display them.  ErrUnauthorized must never reach here: handlers return
// it as an error so the session sweep can act on it.
func upstreamFail(c echo.Context, err error) error {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		return c.JSON(apiErr.Status, echo.Map{"error": apiErr.Message})
	}
	return c.JSON(http.StatusBadGateway, echo.Map{"error": "catalog service unavailable"})
}
