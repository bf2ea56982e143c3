package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nilemovies/admin-console/internal/audit"
	"github.com/nilemovies/admin-console/internal/config"
	"github.com/nilemovies/admin-console/internal/middleware"
	"github.com/nilemovies/admin-console/internal/model"
	"github.com/nilemovies/admin-console/internal/upstream"
)

// MovieHandler serves the catalog screens: list, detail, upload, edit,
// delete and status toggle.  Every operation is a pass-through to the
// upstream API; the handler's own job is validation and media URL
// resolution.
type MovieHandler struct {
	Cfg config.Config
	API Catalog
}

func NewMovieHandler(cfg config.Config, api Catalog) *MovieHandler {
	return &MovieHandler{Cfg: cfg, API: api}
}

// validationError marks a client-side rejection: the submission never left
// the console and the caller fixes the form and resubmits.
type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func invalid(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// Meta exposes the fixed form vocabularies and upload limits so front-ends
// do not hardcode them.
func (h *MovieHandler) Meta(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"genres":            model.Genres,
		"ageRatings":        model.AgeRatings,
		"maxThumbnailBytes": h.Cfg.MaxThumbnailBytes,
		"maxVideoBytes":     h.Cfg.MaxVideoBytes,
	})
}

// List: fetch the movie page matching the declared filters.  A failed
// fetch renders as an empty list with the upstream message, never as a
// broken screen.
func (h *MovieHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	filter := upstream.MovieFilter{
		Search: strings.TrimSpace(c.QueryParam("search")),
		Genre:  strings.TrimSpace(c.QueryParam("genre")),
		Page:   page,
		Limit:  limit,
	}
	if filter.Genre == "All" {
		filter.Genre = ""
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	list, err := h.API.ListMovies(ctx, currentToken(c), filter)
	if err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}
	for i := range list.Data {
		h.resolveMedia(&list.Data[i])
	}
	if list.Data == nil {
		list.Data = []model.Movie{}
	}
	return c.JSON(http.StatusOK, list)
}

// Get: fetch a single movie for the edit form.
func (h *MovieHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	movie, err := h.API.GetMovie(ctx, currentToken(c), c.Param("id"))
	if err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}
	h.resolveMedia(&movie)
	return c.JSON(http.StatusOK, echo.Map{"data": movie})
}

// Create: validate the multipart submission and forward it upstream.  All
// validation failures are rejected here with 400 and reach no network.
func (h *MovieHandler) Create(c echo.Context) error {
	draft, thumb, video, cleanup, err := h.parseMovieForm(c, true)
	if err != nil {
		return rejectForm(c, err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Minute)
	defer cancel()

	sess, _ := middleware.CurrentSession(c)
	movie, err := h.API.CreateMovie(ctx, sess.Token, draft, thumb, video)
	if err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}
	h.resolveMedia(&movie)

	audit.Record(ctx, audit.Event{
		Action:      audit.ActionMovieCreated,
		ActorID:     sess.User.ID,
		ActorEmail:  sess.User.Email,
		TargetID:    movie.ID,
		TargetLabel: draft.Title,
	})

	return c.JSON(http.StatusCreated, echo.Map{"data": movie})
}

// Update: like Create but files are optional; omitted files keep the
// stored media.
func (h *MovieHandler) Update(c echo.Context) error {
	draft, thumb, video, cleanup, err := h.parseMovieForm(c, false)
	if err != nil {
		return rejectForm(c, err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Minute)
	defer cancel()

	sess, _ := middleware.CurrentSession(c)
	id := c.Param("id")
	movie, err := h.API.UpdateMovie(ctx, sess.Token, id, draft, thumb, video)
	if err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}
	h.resolveMedia(&movie)

	audit.Record(ctx, audit.Event{
		Action:      audit.ActionMovieUpdated,
		ActorID:     sess.User.ID,
		ActorEmail:  sess.User.Email,
		TargetID:    id,
		TargetLabel: draft.Title,
	})

	return c.JSON(http.StatusOK, echo.Map{"data": movie})
}

// Delete: remove a movie from the catalog.
func (h *MovieHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sess, _ := middleware.CurrentSession(c)
	id := c.Param("id")
	if err := h.API.DeleteMovie(ctx, sess.Token, id); err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}

	audit.Record(ctx, audit.Event{
		Action:     audit.ActionMovieDeleted,
		ActorID:    sess.User.ID,
		ActorEmail: sess.User.Email,
		TargetID:   id,
	})

	return c.NoContent(http.StatusNoContent)
}

// Toggle: flip a movie between active and inactive.
func (h *MovieHandler) Toggle(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	sess, _ := middleware.CurrentSession(c)
	id := c.Param("id")
	movie, err := h.API.ToggleStatus(ctx, sess.Token, id)
	if err != nil {
		if isForcedLogout(err) {
			return err
		}
		return upstreamFail(c, err)
	}
	h.resolveMedia(&movie)

	audit.Record(ctx, audit.Event{
		Action:      audit.ActionMovieToggled,
		ActorID:     sess.User.ID,
		ActorEmail:  sess.User.Email,
		TargetID:    id,
		TargetLabel: movie.Title,
	})

	return c.JSON(http.StatusOK, echo.Map{"data": movie})
}

// resolveMedia rewrites site-relative media references to absolute URLs.
func (h *MovieHandler) resolveMedia(m *model.Movie) {
	m.ThumbnailURL = h.API.ResolveMedia(m.ThumbnailURL)
	m.VideoURL = h.API.ResolveMedia(m.VideoURL)
}

// rejectForm turns a validation failure into a 400 and passes anything
// else (notably upstream.ErrUnauthorized) through.
func rejectForm(c echo.Context, err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.msg})
	}
	return err
}

// parseMovieForm validates the multipart submission and builds the draft
// plus file parts.  With requireFiles set, exactly one thumbnail and one
// video must be present; otherwise each is optional but still capped and
// type-checked when supplied.  The returned cleanup closes any opened
// file parts and must be called even on the success path.
func (h *MovieHandler) parseMovieForm(c echo.Context, requireFiles bool) (upstream.MovieDraft, *upstream.FileUpload, *upstream.FileUpload, func(), error) {
	var draft upstream.MovieDraft
	noop := func() {}

	form, err := c.MultipartForm()
	if err != nil {
		return draft, nil, nil, noop, invalid("multipart form expected")
	}

	value := func(name string) string {
		if vs := form.Value[name]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	draft.Title = value("title")
	draft.Description = value("description")
	draft.Director = value("director")
	if draft.Title == "" || draft.Description == "" || draft.Director == "" {
		return draft, nil, nil, noop, invalid("title, description and director are required")
	}

	draft.Genres = formGenres(form)
	if len(draft.Genres) == 0 {
		return draft, nil, nil, noop, invalid("at least one genre is required")
	}

	draft.Cast = parseCastField(value("cast"))
	draft.Duration = value("duration")
	draft.Language = value("language")
	draft.ReleaseDate = value("releaseDate")

	if v := value("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return draft, nil, nil, noop, invalid("year must be a number")
		}
		draft.Year = n
	}
	if v := value("rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return draft, nil, nil, noop, invalid("rating must be a number")
		}
		draft.Rating = f
	}
	if v := value("ageRating"); v != "" {
		if !model.ValidAgeRating(v) {
			return draft, nil, nil, noop, invalid("age rating must be one of %s", strings.Join(model.AgeRatings, ", "))
		}
		draft.AgeRating = v
	}
	draft.Trending = value("trending") == "true"
	draft.ComingSoon = value("comingSoon") == "true"
	draft.Featured = value("featured") == "true"

	thumb, closeThumb, err := h.formFile(form, "thumbnail", requireFiles, "image/", h.Cfg.MaxThumbnailBytes)
	if err != nil {
		return draft, nil, nil, noop, err
	}
	video, closeVideo, err := h.formFile(form, "video", requireFiles, "video/", h.Cfg.MaxVideoBytes)
	if err != nil {
		closeThumb()
		return draft, nil, nil, noop, err
	}
	cleanup := func() {
		closeThumb()
		closeVideo()
	}
	return draft, thumb, video, cleanup, nil
}

// formFile validates and opens one file part.  The size check runs before
// the file is opened so an oversized upload is rejected without reading
// its content.
func (h *MovieHandler) formFile(form *multipart.Form, field string, required bool, typePrefix string, maxBytes int64) (*upstream.FileUpload, func(), error) {
	noop := func() {}
	headers := form.File[field]
	switch {
	case len(headers) == 0:
		if required {
			return nil, noop, invalid("a %s file is required", field)
		}
		return nil, noop, nil
	case len(headers) > 1:
		return nil, noop, invalid("exactly one %s file is expected", field)
	}
	hdr := headers[0]
	if hdr.Size > maxBytes {
		return nil, noop, invalid("%s must be less than %dMB", field, maxBytes/(1024*1024))
	}
	ct := hdr.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, typePrefix) {
		return nil, noop, invalid("%s must be a %s* file", field, typePrefix)
	}
	f, err := hdr.Open()
	if err != nil {
		return nil, noop, invalid("could not read %s file", field)
	}
	upload := &upstream.FileUpload{
		Filename:    hdr.Filename,
		ContentType: ct,
		Size:        hdr.Size,
		Content:     f,
	}
	return upload, func() { _ = f.Close() }, nil
}

// formGenres merges the current multi-value `genres` field with the legacy
// single `genre` field, trimming and de-duplicating.
func formGenres(form *multipart.Form) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(g string) {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			return
		}
		seen[g] = true
		out = append(out, g)
	}
	for _, g := range form.Value["genres"] {
		add(g)
	}
	for _, g := range form.Value["genre"] {
		add(g)
	}
	return out
}

// parseCastField accepts the cast input either as a JSON array string (the
// form encodes it that way) or as a plain comma-separated string.
func parseCastField(v string) []string {
	if v == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(v), &list); err == nil {
		return model.SplitList(strings.Join(list, ","))
	}
	return model.SplitList(v)
}
