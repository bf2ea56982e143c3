package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/nilemovies/admin-console/internal/model"
)

// MovieFilter narrows the upstream movie listing.  Zero values mean "no
// filter"; the parameters are passed through to the API untouched.
type MovieFilter struct {
	Search string // free-text search over title/description
	Genre  string // single genre name
	Page   int    // 1-based page number
	Limit  int    // page size
}

func (f MovieFilter) query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Genre != "" {
		q.Set("genre", f.Genre)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// MovieDraft carries the validated form fields of a create or update
// submission.  It exists only for the duration of the upstream call and is
// never persisted console-side.
type MovieDraft struct {
	Title       string
	Description string
	Genres      []string
	Director    string
	Cast        []string
	Year        int
	Duration    string
	Rating      float64
	AgeRating   string
	Language    string
	ReleaseDate string
	Trending    bool
	ComingSoon  bool
	Featured    bool
}

// FileUpload is one file part of a multipart submission.  Content is
// streamed to the upstream API without buffering the whole file in memory.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ListMovies fetches the movie catalog page matching the filter.
func (c *Client) ListMovies(ctx context.Context, token string, f MovieFilter) (model.MovieList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/admin/movies", f.query()), nil)
	if err != nil {
		return model.MovieList{}, err
	}
	var list model.MovieList
	if err := c.do(req, token, &list); err != nil {
		return model.MovieList{}, err
	}
	return list, nil
}

// movieReply captures a single-movie response body, which some API
// revisions send bare and others wrap in a `data` envelope.
type movieReply struct {
	raw json.RawMessage
}

func (r *movieReply) UnmarshalJSON(b []byte) error {
	r.raw = append(r.raw[:0], b...)
	return nil
}

func (r movieReply) movie() (model.Movie, error) {
	body := []byte(r.raw)
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && len(probe.Data) > 0 && string(probe.Data) != "null" {
		body = probe.Data
	}
	var m model.Movie
	err := json.Unmarshal(body, &m)
	return m, err
}

// GetMovie fetches a single movie by its upstream identifier.
func (c *Client) GetMovie(ctx context.Context, token, id string) (model.Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/admin/movies/"+url.PathEscape(id), nil), nil)
	if err != nil {
		return model.Movie{}, err
	}
	var out movieReply
	if err := c.do(req, token, &out); err != nil {
		return model.Movie{}, err
	}
	return out.movie()
}

// CreateMovie submits a new movie as multipart form data: the draft fields
// plus exactly one thumbnail and one video part.
func (c *Client) CreateMovie(ctx context.Context, token string, draft MovieDraft, thumbnail, video *FileUpload) (model.Movie, error) {
	return c.submitMovie(ctx, token, http.MethodPost, "/admin/movies", draft, thumbnail, video)
}

// UpdateMovie replaces an existing movie's fields.  File parts are optional
// on update; passing nil keeps the stored media.
func (c *Client) UpdateMovie(ctx context.Context, token, id string, draft MovieDraft, thumbnail, video *FileUpload) (model.Movie, error) {
	return c.submitMovie(ctx, token, http.MethodPut, "/admin/movies/"+url.PathEscape(id), draft, thumbnail, video)
}

// DeleteMovie removes a movie from the catalog.
func (c *Client) DeleteMovie(ctx context.Context, token, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/admin/movies/"+url.PathEscape(id), nil), nil)
	if err != nil {
		return err
	}
	return c.do(req, token, nil)
}

// ToggleStatus flips a movie between active and inactive and returns the
// record as the API now sees it.
func (c *Client) ToggleStatus(ctx context.Context, token, id string) (model.Movie, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.endpoint("/admin/movies/"+url.PathEscape(id)+"/toggle-status", nil), nil)
	if err != nil {
		return model.Movie{}, err
	}
	var out movieReply
	if err := c.do(req, token, &out); err != nil {
		return model.Movie{}, err
	}
	return out.movie()
}

// submitMovie streams a multipart body through an io.Pipe so large video
// files never sit fully in memory.  A write error inside the goroutine is
// propagated through CloseWithError and surfaces from http.Client.Do.
func (c *Client) submitMovie(ctx context.Context, token, method, path string, draft MovieDraft, thumbnail, video *FileUpload) (model.Movie, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMovieForm(mw, draft, thumbnail, video)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), pr)
	if err != nil {
		return model.Movie{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out movieReply
	if err := c.do(req, token, &out); err != nil {
		return model.Movie{}, err
	}
	return out.movie()
}

func writeMovieForm(mw *multipart.Writer, draft MovieDraft, thumbnail, video *FileUpload) error {
	fields := map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
		"director":    draft.Director,
		"year":        strconv.Itoa(draft.Year),
		"duration":    draft.Duration,
		"rating":      strconv.FormatFloat(draft.Rating, 'f', -1, 64),
		"ageRating":   draft.AgeRating,
		"language":    draft.Language,
		"releaseDate": draft.ReleaseDate,
		"trending":    strconv.FormatBool(draft.Trending),
		"comingSoon":  strconv.FormatBool(draft.ComingSoon),
		"featured":    strconv.FormatBool(draft.Featured),
	}
	for name, val := range fields {
		if err := mw.WriteField(name, val); err != nil {
			return err
		}
	}
	// Cast travels as a JSON array string, matching what the API expects
	// from the original form encoding.
	castJSON, err := json.Marshal(draft.Cast)
	if err != nil {
		return err
	}
	if err := mw.WriteField("cast", string(castJSON)); err != nil {
		return err
	}
	// The current schema reads repeated `genres` fields; older deployments
	// read a single `genre`.  Send both so either revision stores the data.
	for _, g := range draft.Genres {
		if err := mw.WriteField("genres", g); err != nil {
			return err
		}
	}
	if len(draft.Genres) > 0 {
		if err := mw.WriteField("genre", draft.Genres[0]); err != nil {
			return err
		}
	}
	if err := writeFilePart(mw, "thumbnail", thumbnail); err != nil {
		return err
	}
	return writeFilePart(mw, "video", video)
}

func writeFilePart(mw *multipart.Writer, field string, f *FileUpload) error {
	if f == nil {
		return nil
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Filename))
	if f.ContentType != "" {
		hdr.Set("Content-Type", f.ContentType)
	}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f.Content)
	return err
}
