// Package upstream implements the HTTP client for the external catalog API.
// Every data operation the console performs is a pass-through call to this
// service; the console holds no catalog state of its own.  The client owns
// two cross-cutting policies: it attaches the bearer token to every
// authenticated request, and it maps every upstream 401 to ErrUnauthorized
// so the middleware layer can force a logout regardless of which endpoint
// was being called.
package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnauthorized is returned whenever the upstream API answers 401.  It is
// a sentinel so callers can errors.Is it; the session sweep middleware
// converts it into a cleared session plus a login redirect.
var ErrUnauthorized = errors.New("upstream: unauthorized")

// APIError carries a non-401 upstream failure back to the handler that
// issued the call.  Handlers surface it view-locally and never retry.
type APIError struct {
	Status  int    // upstream HTTP status
	Message string // upstream-provided message, or a generic fallback
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.Status, e.Message)
}

// Client talks to the external catalog API.  One instance is shared by all
// handlers; it is stateless apart from the configured base URL.
type Client struct {
	base *url.URL
	http *http.Client
}

// New builds a Client for the given base URL, e.g. "http://localhost:5000".
// Paths passed to the request helpers are joined under <base>/api.
func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("upstream: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream: base url %q missing scheme or host", baseURL)
	}
	return &Client{
		base: u,
		http: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// endpoint builds the absolute URL for an API path like "/admin/movies".
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/api" + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// ResolveMedia turns a media reference returned by the API into an absolute
// URL.  References may already be absolute, or site-relative with or
// without a leading slash; relative ones resolve against the base URL.
func (c *Client) ResolveMedia(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.base.String() + "/" + strings.TrimPrefix(ref, "/")
}

// do sends req with the bearer token attached (when present), enforces the
// 401 policy and, on success, decodes the response body into out when out
// is non-nil.
func (c *Client) do(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: readAPIMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("upstream: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// readAPIMessage pulls a human-readable message out of an upstream error
// body.  The API is inconsistent about the field name, so both `message`
// and `error` are accepted.
func readAPIMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return "request failed"
}
