package handler

import (
	"context"  // provides context with cancellation for upstream calls
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for upstream calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/nilemovies/admin-console/internal/audit"      // audit event publishing
	"github.com/nilemovies/admin-console/internal/middleware" // session context access
	"github.com/nilemovies/admin-console/internal/session"    // session persistence and cookies
	"github.com/nilemovies/admin-console/internal/upstream"   // upstream catalog API client
)

// AuthHandler bundles dependencies for the session endpoints.
type AuthHandler struct {
	API      Catalog
	Sessions *session.Store
	Cookies  *session.CookieCodec
}

func NewAuthHandler(api Catalog, sessions *session.Store, cookies *session.CookieCodec) *AuthHandler {
	return &AuthHandler{API: api, Sessions: sessions, Cookies: cookies}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type loginResp struct {
	User userPart `json:"user"`
}

// Login: exchange credentials against the upstream API and open a console
// session.  Nothing is persisted unless the upstream reply resolves to an
// admin user, so a viewer account or a malformed reply leaves the caller
// exactly where it started.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	sess, err := h.API.Login(ctx, upstream.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		switch {
		case upstream.IsAuthCode(err, upstream.AuthInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		case upstream.IsAuthCode(err, upstream.AuthForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin privileges required"})
		case upstream.IsAuthCode(err, upstream.AuthInvalidResponse):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "invalid response from catalog service"})
		default:
			return upstreamFail(c, err)
		}
	}

	sid, err := h.Sessions.Create(ctx, sess)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	value, err := h.Cookies.Mint(sid)
	if err != nil {
		_ = h.Sessions.Destroy(ctx, sid)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	c.SetCookie(h.Cookies.NewCookie(value))

	audit.Record(ctx, audit.Event{
		Action:     audit.ActionLogin,
		ActorID:    sess.User.ID,
		ActorEmail: sess.User.Email,
	})

	return c.JSON(http.StatusOK, loginResp{User: userPart{
		ID:       sess.User.ID,
		Role:     sess.User.Role,
		FullName: sess.User.FullName,
		Email:    sess.User.Email,
	}})
}

// Logout: destroy the persisted session and clear the cookie.  The
// redirect, if any, belongs to the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sess, _ := middleware.CurrentSession(c)
	if sid, ok := c.Get("sid").(string); ok {
		_ = h.Sessions.Destroy(ctx, sid)
	}
	c.SetCookie(session.ExpiredCookie())

	audit.Record(ctx, audit.Event{
		Action:     audit.ActionLogout,
		ActorID:    sess.User.ID,
		ActorEmail: sess.User.Email,
	})

	return c.NoContent(http.StatusNoContent)
}

// Me: return the administrator behind the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusOK, loginResp{User: userPart{
		ID:       sess.User.ID,
		Role:     sess.User.Role,
		FullName: sess.User.FullName,
		Email:    sess.User.Email,
	}})
}
