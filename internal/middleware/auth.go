package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nilemovies/admin-console/internal/model"
	"github.com/nilemovies/admin-console/internal/session"
	"github.com/nilemovies/admin-console/internal/upstream"
)

// Context keys under which the guard stores the restored session.
const (
	ctxSession = "session" // model.Session of the current administrator
	ctxSID     = "sid"     // session id, needed by the forced-401 sweep
)

// CurrentSession returns the session stashed by SessionAuth.  The second
// return is false on routes outside the guarded group.
func CurrentSession(c echo.Context) (model.Session, bool) {
	sess, ok := c.Get(ctxSession).(model.Session)
	return sess, ok
}

// SessionAuth returns the route guard.  On every request it synchronously
// parses the session cookie, restores the persisted session and stashes it
// in the request context.  Any failure clears the cookie and denies access;
// the guard itself holds no state between requests.
func SessionAuth(store *session.Store, codec *session.CookieCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return denyUnauthenticated(c)
			}
			sid, err := codec.Parse(cookie.Value)
			if err != nil {
				c.SetCookie(session.ExpiredCookie())
				return denyUnauthenticated(c)
			}
			sess, err := store.Restore(c.Request().Context(), sid)
			if err != nil {
				c.SetCookie(session.ExpiredCookie())
				return denyUnauthenticated(c)
			}
			c.Set(ctxSession, sess)
			c.Set(ctxSID, sid)
			c.Set("user_id", sess.User.ID)
			c.Set("role", sess.User.Role)
			return next(c)
		}
	}
}

// RequireAdmin enforces the admin role on the guarded group.  Restore
// already purges non-admin sessions, so this is a second check that also
// covers any route wired into the group without SessionAuth by mistake.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, ok := CurrentSession(c)
			if !ok {
				return denyUnauthenticated(c)
			}
			if !sess.User.IsAdmin() {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// Upstream401Sweep implements the unconditional forced-logout policy: when
// any handler returns upstream.ErrUnauthorized the persisted session is
// destroyed, the cookie cleared and the caller sent to the login screen,
// regardless of which endpoint was being served.  Other errors pass
// through untouched for view-local handling.
func Upstream401Sweep(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil || !errors.Is(err, upstream.ErrUnauthorized) {
				return err
			}
			if sid, ok := c.Get(ctxSID).(string); ok {
				_ = store.Destroy(c.Request().Context(), sid)
			}
			c.SetCookie(session.ExpiredCookie())
			return denyUnauthenticated(c)
		}
	}
}

// denyUnauthenticated sends browser navigations to the login screen and
// answers API calls with a 401 that names the same destination.
func denyUnauthenticated(c echo.Context) error {
	if wantsHTML(c) {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error":    "authentication required",
		"redirect": "/login",
	})
}

// wantsHTML reports whether the request looks like a browser navigation
// rather than a fetch/XHR call.
func wantsHTML(c echo.Context) bool {
	accept := c.Request().Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}
