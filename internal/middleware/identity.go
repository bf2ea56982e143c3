package middleware

// identity.go provides the user identifier used when building rate-limit
// keys.  On guarded routes SessionAuth has already stashed the restored
// session; on the login route there is no identity yet, so callers are
// bucketed as "anon" and distinguished by IP instead.

import "github.com/labstack/echo/v4"

// currentUserID extracts the administrator's id from the request context.
// It returns "anon" when the request carries no session.
func currentUserID(c echo.Context) string {
	if sess, ok := CurrentSession(c); ok && sess.User.ID != "" {
		return sess.User.ID
	}
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
