package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nilemovies/admin-console/internal/model"
)

// AuthError codes.  The code is the contract; the text is for logs.
const (
	AuthInvalidCredentials = "invalid-credentials" // upstream rejected the email/password pair
	AuthInvalidResponse    = "invalid-response"    // no user object could be extracted from the reply
	AuthForbidden          = "forbidden"           // credentials valid but the account is not an admin
)

// AuthError is returned by Login for authentication-level failures, as
// opposed to transport failures which surface as APIError.
type AuthError struct {
	Code string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Code
}

// IsAuthCode reports whether err is an AuthError carrying the given code.
func IsAuthCode(err error, code string) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Code == code
}

// Credentials is the login request body forwarded to the upstream API.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginWire tolerates both observed login reply shapes: a flat object with
// `token` and `user`, or the same fields nested under a `data` envelope.
// Some API revisions also used `admin` in place of `user`.
type loginWire struct {
	Token string           `json:"token"`
	User  *model.AdminUser `json:"user"`
	Admin *model.AdminUser `json:"admin"`
	Data  *struct {
		Token string           `json:"token"`
		User  *model.AdminUser `json:"user"`
		Admin *model.AdminUser `json:"admin"`
	} `json:"data"`
}

// normalize flattens a loginWire into a canonical Session.  It returns
// AuthInvalidResponse when no user object is present in either shape.
func (w loginWire) normalize() (model.Session, error) {
	token := w.Token
	user := w.User
	if user == nil {
		user = w.Admin
	}
	if w.Data != nil {
		if token == "" {
			token = w.Data.Token
		}
		if user == nil {
			user = w.Data.User
		}
		if user == nil {
			user = w.Data.Admin
		}
	}
	if user == nil {
		return model.Session{}, &AuthError{Code: AuthInvalidResponse}
	}
	return model.Session{Token: token, User: *user}, nil
}

// Login exchanges credentials for a session.  Both accepted wire shapes
// produce identical session state.  A non-admin role fails with
// AuthForbidden so callers never persist anything for such an account, and
// an upstream 401/403 at this endpoint means bad credentials rather than an
// expired console session.
func (c *Client) Login(ctx context.Context, creds Credentials) (model.Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return model.Session{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/auth/admin/login", nil), bytes.NewReader(body))
	if err != nil {
		return model.Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var wire loginWire
	if err := c.do(req, "", &wire); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return model.Session{}, &AuthError{Code: AuthInvalidCredentials}
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
			return model.Session{}, &AuthError{Code: AuthInvalidCredentials}
		}
		return model.Session{}, err
	}

	sess, err := wire.normalize()
	if err != nil {
		return model.Session{}, err
	}
	if !sess.User.IsAdmin() {
		return model.Session{}, &AuthError{Code: AuthForbidden}
	}
	return sess, nil
}
