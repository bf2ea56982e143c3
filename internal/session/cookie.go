package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the well-known cookie holding the signed session id.
const CookieName = "nile_admin_session"

// CookieCodec mints and verifies the HS256-signed cookie value that links
// a browser to its server-side session record.  Signing means a forged or
// tampered cookie fails verification and is treated exactly like an absent
// one; the sid inside carries no identity on its own.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewCookieCodec builds a codec from the configured session secret and
// lifetime.  The cookie TTL matches the store TTL so the two expire
// together.
func NewCookieCodec(secret string, ttl time.Duration) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), ttl: ttl}
}

// Mint signs a cookie value carrying the session id.
func (cc *CookieCodec) Mint(sid string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": now.Add(cc.ttl).Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(cc.secret)
}

// Parse verifies a cookie value and returns the session id inside.  Any
// failure (bad signature, expiry, wrong algorithm, missing claim) returns
// ErrNoSession.
func (cc *CookieCodec) Parse(value string) (string, error) {
	tok, err := jwt.Parse(value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return cc.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrNoSession
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoSession
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrNoSession
	}
	return sid, nil
}

// NewCookie wraps a minted value in an http.Cookie with the attributes the
// console always uses.
func (cc *CookieCodec) NewCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cc.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie returns a cookie that instructs the browser to drop the
// session cookie immediately.
func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
