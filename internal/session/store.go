// Package session persists administrator sessions server-side.  A session
// is the upstream bearer token plus the admin identity it belongs to,
// stored under a random session id with a TTL.  The browser only ever
// holds the signed cookie carrying that id (see cookie.go).
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/nilemovies/admin-console/internal/model"
)

// ErrNoSession is returned when a session id resolves to nothing usable:
// absent, expired, unparsable, or held by a non-admin.  In every one of
// those cases the persisted record has already been erased by the time the
// error is returned, so no partial state survives.
var ErrNoSession = errors.New("session: no session")

// KV is the minimal key/value surface the store needs.  Redis backs it in
// production; the in-process map backs it in tests and when Redis is down.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

const keyPrefix = "console:sess:"

// Store creates, restores and destroys persisted sessions.
type Store struct {
	kv  KV
	ttl time.Duration
}

// NewStore builds a Store over the given backend with the given session
// lifetime.
func NewStore(kv KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

// Create persists sess under a fresh random session id and returns the id.
// The caller is expected to have verified the admin role already; Create
// refuses anything else as a second check so a non-admin record can never
// be written.
func (s *Store) Create(ctx context.Context, sess model.Session) (string, error) {
	if !sess.Valid() {
		return "", ErrNoSession
	}
	sid, err := randomHex(32)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, keyPrefix+sid, string(raw), s.ttl); err != nil {
		return "", err
	}
	return sid, nil
}

// Restore loads the session for sid.  A record that is missing, fails to
// parse, or belongs to a non-admin yields ErrNoSession, and the record is
// erased so stale state cannot be retried into a session later.
func (s *Store) Restore(ctx context.Context, sid string) (model.Session, error) {
	if sid == "" {
		return model.Session{}, ErrNoSession
	}
	raw, found, err := s.kv.Get(ctx, keyPrefix+sid)
	if err != nil {
		return model.Session{}, err
	}
	if !found {
		return model.Session{}, ErrNoSession
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		_ = s.kv.Del(ctx, keyPrefix+sid)
		return model.Session{}, ErrNoSession
	}
	if !sess.Valid() {
		_ = s.kv.Del(ctx, keyPrefix+sid)
		return model.Session{}, ErrNoSession
	}
	return sess, nil
}

// Destroy erases the persisted record for sid.  It never navigates or
// touches cookies; callers own any redirect.
func (s *Store) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.kv.Del(ctx, keyPrefix+sid)
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
