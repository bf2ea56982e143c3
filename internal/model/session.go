package model

// Session is the authenticated administrator's identity plus the bearer
// token the upstream API issued for it.  A session is only ever created
// from a successful admin login and is destroyed on logout, on any
// upstream 401, or when a persisted record fails to restore.
type Session struct {
	Token string    `json:"token"` // opaque bearer credential for upstream calls
	User  AdminUser `json:"user"`  // the administrator the token belongs to
}

// Valid reports whether the session may gate console routes: it must carry
// a token and an admin identity.
func (s Session) Valid() bool {
	return s.Token != "" && s.User.IsAdmin()
}
