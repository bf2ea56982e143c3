package model

import "encoding/json"

// RoleAdmin is the only role allowed to hold a console session.  Any other
// role on a restored or freshly issued session is treated as unauthenticated.
const RoleAdmin = "admin"

// AdminUser is the identity record the upstream API returns alongside a
// bearer token.  Identifiers arrive as numbers from some revisions of the
// API and as strings from others, so the ID is coerced during decoding.
//
// Fields:
//
//	ID       – upstream identifier of the account.
//	Role     – account role; only "admin" is accepted by the console.
//	FullName – display name shown in the console header.
//	Email    – login email address.
type AdminUser struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type adminUserWire struct {
	ID       json.RawMessage `json:"id"`
	AltID    json.RawMessage `json:"_id"`
	Role     string          `json:"role"`
	FullName string          `json:"fullName"`
	Email    string          `json:"email"`
}

func (u *AdminUser) UnmarshalJSON(b []byte) error {
	var w adminUserWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	id := w.ID
	if len(id) == 0 || string(id) == "null" {
		id = w.AltID
	}
	*u = AdminUser{
		ID:       rawToString(id),
		Role:     w.Role,
		FullName: w.FullName,
		Email:    w.Email,
	}
	return nil
}

// IsAdmin reports whether the user may hold a console session.
func (u AdminUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserList is the paged envelope returned by the upstream users endpoint.
type UserList struct {
	Data  []AdminUser `json:"data"`
	Total int         `json:"total"`
}
