package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nilemovies/admin-console/internal/model"
)

// UserFilter narrows the upstream user listing.
type UserFilter struct {
	Search string
	Page   int
	Limit  int
}

func (f UserFilter) query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// UserUpdate is the JSON body forwarded on user edits.  Pointers keep
// omitted fields out of the request so the API only touches what the
// administrator changed.
type UserUpdate struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// userReply tolerates bare and `data`-wrapped single-user bodies.
type userReply struct {
	raw json.RawMessage
}

func (r *userReply) UnmarshalJSON(b []byte) error {
	r.raw = append(r.raw[:0], b...)
	return nil
}

func (r userReply) user() (model.AdminUser, error) {
	body := []byte(r.raw)
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && len(probe.Data) > 0 && string(probe.Data) != "null" {
		body = probe.Data
	}
	var u model.AdminUser
	err := json.Unmarshal(body, &u)
	return u, err
}

// ListUsers fetches the user administration page matching the filter.
func (c *Client) ListUsers(ctx context.Context, token string, f UserFilter) (model.UserList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/admin/users", f.query()), nil)
	if err != nil {
		return model.UserList{}, err
	}
	var list model.UserList
	if err := c.do(req, token, &list); err != nil {
		return model.UserList{}, err
	}
	return list, nil
}

// GetUser fetches one user account by id.
func (c *Client) GetUser(ctx context.Context, token, id string) (model.AdminUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/admin/users/"+url.PathEscape(id), nil), nil)
	if err != nil {
		return model.AdminUser{}, err
	}
	var out userReply
	if err := c.do(req, token, &out); err != nil {
		return model.AdminUser{}, err
	}
	return out.user()
}

// UpdateUser forwards an account edit upstream.
func (c *Client) UpdateUser(ctx context.Context, token, id string, upd UserUpdate) (model.AdminUser, error) {
	body, err := json.Marshal(upd)
	if err != nil {
		return model.AdminUser{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint("/admin/users/"+url.PathEscape(id), nil), bytes.NewReader(body))
	if err != nil {
		return model.AdminUser{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var out userReply
	if err := c.do(req, token, &out); err != nil {
		return model.AdminUser{}, err
	}
	return out.user()
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/admin/users/"+url.PathEscape(id), nil), nil)
	if err != nil {
		return err
	}
	return c.do(req, token, nil)
}
