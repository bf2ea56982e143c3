package upstream

import (
	"context"
	"net/http"

	"github.com/nilemovies/admin-console/internal/model"
)

// Stats fetches the dashboard counters.  The reply is expected under a
// `data` envelope but a bare object is tolerated.
func (c *Client) Stats(ctx context.Context, token string) (model.DashboardStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/admin/dashboard/stats", nil), nil)
	if err != nil {
		return model.DashboardStats{}, err
	}
	var out struct {
		Data *model.DashboardStats `json:"data"`
		model.DashboardStats
	}
	if err := c.do(req, token, &out); err != nil {
		return model.DashboardStats{}, err
	}
	if out.Data != nil {
		return *out.Data, nil
	}
	return out.DashboardStats, nil
}
