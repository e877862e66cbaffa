package storefront

import (
	"context"
	"net/http"

	"github.com/angelmondragon/coffeemarket/pkg/types"
)

// Points returns the balance together with the full history.
func (c *Client) Points(ctx context.Context) (*types.PointSummary, error) {
	var out types.PointSummary
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/points", auth: authRequired, result: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PointHistory(ctx context.Context) ([]types.PointHistory, error) {
	var out []types.PointHistory
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/points/history", auth: authRequired, result: &out}); err != nil {
		return nil, err
	}
	return out, nil
}
