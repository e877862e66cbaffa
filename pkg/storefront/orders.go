package storefront

import (
	"context"
	"net/http"
	"strconv"

	"github.com/angelmondragon/coffeemarket/pkg/types"
)

// CreateOrder places an order for the current cart.
func (c *Client) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out types.Order
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/orders", auth: authRequired, body: req, result: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Orders(ctx context.Context) ([]types.Order, error) {
	var out []types.Order
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/orders", auth: authRequired, result: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Order(ctx context.Context, orderID int64) (*types.Order, error) {
	var out types.Order
	err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       "/api/orders/{orderId}",
		auth:       authRequired,
		pathParams: map[string]string{"orderId": strconv.FormatInt(orderID, 10)},
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
