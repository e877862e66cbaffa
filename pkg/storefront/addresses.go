package storefront

import (
	"context"
	"net/http"
	"strconv"

	"github.com/angelmondragon/coffeemarket/pkg/types"
)

func (c *Client) Addresses(ctx context.Context) ([]types.Address, error) {
	var out []types.Address
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/addresses", auth: authRequired, result: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAddress(ctx context.Context, in types.AddressInput) (*types.Address, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	var out types.Address
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/addresses", auth: authRequired, body: in, result: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAddress(ctx context.Context, addressID int64, in types.AddressInput) (*types.Address, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	var out types.Address
	err := c.do(ctx, call{
		method:     http.MethodPut,
		path:       "/api/addresses/{addressId}",
		auth:       authRequired,
		pathParams: addressParams(addressID),
		body:       in,
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAddress(ctx context.Context, addressID int64) error {
	return c.do(ctx, call{
		method:     http.MethodDelete,
		path:       "/api/addresses/{addressId}",
		auth:       authRequired,
		pathParams: addressParams(addressID),
	})
}

// SetDefaultAddress flags one address as default; the backend unflags the rest.
func (c *Client) SetDefaultAddress(ctx context.Context, addressID int64) error {
	return c.do(ctx, call{
		method:     http.MethodPatch,
		path:       "/api/addresses/{addressId}/default",
		auth:       authRequired,
		pathParams: addressParams(addressID),
	})
}

func addressParams(addressID int64) map[string]string {
	return map[string]string{"addressId": strconv.FormatInt(addressID, 10)}
}
