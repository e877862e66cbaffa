package storefront

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

func (c *Client) LatestProducts(ctx context.Context) ([]types.Product, error) {
	return c.productList(ctx, "/api/products/latest", nil)
}

func (c *Client) BestProducts(ctx context.Context) ([]types.Product, error) {
	return c.productList(ctx, "/api/products/best", nil)
}

func (c *Client) ProductsByContinent(ctx context.Context, value string) ([]types.Product, error) {
	return c.ProductsByFilter(ctx, types.FilterContinent, value)
}

func (c *Client) ProductsByNationality(ctx context.Context, value string) ([]types.Product, error) {
	return c.ProductsByFilter(ctx, types.FilterNationality, value)
}

func (c *Client) ProductsByType(ctx context.Context, value string) ([]types.Product, error) {
	return c.ProductsByFilter(ctx, types.FilterType, value)
}

// ProductsByFilter lists products matching one browse filter.
func (c *Client) ProductsByFilter(ctx context.Context, filter types.ProductFilter, value string) ([]types.Product, error) {
	if !filter.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product filter %q", filter))
	}
	return c.productList(ctx, "/api/products/filter/"+string(filter), map[string]string{"value": value})
}

func (c *Client) ProductDetail(ctx context.Context, productID int64) (*types.ProductDetail, error) {
	var out types.ProductDetail
	err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       "/api/products/{productId}",
		pathParams: map[string]string{"productId": strconv.FormatInt(productID, 10)},
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) productList(ctx context.Context, path string, query map[string]string) ([]types.Product, error) {
	var out []types.Product
	if err := c.do(ctx, call{method: http.MethodGet, path: path, query: query, result: &out}); err != nil {
		return nil, err
	}
	return out, nil
}
