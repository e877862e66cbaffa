package storefront

import (
	"context"
	"net/http"
	"strconv"

	"github.com/angelmondragon/coffeemarket/pkg/types"
)

func (c *Client) ProductReviews(ctx context.Context, productID int64) ([]types.Review, error) {
	var out []types.Review
	err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       "/api/reviews/product/{productId}",
		pathParams: productParams(productID),
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReviewStats(ctx context.Context, productID int64) (*types.ReviewStats, error) {
	var out types.ReviewStats
	err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       "/api/reviews/product/{productId}/stats",
		pathParams: productParams(productID),
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyReviews(ctx context.Context) ([]types.Review, error) {
	var out []types.Review
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/reviews/my", auth: authRequired, result: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, in types.ReviewInput) (*types.Review, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	var out types.Review
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/reviews", auth: authRequired, body: in, result: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReview(ctx context.Context, reviewID int64, in types.ReviewInput) (*types.Review, error) {
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	var out types.Review
	err := c.do(ctx, call{
		method:     http.MethodPut,
		path:       "/api/reviews/{reviewId}",
		auth:       authRequired,
		pathParams: map[string]string{"reviewId": strconv.FormatInt(reviewID, 10)},
		body:       in,
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, reviewID int64) error {
	return c.do(ctx, call{
		method:     http.MethodDelete,
		path:       "/api/reviews/{reviewId}",
		auth:       authRequired,
		pathParams: map[string]string{"reviewId": strconv.FormatInt(reviewID, 10)},
	})
}

func productParams(productID int64) map[string]string {
	return map[string]string{"productId": strconv.FormatInt(productID, 10)}
}
