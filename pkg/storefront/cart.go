package storefront

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

// Cart fetches the cart of the logged-in user, or of the guest session.
func (c *Client) Cart(ctx context.Context) (types.Cart, error) {
	var out types.Cart
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/cart", auth: authGuest, result: &out}); err != nil {
		return nil, err
	}
	if out == nil {
		out = types.Cart{}
	}
	return out, nil
}

// AddToCart adds an option of a product. Guests send their session id in the body.
func (c *Client) AddToCart(ctx context.Context, req types.AddToCartRequest) (*types.CartItem, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var out types.CartItem
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/cart",
		auth:   authGuest,
		body:   req,
		guestBody: func(sessionID string) any {
			guest := req
			guest.SessionID = sessionID
			return guest
		},
		result: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCartQuantity sets the quantity of a cart line. Removal goes through
// RemoveCartItem; quantities below one are rejected here.
func (c *Client) UpdateCartQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeInvalidQuantity, fmt.Sprintf("quantity must be at least 1, got %d", quantity))
	}
	return c.do(ctx, call{
		method:     http.MethodPatch,
		path:       "/api/cart/{cartItemId}",
		auth:       authRequired,
		pathParams: map[string]string{"cartItemId": strconv.FormatInt(cartItemID, 10)},
		query:      map[string]string{"quantity": strconv.Itoa(quantity)},
	})
}

func (c *Client) RemoveCartItem(ctx context.Context, cartItemID int64) error {
	return c.do(ctx, call{
		method:     http.MethodDelete,
		path:       "/api/cart/{cartItemId}",
		auth:       authRequired,
		pathParams: map[string]string{"cartItemId": strconv.FormatInt(cartItemID, 10)},
	})
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/cart", auth: authRequired})
}
