package storefront

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

// Login exchanges a social provider token for backend credentials.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	if !req.Provider.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported login provider %q", req.Provider))
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider access token is required")
	}
	var out types.LoginResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/login",
		auth:   authNone,
		body:   req,
		result: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh trades a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*types.LoginResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refresh token is required")
	}
	var out types.LoginResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/refresh",
		auth:   authNone,
		body:   refreshRequest{RefreshToken: refreshToken},
		result: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the current user's profile, including the live point balance.
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var out types.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/auth/me", auth: authRequired, result: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
