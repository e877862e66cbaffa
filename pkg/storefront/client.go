// Package storefront is the REST client for the coffee-market backend.
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/coffeemarket/pkg/config"
	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/logger"
	"github.com/angelmondragon/coffeemarket/pkg/metrics"
)

const requestIDHeader = "X-Request-ID"

// Credentials supplies the identity sent with each request. The session
// store implements it.
type Credentials interface {
	AccessToken() (string, bool)
	AnonymousSessionID(ctx context.Context) (string, error)
	Expire(ctx context.Context) error
}

type authMode int

const (
	// authNone sends no credentials.
	authNone authMode = iota
	// authRequired needs a bearer token; without one the call is not made.
	authRequired
	// authOptional sends the bearer token when there is one.
	authOptional
	// authGuest sends the bearer token, or the anonymous session id otherwise.
	authGuest
)

// Client talks to the backend. It never retries; every failure is returned
// to the caller.
type Client struct {
	http    *resty.Client
	creds   Credentials
	metrics *metrics.ClientMetrics
	logg    *logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http.SetTransport(hc.Transport)
		}
	}
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// New builds a client for the configured backend.
func New(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend base url is required")
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetDebug(cfg.Debug).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		httpClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	c := &Client{
		http: httpClient,
		logg: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithCredentials returns a copy of the client that authenticates with creds.
// The copy shares the underlying connection pool.
func (c *Client) WithCredentials(creds Credentials) *Client {
	clone := *c
	clone.creds = creds
	return &clone
}

type call struct {
	method     string
	path       string
	auth       authMode
	pathParams map[string]string
	query      map[string]string
	body       any
	// guestBody is filled with the anonymous session id for authGuest calls
	// made without a bearer token.
	guestBody func(sessionID string) any
	result    any
}

func (c *Client) do(ctx context.Context, req call) error {
	endpoint := req.method + " " + req.path
	requestID := uuid.NewString()
	ctx = c.logg.WithFields(ctx, map[string]any{"request_id": requestID, "endpoint": endpoint})

	r := c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID)
	if len(req.pathParams) > 0 {
		r.SetPathParams(req.pathParams)
	}
	if len(req.query) > 0 {
		r.SetQueryParams(req.query)
	}

	sentToken, err := c.authorize(ctx, r, &req)
	if err != nil {
		return err
	}
	if req.body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}

	started := time.Now()
	resp, err := r.Execute(req.method, req.path)
	elapsed := time.Since(started)

	if err != nil {
		c.metrics.ObserveRequest(endpoint, 0, elapsed)
		c.logg.Warn(ctx, fmt.Sprintf("storefront request failed: %v", err))
		return pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "backend unreachable")
	}

	status := resp.StatusCode()
	c.metrics.ObserveRequest(endpoint, status, elapsed)
	c.logg.Debug(c.logg.WithFields(ctx, map[string]any{
		"status":      status,
		"duration_ms": elapsed.Milliseconds(),
	}), "storefront request")

	if resp.IsError() || status < 200 || status >= 300 {
		typed := pkgerrors.FromStatus(status, resp.String())
		if sentToken != "" && typed.Code() == pkgerrors.CodeAuthExpired {
			c.expire(ctx, sentToken)
		}
		return typed
	}

	if req.result == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), req.result); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeServer, err, "decoding backend response")
	}
	return nil
}

// authorize applies the call's auth mode to r and returns the bearer token it
// attached, if any.
func (c *Client) authorize(ctx context.Context, r *resty.Request, req *call) (string, error) {
	if req.auth == authNone {
		return "", nil
	}

	var token string
	var ok bool
	if c.creds != nil {
		token, ok = c.creds.AccessToken()
	}
	if ok {
		r.SetAuthToken(token)
		return token, nil
	}

	switch req.auth {
	case authRequired:
		return "", pkgerrors.New(pkgerrors.CodeAuthExpired, "login required")
	case authGuest:
		if c.creds == nil {
			return "", pkgerrors.New(pkgerrors.CodeInternal, "no credentials for guest request")
		}
		sessionID, err := c.creds.AnonymousSessionID(ctx)
		if err != nil {
			return "", err
		}
		if req.guestBody != nil {
			req.body = req.guestBody(sessionID)
		} else {
			r.SetQueryParam("sessionId", sessionID)
		}
	}
	return "", nil
}

// expire clears the session that sent the rejected token. A session that was
// replaced while the request was in flight is left alone.
func (c *Client) expire(ctx context.Context, sentToken string) {
	c.metrics.IncAuthExpired()
	if c.creds == nil {
		return
	}
	if current, ok := c.creds.AccessToken(); !ok || current != sentToken {
		c.logg.Debug(ctx, "ignoring rejection of a replaced access token")
		return
	}
	if err := c.creds.Expire(ctx); err != nil {
		c.logg.Error(ctx, "failed to clear expired session", err)
	}
}
