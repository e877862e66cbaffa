package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeemarket/pkg/auth/session"
	"github.com/angelmondragon/coffeemarket/pkg/config"
	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/kv"
	"github.com/angelmondragon/coffeemarket/pkg/metrics"
	"github.com/angelmondragon/coffeemarket/pkg/storefront/storefronttest"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

type fixture struct {
	server  *storefronttest.Server
	client  *Client
	store   *session.Store
	metrics *metrics.ClientMetrics
	reg     *prometheus.Registry
	user    types.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := storefronttest.New()
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg, "test")
	base, err := New(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, WithMetrics(m))
	require.NoError(t, err)

	store, err := session.Open(context.Background(), kv.NewMemory(), base)
	require.NoError(t, err)

	user := srv.AddUser(types.User{Email: "kim@example.com", Name: "김커피", Point: 5000}, types.ProviderKakao, "kakao-token")
	return &fixture{
		server:  srv,
		client:  base.WithCredentials(store),
		store:   store,
		metrics: m,
		reg:     reg,
		user:    user,
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	_, err := f.store.Login(context.Background(), types.ProviderKakao, "kakao-token")
	require.NoError(t, err)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(config.BackendConfig{BaseURL: "  "})
	require.Error(t, err)
}

func TestLoginPersistsSession(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	assert.Equal(t, session.LoggedIn, f.store.State())
	user, ok := f.store.User()
	require.True(t, ok)
	assert.Equal(t, f.user.ID, user.ID)
	assert.Equal(t, 5000, user.Point)

	req, ok := f.server.LastRequest(http.MethodPost, "/api/auth/login")
	require.True(t, ok)
	assert.Empty(t, req.Authorization)
	assert.NotEmpty(t, req.RequestID)
}

func TestLoginRejectedIsAuthFailed(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Login(context.Background(), types.ProviderNaver, "wrong")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeAuthFailed, pkgerrors.CodeOf(err))
	assert.Equal(t, session.LoggedOut, f.store.State())
}

func TestLoginValidationMakesNoRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.Login(context.Background(), types.LoginRequest{Provider: "APPLE", AccessToken: "x"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, f.server.Requests())
}

func TestBearerHeaderSentWhenLoggedIn(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	me, err := f.client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.user.Email, me.Email)

	req, ok := f.server.LastRequest(http.MethodGet, "/api/auth/me")
	require.True(t, ok)
	token, _ := f.store.AccessToken()
	assert.Equal(t, "Bearer "+token, req.Authorization)
}

func TestAuthRequiredWithoutTokenSkipsNetwork(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.Orders(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAuthExpired(err))
	assert.Empty(t, f.server.Requests())
}

func TestGuestCartUsesAnonymousSessionID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.client.AddToCart(ctx, types.AddToCartRequest{ProductID: 1, OptionID: 11, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 36000, item.TotalPrice)

	sessionID, err := f.store.AnonymousSessionID(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sessionID, "guest-"))

	post, ok := f.server.LastRequest(http.MethodPost, "/api/cart")
	require.True(t, ok)
	assert.Empty(t, post.Authorization)
	var body map[string]any
	require.NoError(t, json.Unmarshal(post.Body, &body))
	assert.Equal(t, sessionID, body["sessionId"])

	cart, err := f.client.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	get, ok := f.server.LastRequest(http.MethodGet, "/api/cart")
	require.True(t, ok)
	assert.Equal(t, sessionID, get.Query.Get("sessionId"))
	assert.Len(t, f.server.GuestCart(sessionID), 1)
}

func TestLoggedInCartOmitsSessionID(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	_, err := f.client.AddToCart(ctx, types.AddToCartRequest{ProductID: 2, OptionID: 21, Quantity: 1})
	require.NoError(t, err)
	_, err = f.client.AddToCart(ctx, types.AddToCartRequest{ProductID: 2, OptionID: 21, Quantity: 1})
	require.NoError(t, err)

	post, _ := f.server.LastRequest(http.MethodPost, "/api/cart")
	assert.NotContains(t, string(post.Body), "sessionId")

	cart := f.server.UserCart(f.user.ID)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, 30000, cart[0].TotalPrice)
}

func TestEmptyCartDecodesToEmptySlice(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	cart, err := f.client.Cart(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, cart)
	assert.Empty(t, cart)
}

func TestUpdateQuantityBelowOneRejectedLocally(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	before := len(f.server.Requests())
	err := f.client.UpdateCartQuantity(context.Background(), 1, 0)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInvalidQuantity, pkgerrors.CodeOf(err))
	assert.Len(t, f.server.Requests(), before)
}

func TestRejectedTokenExpiresSessionKeepsGuestID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guestID, err := f.store.AnonymousSessionID(ctx)
	require.NoError(t, err)
	f.login(t)

	var transitions []session.State
	f.store.OnChange(func(s session.State) { transitions = append(transitions, s) })

	f.server.RevokeAccessTokens()
	_, err = f.client.Orders(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAuthExpired(err))

	assert.Equal(t, session.LoggedOut, f.store.State())
	assert.Equal(t, []session.State{session.LoggedOut}, transitions)
	_, hasUser := f.store.User()
	assert.False(t, hasUser)

	sameGuest, err := f.store.AnonymousSessionID(ctx)
	require.NoError(t, err)
	assert.Equal(t, guestID, sameGuest)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.AuthExpired()))
}

// swappingCredentials hands out the first token once, then the second, as if
// a new login landed while the first request was in flight.
type swappingCredentials struct {
	tokens  []string
	calls   int
	expired int
}

func (s *swappingCredentials) AccessToken() (string, bool) {
	token := s.tokens[min(s.calls, len(s.tokens)-1)]
	s.calls++
	return token, true
}

func (s *swappingCredentials) AnonymousSessionID(context.Context) (string, error) {
	return "guest-1-abc", nil
}

func (s *swappingCredentials) Expire(context.Context) error {
	s.expired++
	return nil
}

func TestRejectionOfReplacedTokenKeepsSession(t *testing.T) {
	f := newFixture(t)
	base, err := New(config.BackendConfig{BaseURL: f.server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	creds := &swappingCredentials{tokens: []string{"stale-token", "newer-token"}}
	_, err = base.WithCredentials(creds).Me(context.Background())
	assert.True(t, pkgerrors.IsAuthExpired(err))
	assert.Equal(t, 0, creds.expired)

	same := &swappingCredentials{tokens: []string{"stale-token"}}
	_, err = base.WithCredentials(same).Me(context.Background())
	assert.True(t, pkgerrors.IsAuthExpired(err))
	assert.Equal(t, 1, same.expired)
}

func TestOptionalAuthDoesNotExpireWithoutBearer(t *testing.T) {
	f := newFixture(t)
	f.server.FailNext(http.MethodGet, "/api/inquiries/product/1", http.StatusUnauthorized)
	_, err := f.client.ProductInquiries(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.AuthExpired()))
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		code   pkgerrors.Code
	}{
		{status: http.StatusNotFound, code: pkgerrors.CodeNotFound},
		{status: http.StatusBadRequest, code: pkgerrors.CodeServer},
		{status: http.StatusInternalServerError, code: pkgerrors.CodeServer},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := newFixture(t)
			f.server.FailNext(http.MethodGet, "/api/products/latest", tt.status)
			_, err := f.client.LatestProducts(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.code, pkgerrors.CodeOf(err))
		})
	}
}

func TestBackendMessageSurfacesToUser(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	addr, err := f.client.CreateAddress(context.Background(), types.AddressInput{
		Name: "집", Recipient: "김커피", Phone: "010-0000-0000", Zipcode: "04524", Address: "서울시 중구",
	})
	require.NoError(t, err)

	_, err = f.client.CreateOrder(context.Background(), types.CreateOrderRequest{AddressID: addr.AddressID})
	require.Error(t, err)
	assert.Equal(t, "장바구니가 비어있습니다.", pkgerrors.UserMessage(err))
}

func TestNetworkErrorIsTyped(t *testing.T) {
	srv := storefronttest.New()
	url := srv.URL
	srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg, "test")
	c, err := New(config.BackendConfig{BaseURL: url, Timeout: time.Second}, WithMetrics(m))
	require.NoError(t, err)

	_, err = c.LatestProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNetwork, pkgerrors.CodeOf(err))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests().WithLabelValues("GET /api/products/latest", "error")))
}

func TestRequestsAreCountedPerEndpoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.client.ProductDetail(ctx, 1)
	require.NoError(t, err)
	_, err = f.client.ProductDetail(ctx, 2)
	require.NoError(t, err)

	counter := f.metrics.Requests().WithLabelValues("GET /api/products/{productId}", "200")
	assert.Equal(t, float64(2), testutil.ToFloat64(counter))

	reqs := f.server.Requests()
	require.Len(t, reqs, 2)
	assert.NotEqual(t, reqs[0].RequestID, reqs[1].RequestID)
}

func TestRefreshRotatesTokens(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	before, _ := f.store.AccessToken()

	snap, err := f.store.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, before, snap.AccessToken)
	assert.Equal(t, session.LoggedIn, f.store.State())

	_, err = f.store.Refresh(context.Background())
	require.NoError(t, err)
}
