package cart

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeemarket/internal/screen"
	"github.com/angelmondragon/coffeemarket/pkg/auth/session"
	"github.com/angelmondragon/coffeemarket/pkg/config"
	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/kv"
	"github.com/angelmondragon/coffeemarket/pkg/storefront"
	"github.com/angelmondragon/coffeemarket/pkg/storefront/storefronttest"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

type harness struct {
	server *storefronttest.Server
	store  *session.Store
	client *storefront.Client
	user   types.User
}

func newHarness(t *testing.T, loggedIn bool) *harness {
	t.Helper()
	srv := storefronttest.New()
	t.Cleanup(srv.Close)
	base, err := storefront.New(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	store, err := session.Open(context.Background(), kv.NewMemory(), base)
	require.NoError(t, err)
	user := srv.AddUser(types.User{Name: "김커피", Point: 3000}, types.ProviderKakao, "tok")
	if loggedIn {
		_, err := store.Login(context.Background(), types.ProviderKakao, "tok")
		require.NoError(t, err)
	}
	return &harness{server: srv, store: store, client: base.WithCredentials(store), user: user}
}

func (h *harness) service(t *testing.T, scope *screen.Scope) *Service {
	t.Helper()
	svc, err := NewService(h.client, h.store, scope, nil)
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestRefreshLoggedOutMakesNoRequest(t *testing.T) {
	h := newHarness(t, false)
	svc := h.service(t, nil)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.LoggedIn)
	assert.Empty(t, snap.Items)
	assert.Empty(t, h.server.Requests())
	assert.ErrorIs(t, svc.CanCheckout(), ErrCartEmpty)
}

func TestRefreshAndTotals(t *testing.T) {
	h := newHarness(t, true)
	h.server.SeedCart(h.user.ID, 1, 11, 2)
	h.server.SeedCart(h.user.ID, 3, 31, 1)
	svc := h.service(t, nil)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.LoggedIn)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, 3, snap.Totals.TotalCount)
	assert.Equal(t, 48000, snap.Totals.TotalPrice)
	assert.NoError(t, svc.CanCheckout())
}

func TestChangeQuantityRecomputesLine(t *testing.T) {
	h := newHarness(t, true)
	item := h.server.SeedCart(h.user.ID, 2, 22, 1)
	other := h.server.SeedCart(h.user.ID, 3, 31, 1)
	svc := h.service(t, nil)
	ctx := context.Background()
	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	snap, err := svc.Increment(ctx, item.CartItemID)
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, 120000, snap.Items[0].TotalPrice)
	assert.Equal(t, other, snap.Items[1])
	assert.Equal(t, 2, h.server.UserCart(h.user.ID)[0].Quantity)
}

func TestDecrementToZeroRemoves(t *testing.T) {
	h := newHarness(t, true)
	item := h.server.SeedCart(h.user.ID, 1, 11, 1)
	svc := h.service(t, nil)
	ctx := context.Background()
	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	snap, err := svc.Decrement(ctx, item.CartItemID)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	_, patched := h.server.LastRequest(http.MethodPatch, "/api/cart/"+itoa(item.CartItemID))
	assert.False(t, patched)
	_, deleted := h.server.LastRequest(http.MethodDelete, "/api/cart/"+itoa(item.CartItemID))
	assert.True(t, deleted)
}

func TestFailedUpdateLeavesSnapshot(t *testing.T) {
	h := newHarness(t, true)
	item := h.server.SeedCart(h.user.ID, 1, 11, 1)
	svc := h.service(t, nil)
	ctx := context.Background()
	before, err := svc.Refresh(ctx)
	require.NoError(t, err)

	h.server.FailNext(http.MethodPatch, "/api/cart/"+itoa(item.CartItemID), http.StatusInternalServerError)
	after, err := svc.ChangeQuantity(ctx, item.CartItemID, 5)
	require.Error(t, err)
	assert.Equal(t, before, after)
}

func TestExpiredSessionReportsLoggedOut(t *testing.T) {
	h := newHarness(t, true)
	svc := h.service(t, nil)
	h.server.RevokeAccessTokens()

	snap, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsAuthExpired(err))
	assert.False(t, snap.LoggedIn)
	assert.Equal(t, session.LoggedOut, h.store.State())
}

func TestClosedScopeDiscardsResults(t *testing.T) {
	h := newHarness(t, true)
	h.server.SeedCart(h.user.ID, 1, 11, 1)
	scope := screen.New()
	svc := h.service(t, scope)
	scope.Close()

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Len(t, h.server.Requests(), 2)
}

func TestGuestAdd(t *testing.T) {
	h := newHarness(t, false)
	svc := h.service(t, nil)
	item, err := svc.Add(context.Background(), 1, 11, 1)
	require.NoError(t, err)
	assert.Equal(t, 18000, item.TotalPrice)
}

type slowClient struct {
	mu       sync.Mutex
	inflight map[int64]int
	overlap  bool
}

func (c *slowClient) Cart(context.Context) (types.Cart, error) { return types.Cart{}, nil }
func (c *slowClient) AddToCart(context.Context, types.AddToCartRequest) (*types.CartItem, error) {
	return nil, errors.New("not used")
}
func (c *slowClient) RemoveCartItem(context.Context, int64) error { return nil }
func (c *slowClient) ClearCart(context.Context) error             { return nil }

func (c *slowClient) UpdateCartQuantity(_ context.Context, id int64, _ int) error {
	c.mu.Lock()
	c.inflight[id]++
	if c.inflight[id] > 1 {
		c.overlap = true
	}
	c.mu.Unlock()
	time.Sleep(2 * time.Millisecond)
	c.mu.Lock()
	c.inflight[id]--
	c.mu.Unlock()
	return nil
}

type loggedIn struct{}

func (loggedIn) State() session.State { return session.LoggedIn }

func TestChangeQuantitySerializedPerLine(t *testing.T) {
	client := &slowClient{inflight: map[int64]int{}}
	svc, err := NewService(client, loggedIn{}, nil, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			_, _ = svc.ChangeQuantity(context.Background(), 7, q)
		}(i)
	}
	wg.Wait()
	assert.False(t, client.overlap)
	assert.Equal(t, 0, svc.lines.size())
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
