package checkout

import (
	"context"
	"net/http"
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
	svc    *Service
	user   types.User
}

func newHarness(t *testing.T, point int, scope *screen.Scope) *harness {
	t.Helper()
	srv := storefronttest.New()
	t.Cleanup(srv.Close)
	base, err := storefront.New(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	store, err := session.Open(context.Background(), kv.NewMemory(), base)
	require.NoError(t, err)
	user := srv.AddUser(types.User{Name: "김커피", Email: "kim@example.com", Point: point}, types.ProviderKakao, "tok")
	_, err = store.Login(context.Background(), types.ProviderKakao, "tok")
	require.NoError(t, err)

	svc, err := NewService(base.WithCredentials(store), store, scope, nil)
	require.NoError(t, err)
	return &harness{server: srv, store: store, svc: svc, user: user}
}

func address(name string, isDefault bool) types.AddressInput {
	return types.AddressInput{
		Name: name, Recipient: "김커피", Phone: "010-1111-2222",
		Zipcode: "06236", Address: "서울시 강남구 테헤란로 1", IsDefault: isDefault,
	}
}

func TestLoadRequiresLogin(t *testing.T) {
	h := newHarness(t, 0, nil)
	require.NoError(t, h.store.Logout(context.Background()))
	before := len(h.server.Requests())

	_, err := h.svc.Load(context.Background())
	assert.True(t, pkgerrors.IsAuthExpired(err))
	assert.Len(t, h.server.Requests(), before)
}

func TestLoadEmptyCart(t *testing.T) {
	h := newHarness(t, 0, nil)
	_, err := h.svc.Load(context.Background())
	assert.ErrorIs(t, err, ErrCartEmpty)
	assert.Equal(t, "장바구니가 비어있습니다.", pkgerrors.UserMessage(err))
}

func TestLoadPreselectsDefaultAddress(t *testing.T) {
	h := newHarness(t, 1000, nil)
	h.server.SeedCart(h.user.ID, 1, 11, 1)
	h.server.SeedAddress(h.user.ID, address("집", false))
	office := h.server.SeedAddress(h.user.ID, address("회사", true))

	view, err := h.svc.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, view.SelectedAddress)
	assert.Equal(t, office.AddressID, view.SelectedAddress.AddressID)
	assert.Equal(t, 1000, view.UserPoint)
	assert.Len(t, view.Addresses, 2)

	_, cart := h.server.LastRequest(http.MethodGet, "/api/cart")
	_, addrs := h.server.LastRequest(http.MethodGet, "/api/addresses")
	assert.True(t, cart)
	assert.True(t, addrs)
}

func TestPointRulesAndSubmit(t *testing.T) {
	h := newHarness(t, 5000, nil)
	ctx := context.Background()
	h.server.SeedCart(h.user.ID, 2, 21, 1)
	h.server.SeedCart(h.user.ID, 3, 31, 1)
	addr := h.server.SeedAddress(h.user.ID, address("집", false))

	view, err := h.svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 27000, view.Summary.TotalPrice)

	summary, err := h.svc.SetPointInput("abc")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.UsePoint)

	summary, err = h.svc.SetPointInput("99999")
	require.NoError(t, err)
	assert.Equal(t, 5000, summary.UsePoint)
	assert.Equal(t, 22000, summary.FinalPrice)
	assert.Equal(t, 220, summary.EarnedPoint)

	require.NoError(t, h.svc.SetMemo("  부재시 경비실  "))
	order, err := h.svc.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, addr.Recipient, order.Recipient)
	assert.Equal(t, 5000, order.UsedPoint)
	assert.Equal(t, 22000, order.FinalPrice)
	assert.Equal(t, "  부재시 경비실  ", order.Memo, "memo is sent as typed")

	user, ok := h.store.User()
	require.True(t, ok)
	assert.Equal(t, 0, user.Point)
	assert.Empty(t, h.server.UserCart(h.user.ID))
}

func TestUseAllPointsCappedByTotal(t *testing.T) {
	h := newHarness(t, 50000, nil)
	h.server.SeedCart(h.user.ID, 3, 31, 1)
	h.server.SeedAddress(h.user.ID, address("집", true))

	_, err := h.svc.Load(context.Background())
	require.NoError(t, err)
	summary, err := h.svc.UseAllPoints()
	require.NoError(t, err)
	assert.Equal(t, 12000, summary.UsePoint)
	assert.Equal(t, 0, summary.FinalPrice)
	assert.Equal(t, 0, summary.EarnedPoint)
}

func TestSubmitWithoutAddressMakesNoRequest(t *testing.T) {
	h := newHarness(t, 0, nil)
	h.server.SeedCart(h.user.ID, 1, 11, 1)
	_, err := h.svc.Load(context.Background())
	require.NoError(t, err)
	before := len(h.server.Requests())

	_, err = h.svc.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAddressRequired)
	assert.Len(t, h.server.Requests(), before)
}

func TestSelectAddress(t *testing.T) {
	h := newHarness(t, 0, nil)
	h.server.SeedCart(h.user.ID, 1, 11, 1)
	h.server.SeedAddress(h.user.ID, address("집", true))
	second := h.server.SeedAddress(h.user.ID, address("회사", false))

	_, err := h.svc.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.svc.SelectAddress(second.AddressID))
	view, err := h.svc.View()
	require.NoError(t, err)
	assert.Equal(t, second.AddressID, view.SelectedAddress.AddressID)

	err = h.svc.SelectAddress(424242)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestFailedSubmitKeepsCachedPoint(t *testing.T) {
	h := newHarness(t, 2000, nil)
	h.server.SeedCart(h.user.ID, 1, 11, 1)
	h.server.SeedAddress(h.user.ID, address("집", true))
	_, err := h.svc.Load(context.Background())
	require.NoError(t, err)
	_, err = h.svc.UseAllPoints()
	require.NoError(t, err)

	h.server.FailNext(http.MethodPost, "/api/orders", http.StatusInternalServerError)
	_, err = h.svc.Submit(context.Background())
	require.Error(t, err)
	user, _ := h.store.User()
	assert.Equal(t, 2000, user.Point)
}

func TestOperationsBeforeLoad(t *testing.T) {
	h := newHarness(t, 0, nil)
	_, err := h.svc.Summary()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = h.svc.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestClosedScopeDropsLoad(t *testing.T) {
	scope := screen.New()
	h := newHarness(t, 0, scope)
	h.server.SeedCart(h.user.ID, 1, 11, 1)
	scope.Close()

	_, err := h.svc.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)
}
