package account

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeemarket/pkg/auth/session"
	"github.com/angelmondragon/coffeemarket/pkg/config"
	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/kv"
	"github.com/angelmondragon/coffeemarket/pkg/storefront"
	"github.com/angelmondragon/coffeemarket/pkg/storefront/storefronttest"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

func setup(t *testing.T) (*storefronttest.Server, *session.Store, Service, types.User) {
	t.Helper()
	srv := storefronttest.New()
	t.Cleanup(srv.Close)
	base, err := storefront.New(config.BackendConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	store, err := session.Open(context.Background(), kv.NewMemory(), base)
	require.NoError(t, err)
	user := srv.AddUser(types.User{Name: "김커피", Point: 700}, types.ProviderGoogle, "g-token")
	_, err = store.Login(context.Background(), types.ProviderGoogle, "g-token")
	require.NoError(t, err)

	svc, err := NewService(base.WithCredentials(store), store, nil)
	require.NoError(t, err)
	return srv, store, svc, user
}

func home(isDefault bool) types.AddressInput {
	return types.AddressInput{
		Name: "집", Recipient: "김커피", Phone: "010-2222-3333",
		Zipcode: "48058", Address: "부산시 해운대구 센텀로 1", IsDefault: isDefault,
	}
}

func TestNewServiceRequiresClient(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	require.Error(t, err)
}

func TestAddressBookRefetchesAfterMutations(t *testing.T) {
	srv, _, svc, _ := setup(t)
	ctx := context.Background()

	list, err := svc.SaveAddress(ctx, 0, home(true))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault)

	office := home(false)
	office.Name = "회사"
	list, err = svc.SaveAddress(ctx, 0, office)
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = svc.SetDefaultAddress(ctx, list[1].AddressID)
	require.NoError(t, err)
	assert.False(t, list[0].IsDefault)
	assert.True(t, list[1].IsDefault)

	edit := types.InputFrom(list[0])
	edit.AddressDetail = "3층"
	list, err = svc.SaveAddress(ctx, list[0].AddressID, edit)
	require.NoError(t, err)
	assert.Equal(t, "3층", list[0].AddressDetail)
	assert.False(t, list[0].IsDefault)

	list, err = svc.DeleteAddress(ctx, list[1].AddressID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, ok := srv.LastRequest(http.MethodGet, "/api/addresses")
	assert.True(t, ok)
}

func TestProfileRefreshesCachedPoint(t *testing.T) {
	srv, store, svc, user := setup(t)
	ctx := context.Background()
	require.NoError(t, store.DeductPoint(ctx, 700))

	got, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 700, got.Point)
	cached, _ := store.User()
	assert.Equal(t, 700, cached.Point)

	backend, _ := srv.User(user.ID)
	assert.Equal(t, backend.Point, cached.Point)
}

func TestOrdersAndPoints(t *testing.T) {
	_, _, svc, _ := setup(t)
	ctx := context.Background()
	_, err := svc.Order(ctx, 0)
	assert.True(t, pkgerrors.IsValidation(err))

	orders, err := svc.Orders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)

	points, err := svc.Points(ctx)
	require.NoError(t, err)
	assert.Equal(t, 700, points.CurrentPoint)
	history, err := svc.PointHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReviewAndInquiryWrites(t *testing.T) {
	_, _, svc, _ := setup(t)
	ctx := context.Background()

	rv, err := svc.WriteReview(ctx, 0, types.ReviewInput{ProductID: 2, Rating: 5, Content: "고소해요"})
	require.NoError(t, err)
	edited, err := svc.WriteReview(ctx, rv.ReviewID, types.ReviewInput{ProductID: 2, Rating: 4, Content: "고소해요"})
	require.NoError(t, err)
	assert.Equal(t, 4, edited.Rating)
	left, err := svc.DeleteReview(ctx, rv.ReviewID)
	require.NoError(t, err)
	assert.Empty(t, left)

	inq, err := svc.WriteInquiry(ctx, 0, types.InquiryInput{ProductID: 1, Content: "재입고 언제 되나요?"})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultInquiryTitle, inq.Title)
	updated, err := svc.WriteInquiry(ctx, inq.InquiryID, types.InquiryInput{ProductID: 1, Title: "재입고", Content: "재입고 문의"})
	require.NoError(t, err)
	assert.Equal(t, "재입고", updated.Title)
	mine, err := svc.MyInquiries(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	remaining, err := svc.DeleteInquiry(ctx, inq.InquiryID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
