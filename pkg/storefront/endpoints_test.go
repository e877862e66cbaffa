package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

func homeAddress() types.AddressInput {
	return types.AddressInput{
		Name:      "집",
		Recipient: "김커피",
		Phone:     "010-1234-5678",
		Zipcode:   "04524",
		Address:   "서울시 중구 세종대로 110",
	}
}

func TestProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	latest, err := f.client.LatestProducts(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, int64(3), latest[0].ProductID)

	african, err := f.client.ProductsByContinent(ctx, "아프리카")
	require.NoError(t, err)
	require.Len(t, african, 1)
	req, _ := f.server.LastRequest(http.MethodGet, "/api/products/filter/continent")
	assert.Equal(t, "아프리카", req.Query.Get("value"))

	_, err = f.client.ProductsByFilter(ctx, "roast", "dark")
	assert.True(t, pkgerrors.IsValidation(err))

	detail, err := f.client.ProductDetail(ctx, 1)
	require.NoError(t, err)
	opt, ok := detail.Option(12)
	require.True(t, ok)
	assert.Equal(t, 20000, opt.ExtraPrice)

	_, err = f.client.ProductDetail(ctx, 999)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestAddressValidationMakesNoRequest(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	before := len(f.server.Requests())

	in := homeAddress()
	in.Recipient = "   "
	_, err := f.client.CreateAddress(context.Background(), in)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, "받는 분을(를) 입력해주세요.", pkgerrors.UserMessage(err))
	assert.Len(t, f.server.Requests(), before)
}

func TestAddressLifecycle(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	first, err := f.client.CreateAddress(ctx, homeAddress())
	require.NoError(t, err)
	assert.False(t, first.IsDefault)

	office := homeAddress()
	office.Name = "회사"
	office.IsDefault = true
	second, err := f.client.CreateAddress(ctx, office)
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	require.NoError(t, f.client.SetDefaultAddress(ctx, first.AddressID))
	list, err := f.client.Addresses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	edit := types.InputFrom(list[0])
	edit.AddressDetail = "101호"
	updated, err := f.client.UpdateAddress(ctx, first.AddressID, edit)
	require.NoError(t, err)
	assert.Equal(t, "101호", updated.AddressDetail)
	assert.True(t, updated.IsDefault)

	require.NoError(t, f.client.DeleteAddress(ctx, second.AddressID))
	list, err = f.client.Addresses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateOrderAppliesPoints(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	addr := f.server.SeedAddress(f.user.ID, homeAddress())
	f.server.SeedCart(f.user.ID, 2, 21, 1)
	f.server.SeedCart(f.user.ID, 3, 31, 1)

	order, err := f.client.CreateOrder(ctx, types.CreateOrderRequest{AddressID: addr.AddressID, UsePoint: 5000, Memo: "문 앞"})
	require.NoError(t, err)
	assert.Equal(t, types.OrderStatusPending, order.Status)
	assert.Equal(t, 27000, order.TotalPrice)
	assert.Equal(t, 5000, order.UsedPoint)
	assert.Equal(t, 22000, order.FinalPrice)
	assert.Equal(t, 220, order.EarnedPoint)
	assert.Len(t, order.Items, 2)
	assert.Empty(t, f.server.UserCart(f.user.ID))

	summary, err := f.client.Points(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CurrentPoint)
	require.Len(t, summary.History, 1)
	assert.Equal(t, types.PointUse, summary.History[0].Type)
	assert.Equal(t, -5000, summary.History[0].Amount)

	orders, err := f.client.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	got, err := f.client.Order(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "문 앞", got.Memo)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	before := len(f.server.Requests())
	_, err := f.client.CreateOrder(context.Background(), types.CreateOrderRequest{})
	require.Error(t, err)
	assert.Equal(t, "배송지를 선택해주세요.", pkgerrors.UserMessage(err))
	assert.Len(t, f.server.Requests(), before)
}

func TestCreateOrderInsufficientPoints(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	addr := f.server.SeedAddress(f.user.ID, homeAddress())
	f.server.SeedCart(f.user.ID, 1, 11, 1)

	_, err := f.client.CreateOrder(context.Background(), types.CreateOrderRequest{AddressID: addr.AddressID, UsePoint: 9000})
	require.Error(t, err)
	assert.Equal(t, "포인트가 부족합니다.", pkgerrors.UserMessage(err))
	assert.Len(t, f.server.UserCart(f.user.ID), 1)
}

func TestCartLineMutations(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()
	item := f.server.SeedCart(f.user.ID, 1, 12, 1)

	require.NoError(t, f.client.UpdateCartQuantity(ctx, item.CartItemID, 3))
	req, _ := f.server.LastRequest(http.MethodPatch, "/api/cart/"+itoa(item.CartItemID))
	assert.Equal(t, "3", req.Query.Get("quantity"))
	cart := f.server.UserCart(f.user.ID)
	require.Len(t, cart, 1)
	assert.Equal(t, 114000, cart[0].TotalPrice)

	require.NoError(t, f.client.RemoveCartItem(ctx, item.CartItemID))
	assert.Empty(t, f.server.UserCart(f.user.ID))

	f.server.SeedCart(f.user.ID, 3, 31, 2)
	require.NoError(t, f.client.ClearCart(ctx))
	assert.Empty(t, f.server.UserCart(f.user.ID))
}

func TestReviews(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	_, err := f.client.CreateReview(ctx, types.ReviewInput{ProductID: 1, Rating: 6})
	assert.Equal(t, "별점은 1점에서 5점 사이로 선택해주세요.", pkgerrors.UserMessage(err))

	rv, err := f.client.CreateReview(ctx, types.ReviewInput{ProductID: 1, Rating: 4, Content: "산미가 좋아요"})
	require.NoError(t, err)
	_, err = f.client.CreateReview(ctx, types.ReviewInput{ProductID: 1, Rating: 5})
	require.NoError(t, err)

	stats, err := f.client.ReviewStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ReviewCount)
	assert.InDelta(t, 4.5, stats.AverageRating, 0.001)

	updated, err := f.client.UpdateReview(ctx, rv.ReviewID, types.ReviewInput{ProductID: 1, Rating: 3, Content: "보통"})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)

	mine, err := f.client.MyReviews(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, f.client.DeleteReview(ctx, rv.ReviewID))
	list, err := f.client.ProductReviews(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInquiries(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	inq, err := f.client.CreateInquiry(ctx, types.InquiryInput{ProductID: 2, Title: "  ", Content: "원두 분쇄 가능한가요?", IsSecret: true})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultInquiryTitle, inq.Title)

	post, _ := f.server.LastRequest(http.MethodPost, "/api/inquiries")
	var sent types.InquiryInput
	require.NoError(t, json.Unmarshal(post.Body, &sent))
	assert.Equal(t, types.DefaultInquiryTitle, sent.Title)

	count, err := f.client.InquiryCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	own, err := f.client.Inquiry(ctx, inq.InquiryID)
	require.NoError(t, err)
	assert.Equal(t, "원두 분쇄 가능한가요?", own.Content)

	f.server.AnswerInquiry(inq.InquiryID, "네 가능합니다.")
	_, err = f.client.UpdateInquiry(ctx, inq.InquiryID, types.InquiryInput{ProductID: 2, Content: "수정"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeServer, pkgerrors.CodeOf(err))

	require.NoError(t, f.store.Logout(ctx))
	public, err := f.client.ProductInquiries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Empty(t, public[0].Content)

	_, err = f.client.MyInquiries(ctx)
	assert.True(t, pkgerrors.IsAuthExpired(err))
}

func TestInquiryContentRequired(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	_, err := f.client.CreateInquiry(context.Background(), types.InquiryInput{ProductID: 2, Content: " \n"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
