package storefronttest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/coffeemarket/pkg/pricing"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

var errBadRequest = errors.New("bad request")

func (s *Server) seedCatalog() {
	seed := []types.ProductDetail{
		{
			Product: types.Product{ProductID: 1, ProductName: "에티오피아 예가체프", BasePrice: 18000, Continent: "아프리카", Nationality: "에티오피아", Type: "싱글오리진"},
			Options: []types.ProductOption{{OptionID: 11, OptionValue: "200g", ExtraPrice: 0}, {OptionID: 12, OptionValue: "500g", ExtraPrice: 20000}},
		},
		{
			Product: types.Product{ProductID: 2, ProductName: "콜롬비아 수프리모", BasePrice: 15000, Continent: "남아메리카", Nationality: "콜롬비아", Type: "싱글오리진"},
			Options: []types.ProductOption{{OptionID: 21, OptionValue: "200g", ExtraPrice: 0}, {OptionID: 22, OptionValue: "1kg", ExtraPrice: 45000}},
		},
		{
			Product: types.Product{ProductID: 3, ProductName: "하우스 블렌드", BasePrice: 12000, Continent: "블렌드", Nationality: "블렌드", Type: "블렌드"},
			Options: []types.ProductOption{{OptionID: 31, OptionValue: "200g", ExtraPrice: 0}},
		},
	}
	for _, p := range seed {
		s.products[p.ProductID] = p
		s.catalog = append(s.catalog, p.ProductID)
	}
}

// --- auth

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.social[socialKey(req.Provider, req.AccessToken)]
	if !ok {
		http.Error(w, "소셜 로그인에 실패했습니다.", http.StatusUnauthorized)
		return
	}
	access, refresh := s.issueLocked(userID)
	user := *s.users[userID]
	writeJSON(w, http.StatusOK, types.LoginResponse{AccessToken: access, RefreshToken: refresh, User: &user})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.refresh[req.RefreshToken]
	if !ok {
		http.Error(w, "유효하지 않은 리프레시 토큰입니다.", http.StatusUnauthorized)
		return
	}
	delete(s.refresh, req.RefreshToken)
	access, refresh := s.issueLocked(userID)
	user := *s.users[userID]
	writeJSON(w, http.StatusOK, types.LoginResponse{AccessToken: access, RefreshToken: refresh, User: &user})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, *s.users[userID])
}

// --- products

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Product, 0, len(s.catalog))
	for i := len(s.catalog) - 1; i >= 0; i-- {
		out = append(out, s.products[s.catalog[i]].Product)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBest(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Product, 0, len(s.catalog))
	for _, id := range s.catalog {
		out = append(out, s.products[id].Product)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	filter := types.ProductFilter(chi.URLParam(r, "filter"))
	value := r.URL.Query().Get("value")
	if !filter.IsValid() {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Product{}
	for _, id := range s.catalog {
		p := s.products[id].Product
		var field string
		switch filter {
		case types.FilterContinent:
			field = p.Continent
		case types.FilterNationality:
			field = p.Nationality
		case types.FilterType:
			field = p.Type
		}
		if field == value {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		http.Error(w, "상품을 찾을 수 없습니다.", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- cart

// cartOwner resolves the bearer token or, without one, the guest session id.
func (s *Server) cartOwner(r *http.Request, bodySessionID string) (string, int) {
	userID, present, valid := s.bearer(r)
	if present {
		if !valid {
			return "", http.StatusUnauthorized
		}
		return userOwner(userID), 0
	}
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		sessionID = bodySessionID
	}
	if sessionID == "" {
		return "", http.StatusUnauthorized
	}
	return guestOwner(sessionID), 0
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	owner, status := s.cartOwner(r, "")
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[owner]
	if cart == nil {
		cart = types.Cart{}
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req types.AddToCartRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	owner, status := s.cartOwner(r, req.SessionID)
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.addToCartLocked(owner, req.ProductID, req.OptionID, req.Quantity)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) addToCartLocked(owner string, productID, optionID int64, quantity int) (types.CartItem, error) {
	if quantity < 1 {
		return types.CartItem{}, fmt.Errorf("%w: quantity must be positive", errBadRequest)
	}
	product, ok := s.products[productID]
	if !ok {
		return types.CartItem{}, fmt.Errorf("%w: unknown product %d", errBadRequest, productID)
	}
	option, ok := product.Option(optionID)
	if !ok {
		return types.CartItem{}, fmt.Errorf("%w: unknown option %d", errBadRequest, optionID)
	}
	cart := s.carts[owner]
	for i := range cart {
		if cart[i].ProductID == productID && cart[i].OptionID == optionID {
			cart[i].Quantity += quantity
			cart[i].TotalPrice, _ = pricing.LineTotal(cart[i].BasePrice, cart[i].ExtraPrice, cart[i].Quantity)
			return cart[i], nil
		}
	}
	total, _ := pricing.LineTotal(product.BasePrice, option.ExtraPrice, quantity)
	item := types.CartItem{
		CartItemID:   s.newIDLocked(),
		ProductID:    productID,
		OptionID:     optionID,
		ProductName:  product.ProductName,
		OptionValue:  option.OptionValue,
		ThumbnailImg: product.ThumbnailImg,
		BasePrice:    product.BasePrice,
		ExtraPrice:   option.ExtraPrice,
		Quantity:     quantity,
		TotalPrice:   total,
	}
	s.carts[owner] = append(cart, item)
	return item, nil
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "cartItemId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity < 1 {
		http.Error(w, "invalid quantity", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[userOwner(userID)]
	idx := cart.Find(id)
	if idx < 0 {
		http.Error(w, "장바구니 상품을 찾을 수 없습니다.", http.StatusNotFound)
		return
	}
	s.carts[userOwner(userID)] = pricing.ApplyQuantityChange(cart, id, quantity)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "cartItemId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.carts[userOwner(userID)]
	if cart.Find(id) < 0 {
		http.Error(w, "장바구니 상품을 찾을 수 없습니다.", http.StatusNotFound)
		return
	}
	s.carts[userOwner(userID)] = pricing.ApplyQuantityChange(cart, id, 0)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleClearCart(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userOwner(userID))
	w.WriteHeader(http.StatusOK)
}

// --- orders

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request, userID int64) {
	var req types.CreateOrderRequest
	if err := decode(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userOwner(userID)]
	if len(cart) == 0 {
		http.Error(w, "장바구니가 비어있습니다.", http.StatusBadRequest)
		return
	}
	var address *types.Address
	for _, a := range s.addresses[userID] {
		if a.AddressID == req.AddressID {
			selected := a
			address = &selected
		}
	}
	if address == nil {
		http.Error(w, "배송지를 찾을 수 없습니다.", http.StatusBadRequest)
		return
	}

	user := s.users[userID]
	total := pricing.CartTotals(cart).TotalPrice
	if req.UsePoint > user.Point {
		http.Error(w, "포인트가 부족합니다.", http.StatusBadRequest)
		return
	}
	usePoint := min(max(req.UsePoint, 0), total)
	final := pricing.FinalPrice(total, usePoint)

	now := types.Timestamp{Time: time.Now()}
	order := types.Order{
		OrderID:       s.newIDLocked(),
		TotalPrice:    total,
		UsedPoint:     usePoint,
		EarnedPoint:   pricing.EarnedPoint(final),
		FinalPrice:    final,
		Status:        types.OrderStatusPending,
		Recipient:     address.Recipient,
		Phone:         address.Phone,
		Zipcode:       address.Zipcode,
		Address:       address.Address,
		AddressDetail: address.AddressDetail,
		Memo:          req.Memo,
		CreatedAt:     &now,
	}
	for _, item := range cart {
		order.Items = append(order.Items, types.OrderItem{
			OrderItemID:  s.newIDLocked(),
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ThumbnailImg: item.ThumbnailImg,
			OptionID:     item.OptionID,
			OptionValue:  item.OptionValue,
			Quantity:     item.Quantity,
			Price:        item.TotalPrice,
		})
	}
	if usePoint > 0 {
		user.Point -= usePoint
		orderID := order.OrderID
		s.points[userID] = append(s.points[userID], types.PointHistory{
			HistoryID:   s.newIDLocked(),
			Amount:      -usePoint,
			Type:        types.PointUse,
			Description: "주문 사용",
			OrderID:     &orderID,
			Balance:     user.Point,
			CreatedAt:   &now,
		})
	}
	s.orders[userID] = append(s.orders[userID], order)
	delete(s.carts, userOwner(userID))
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleListOrders(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[userID]
	out := make([]types.Order, 0, len(orders))
	for i := len(orders) - 1; i >= 0; i-- {
		out = append(out, orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "orderId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders[userID] {
		if o.OrderID == id {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	http.Error(w, "주문을 찾을 수 없습니다.", http.StatusNotFound)
}

// --- addresses

func (s *Server) handleListAddresses(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]types.Address{}, s.addresses[userID]...)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request, userID int64) {
	var in types.AddressInput
	if err := decode(r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.createAddressLocked(userID, in))
}

func (s *Server) createAddressLocked(userID int64, in types.AddressInput) types.Address {
	if in.IsDefault {
		s.clearDefaultLocked(userID)
	}
	now := types.Timestamp{Time: time.Now()}
	addr := types.Address{
		AddressID:     s.newIDLocked(),
		Name:          in.Name,
		Recipient:     in.Recipient,
		Phone:         in.Phone,
		Zipcode:       in.Zipcode,
		Address:       in.Address,
		AddressDetail: in.AddressDetail,
		IsDefault:     in.IsDefault,
		CreatedAt:     &now,
	}
	s.addresses[userID] = append(s.addresses[userID], addr)
	return addr
}

func (s *Server) handleUpdateAddress(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "addressId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var in types.AddressInput
	if err := decode(r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if list[i].AddressID != id {
			continue
		}
		if in.IsDefault {
			s.clearDefaultLocked(userID)
		}
		list[i].Name = in.Name
		list[i].Recipient = in.Recipient
		list[i].Phone = in.Phone
		list[i].Zipcode = in.Zipcode
		list[i].Address = in.Address
		list[i].AddressDetail = in.AddressDetail
		list[i].IsDefault = in.IsDefault || list[i].IsDefault
		writeJSON(w, http.StatusOK, list[i])
		return
	}
	http.Error(w, "배송지를 찾을 수 없습니다.", http.StatusNotFound)
}

func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "addressId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if list[i].AddressID == id {
			s.addresses[userID] = append(list[:i:i], list[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	http.Error(w, "배송지를 찾을 수 없습니다.", http.StatusNotFound)
}

func (s *Server) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "addressId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	for i := range list {
		if list[i].AddressID == id {
			s.clearDefaultLocked(userID)
			list[i].IsDefault = true
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	http.Error(w, "배송지를 찾을 수 없습니다.", http.StatusNotFound)
}

func (s *Server) clearDefaultLocked(userID int64) {
	list := s.addresses[userID]
	for i := range list {
		list[i].IsDefault = false
	}
}

// --- points

func (s *Server) handlePoints(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, types.PointSummary{
		CurrentPoint: s.users[userID].Point,
		History:      s.pointHistoryLocked(userID),
	})
}

func (s *Server) handlePointHistory(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.pointHistoryLocked(userID))
}

func (s *Server) pointHistoryLocked(userID int64) []types.PointHistory {
	history := s.points[userID]
	out := make([]types.PointHistory, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		out = append(out, history[i])
	}
	return out
}

// --- reviews

func (s *Server) handleProductReviews(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Review{}
	for _, rv := range s.reviews {
		if rv.ProductID == id {
			out = append(out, rv)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReviewStats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var stats types.ReviewStats
	var sum int
	for _, rv := range s.reviews {
		if rv.ProductID == id {
			stats.ReviewCount++
			sum += rv.Rating
		}
	}
	if stats.ReviewCount > 0 {
		stats.AverageRating = float64(sum) / float64(stats.ReviewCount)
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMyReviews(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Review{}
	for _, rv := range s.reviews {
		if rv.UserID == userID {
			out = append(out, rv)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request, userID int64) {
	var in types.ReviewInput
	if err := decode(r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[in.ProductID]
	if !ok {
		http.Error(w, "상품을 찾을 수 없습니다.", http.StatusBadRequest)
		return
	}
	now := types.Timestamp{Time: time.Now()}
	rv := types.Review{
		ReviewID:         s.newIDLocked(),
		ProductID:        in.ProductID,
		ProductName:      product.ProductName,
		ProductThumbnail: product.ThumbnailImg,
		UserID:           userID,
		UserName:         s.users[userID].Name,
		Rating:           in.Rating,
		Content:          in.Content,
		CreatedAt:        &now,
	}
	s.reviews = append(s.reviews, rv)
	writeJSON(w, http.StatusOK, rv)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "reviewId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var in types.ReviewInput
	if err := decode(r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ReviewID == id {
			if s.reviews[i].UserID != userID {
				http.Error(w, "본인이 작성한 리뷰만 수정할 수 있습니다.", http.StatusBadRequest)
				return
			}
			s.reviews[i].Rating = in.Rating
			s.reviews[i].Content = in.Content
			writeJSON(w, http.StatusOK, s.reviews[i])
			return
		}
	}
	http.Error(w, "리뷰를 찾을 수 없습니다.", http.StatusNotFound)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "reviewId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ReviewID == id && s.reviews[i].UserID == userID {
			s.reviews = append(s.reviews[:i:i], s.reviews[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	http.Error(w, "리뷰를 찾을 수 없습니다.", http.StatusNotFound)
}

// --- inquiries

func (s *Server) handleProductInquiries(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	viewer, _, _ := s.bearer(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Inquiry{}
	for _, inq := range s.inquiries {
		if inq.ProductID == id {
			out = append(out, maskInquiry(inq, viewer))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].InquiryID > out[j].InquiryID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleInquiryCount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "productId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, inq := range s.inquiries {
		if inq.ProductID == id {
			count++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *Server) handleGetInquiry(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "inquiryId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	viewer, _, _ := s.bearer(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inq := range s.inquiries {
		if inq.InquiryID == id {
			writeJSON(w, http.StatusOK, maskInquiry(inq, viewer))
			return
		}
	}
	http.Error(w, "문의를 찾을 수 없습니다.", http.StatusNotFound)
}

func (s *Server) handleMyInquiries(w http.ResponseWriter, _ *http.Request, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.Inquiry{}
	for _, inq := range s.inquiries {
		if inq.UserID == userID {
			out = append(out, inq)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateInquiry(w http.ResponseWriter, r *http.Request, userID int64) {
	var in types.InquiryInput
	if err := decode(r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[in.ProductID]
	if !ok {
		http.Error(w, "상품을 찾을 수 없습니다.", http.StatusBadRequest)
		return
	}
	now := types.Timestamp{Time: time.Now()}
	inq := types.Inquiry{
		InquiryID:        s.newIDLocked(),
		ProductID:        in.ProductID,
		ProductName:      product.ProductName,
		ProductThumbnail: product.ThumbnailImg,
		UserID:           userID,
		UserName:         s.users[userID].Name,
		Title:            in.Title,
		Content:          in.Content,
		IsSecret:         in.IsSecret,
		CreatedAt:        &now,
	}
	s.inquiries = append(s.inquiries, inq)
	writeJSON(w, http.StatusOK, inq)
}

func (s *Server) handleUpdateInquiry(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "inquiryId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var in types.InquiryInput
	if err := decode(r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.inquiries {
		if s.inquiries[i].InquiryID == id && s.inquiries[i].UserID == userID {
			if s.inquiries[i].IsAnswered {
				http.Error(w, "답변된 문의는 수정할 수 없습니다.", http.StatusBadRequest)
				return
			}
			s.inquiries[i].Title = in.Title
			s.inquiries[i].Content = in.Content
			s.inquiries[i].IsSecret = in.IsSecret
			writeJSON(w, http.StatusOK, s.inquiries[i])
			return
		}
	}
	http.Error(w, "문의를 찾을 수 없습니다.", http.StatusNotFound)
}

func (s *Server) handleDeleteInquiry(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := idParam(r, "inquiryId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.inquiries {
		if s.inquiries[i].InquiryID == id && s.inquiries[i].UserID == userID {
			s.inquiries = append(s.inquiries[:i:i], s.inquiries[i+1:]...)
			w.WriteHeader(http.StatusOK)
			return
		}
	}
	http.Error(w, "문의를 찾을 수 없습니다.", http.StatusNotFound)
}

// AnswerInquiry records a seller answer.
func (s *Server) AnswerInquiry(inquiryID int64, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.inquiries {
		if s.inquiries[i].InquiryID == inquiryID {
			now := types.Timestamp{Time: time.Now()}
			s.inquiries[i].Answer = &answer
			s.inquiries[i].AnsweredAt = &now
			s.inquiries[i].IsAnswered = true
		}
	}
}

// maskInquiry hides the content of secret inquiries from everyone but the author.
func maskInquiry(inq types.Inquiry, viewer int64) types.Inquiry {
	if !inq.IsSecret || inq.UserID == viewer {
		return inq
	}
	inq.Title = "비밀글입니다."
	inq.Content = ""
	inq.Answer = nil
	return inq
}

// --- helpers

func decode(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}
