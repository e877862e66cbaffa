// Package storefronttest serves an in-memory coffee-market backend over
// httptest for client tests.
package storefronttest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/coffeemarket/pkg/auth"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

var signingKey = []byte("storefronttest-signing-key")

// Request is one request received by the fake backend.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string
	Body          []byte
}

// Server is a fake backend. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	nextID    int64
	users     map[int64]*types.User
	social    map[string]int64
	access    map[string]int64
	refresh   map[string]int64
	products  map[int64]types.ProductDetail
	catalog   []int64
	carts     map[string]types.Cart
	addresses map[int64][]types.Address
	orders    map[int64][]types.Order
	points    map[int64][]types.PointHistory
	reviews   []types.Review
	inquiries []types.Inquiry
	requests  []Request
	failures  map[string]int
}

// New starts a fake backend seeded with a small catalog.
func New() *Server {
	s := &Server{
		nextID:    1000,
		users:     make(map[int64]*types.User),
		social:    make(map[string]int64),
		access:    make(map[string]int64),
		refresh:   make(map[string]int64),
		products:  make(map[int64]types.ProductDetail),
		carts:     make(map[string]types.Cart),
		addresses: make(map[int64][]types.Address),
		orders:    make(map[int64][]types.Order),
		points:    make(map[int64][]types.PointHistory),
		failures:  make(map[string]int),
	}
	s.seedCatalog()
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFailures)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/me", s.authed(s.handleMe))
	})
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/latest", s.handleLatest)
		r.Get("/best", s.handleBest)
		r.Get("/filter/{filter}", s.handleFilter)
		r.Get("/{productId}", s.handleProduct)
	})
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", s.handleGetCart)
		r.Post("/", s.handleAddToCart)
		r.Delete("/", s.authed(s.handleClearCart))
		r.Patch("/{cartItemId}", s.authed(s.handleUpdateQuantity))
		r.Delete("/{cartItemId}", s.authed(s.handleRemoveCartItem))
	})
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", s.authed(s.handleListOrders))
		r.Post("/", s.authed(s.handleCreateOrder))
		r.Get("/{orderId}", s.authed(s.handleGetOrder))
	})
	r.Route("/api/addresses", func(r chi.Router) {
		r.Get("/", s.authed(s.handleListAddresses))
		r.Post("/", s.authed(s.handleCreateAddress))
		r.Put("/{addressId}", s.authed(s.handleUpdateAddress))
		r.Delete("/{addressId}", s.authed(s.handleDeleteAddress))
		r.Patch("/{addressId}/default", s.authed(s.handleSetDefaultAddress))
	})
	r.Route("/api/points", func(r chi.Router) {
		r.Get("/", s.authed(s.handlePoints))
		r.Get("/history", s.authed(s.handlePointHistory))
	})
	r.Route("/api/reviews", func(r chi.Router) {
		r.Get("/product/{productId}", s.handleProductReviews)
		r.Get("/product/{productId}/stats", s.handleReviewStats)
		r.Get("/my", s.authed(s.handleMyReviews))
		r.Post("/", s.authed(s.handleCreateReview))
		r.Put("/{reviewId}", s.authed(s.handleUpdateReview))
		r.Delete("/{reviewId}", s.authed(s.handleDeleteReview))
	})
	r.Route("/api/inquiries", func(r chi.Router) {
		r.Get("/product/{productId}", s.handleProductInquiries)
		r.Get("/product/{productId}/count", s.handleInquiryCount)
		r.Get("/my", s.authed(s.handleMyInquiries))
		r.Get("/{inquiryId}", s.handleGetInquiry)
		r.Post("/", s.authed(s.handleCreateInquiry))
		r.Put("/{inquiryId}", s.authed(s.handleUpdateInquiry))
		r.Delete("/{inquiryId}", s.authed(s.handleDeleteInquiry))
	})
	return r
}

// AddUser registers a user that can log in with provider/socialToken.
func (s *Server) AddUser(user types.User, provider types.Provider, socialToken string) types.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.newIDLocked()
	}
	u := user
	s.users[u.ID] = &u
	s.social[socialKey(provider, socialToken)] = u.ID
	return u
}

// IssueTokens mints a token pair for userID as a login would.
func (s *Server) IssueTokens(userID int64) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(userID)
}

// RevokeAccessTokens invalidates every issued access token, as if they expired.
func (s *Server) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]int64)
}

// FailNext makes the next request to method+path answer with status.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request to method+path.
func (s *Server) LastRequest(method, path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Method == method && s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

// User returns the stored user.
func (s *Server) User(id int64) (types.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return types.User{}, false
	}
	return *u, true
}

// UserCart returns the cart of a registered user.
func (s *Server) UserCart(userID int64) types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[userOwner(userID)].Clone()
}

// GuestCart returns the cart of an anonymous session.
func (s *Server) GuestCart(sessionID string) types.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[guestOwner(sessionID)].Clone()
}

// SeedCart puts quantity of a catalog option in the user's cart.
func (s *Server) SeedCart(userID, productID, optionID int64, quantity int) types.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.addToCartLocked(userOwner(userID), productID, optionID, quantity)
	if err != nil {
		panic(err)
	}
	return item
}

// SeedAddress stores an address for userID.
func (s *Server) SeedAddress(userID int64, in types.AddressInput) types.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createAddressLocked(userID, in)
}

// Orders returns the orders placed by userID.
func (s *Server) Orders(userID int64) []types.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Order, len(s.orders[userID]))
	copy(out, s.orders[userID])
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          strings.TrimSuffix(r.URL.Path, "/"),
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimSuffix(r.URL.Path, "/")
		s.mu.Lock()
		status, ok := s.failures[key]
		delete(s.failures, key)
		s.mu.Unlock()
		if ok {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID int64)

// authed rejects requests without a valid bearer token with 401.
func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, present, valid := s.bearer(r)
		if !present || !valid {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h(w, r, userID)
	}
}

// bearer resolves the Authorization header.
func (s *Server) bearer(r *http.Request) (userID int64, present bool, valid bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return 0, false, false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return 0, true, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, valid = s.access[token]
	return userID, true, valid
}

func (s *Server) issueLocked(userID int64) (string, string) {
	now := time.Now()
	claims := auth.AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			ID:        strconv.FormatInt(s.newIDLocked(), 10),
		},
	}
	if u, ok := s.users[userID]; ok {
		claims.Email = u.Email
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	refresh := fmt.Sprintf("refresh-%d-%d", userID, s.newIDLocked())
	s.access[access] = userID
	s.refresh[refresh] = userID
	return access, refresh
}

func (s *Server) newIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func socialKey(provider types.Provider, token string) string {
	return string(provider) + ":" + token
}

func userOwner(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func guestOwner(sessionID string) string {
	return "guest:" + sessionID
}
