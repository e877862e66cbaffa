// Package cart drives the cart screen: it owns the local cart snapshot and
// keeps it in step with the backend.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/angelmondragon/coffeemarket/internal/screen"
	"github.com/angelmondragon/coffeemarket/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/logger"
	"github.com/angelmondragon/coffeemarket/pkg/pricing"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

// ErrCartEmpty is returned when checkout is attempted with nothing in the cart.
var ErrCartEmpty = pkgerrors.New(pkgerrors.CodeValidation, "장바구니가 비어있습니다.")

type cartClient interface {
	Cart(ctx context.Context) (types.Cart, error)
	AddToCart(ctx context.Context, req types.AddToCartRequest) (*types.CartItem, error)
	UpdateCartQuantity(ctx context.Context, cartItemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, cartItemID int64) error
	ClearCart(ctx context.Context) error
}

type sessionState interface {
	State() session.State
}

// Snapshot is what the cart screen renders.
type Snapshot struct {
	LoggedIn bool           `json:"loggedIn"`
	Items    types.Cart     `json:"items"`
	Totals   pricing.Totals `json:"totals"`
}

// Service holds the cart of one screen instance.
type Service struct {
	client  cartClient
	session sessionState
	scope   *screen.Scope
	logg    *logger.Logger

	lines keyedMutex

	mu       sync.RWMutex
	items    types.Cart
	loggedIn bool
}

// NewService builds a cart service. scope may be nil for callers that never unmount.
func NewService(client cartClient, sess sessionState, scope *screen.Scope, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("cart client required")
	}
	if sess == nil {
		return nil, fmt.Errorf("session required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		client:  client,
		session: sess,
		scope:   scope,
		logg:    logg,
		items:   types.Cart{},
	}, nil
}

// Refresh reloads the cart. Being logged out is reported in the snapshot and
// makes no request.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	if s.session.State() != session.LoggedIn {
		s.apply(func() {
			s.loggedIn = false
			s.items = types.Cart{}
		})
		return s.Snapshot(), nil
	}

	items, err := s.client.Cart(ctx)
	if err != nil {
		if pkgerrors.IsAuthExpired(err) {
			s.apply(func() {
				s.loggedIn = false
				s.items = types.Cart{}
			})
		}
		s.logg.Warn(ctx, fmt.Sprintf("cart refresh failed: %v", err))
		return s.Snapshot(), err
	}
	s.apply(func() {
		s.loggedIn = true
		s.items = items.Clone()
	})
	return s.Snapshot(), nil
}

// Add puts an option in the cart. It works for guests as well; the local
// snapshot is refreshed by the next Refresh.
func (s *Service) Add(ctx context.Context, productID, optionID int64, quantity int) (*types.CartItem, error) {
	return s.client.AddToCart(ctx, types.AddToCartRequest{ProductID: productID, OptionID: optionID, Quantity: quantity})
}

// ChangeQuantity sets a line's quantity. Zero or less removes the line.
// Concurrent changes to the same line run one at a time.
func (s *Service) ChangeQuantity(ctx context.Context, cartItemID int64, quantity int) (Snapshot, error) {
	unlock := s.lines.Lock(cartItemID)
	defer unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, cartItemID)
	}
	if err := s.client.UpdateCartQuantity(ctx, cartItemID, quantity); err != nil {
		return s.Snapshot(), err
	}
	s.apply(func() {
		s.items = pricing.ApplyQuantityChange(s.items, cartItemID, quantity)
	})
	return s.Snapshot(), nil
}

// Increment and Decrement adjust a line by one from the local snapshot.
func (s *Service) Increment(ctx context.Context, cartItemID int64) (Snapshot, error) {
	return s.step(ctx, cartItemID, 1)
}

func (s *Service) Decrement(ctx context.Context, cartItemID int64) (Snapshot, error) {
	return s.step(ctx, cartItemID, -1)
}

func (s *Service) step(ctx context.Context, cartItemID int64, delta int) (Snapshot, error) {
	unlock := s.lines.Lock(cartItemID)
	s.mu.RLock()
	idx := s.items.Find(cartItemID)
	var current int
	if idx >= 0 {
		current = s.items[idx].Quantity
	}
	s.mu.RUnlock()
	unlock()

	if idx < 0 {
		return s.Snapshot(), pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("cart item %d not in cart", cartItemID))
	}
	return s.ChangeQuantity(ctx, cartItemID, current+delta)
}

// Remove deletes a line.
func (s *Service) Remove(ctx context.Context, cartItemID int64) (Snapshot, error) {
	unlock := s.lines.Lock(cartItemID)
	defer unlock()
	return s.removeLocked(ctx, cartItemID)
}

func (s *Service) removeLocked(ctx context.Context, cartItemID int64) (Snapshot, error) {
	if err := s.client.RemoveCartItem(ctx, cartItemID); err != nil {
		return s.Snapshot(), err
	}
	s.apply(func() {
		s.items = pricing.ApplyQuantityChange(s.items, cartItemID, 0)
	})
	return s.Snapshot(), nil
}

// Clear empties the cart on the backend and locally.
func (s *Service) Clear(ctx context.Context) (Snapshot, error) {
	if err := s.client.ClearCart(ctx); err != nil {
		return s.Snapshot(), err
	}
	s.apply(func() {
		s.items = types.Cart{}
	})
	return s.Snapshot(), nil
}

func (s *Service) Totals() pricing.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pricing.CartTotals(s.items)
}

// CanCheckout returns ErrCartEmpty for an empty cart.
func (s *Service) CanCheckout() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return ErrCartEmpty
	}
	return pricing.ValidateQuantities(s.items)
}

// Snapshot returns a copy of the current cart state.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		LoggedIn: s.loggedIn,
		Items:    s.items.Clone(),
		Totals:   pricing.CartTotals(s.items),
	}
}

func (s *Service) apply(fn func()) {
	s.scope.Apply(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		fn()
	})
}
