// Package checkout drives the order form: it snapshots the cart, addresses
// and cached point balance, tracks the point redemption and submits the order.
package checkout

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/coffeemarket/internal/cart"
	"github.com/angelmondragon/coffeemarket/internal/screen"
	"github.com/angelmondragon/coffeemarket/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/logger"
	"github.com/angelmondragon/coffeemarket/pkg/pricing"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

var (
	ErrCartEmpty        = cart.ErrCartEmpty
	ErrAddressRequired  = pkgerrors.New(pkgerrors.CodeValidation, "배송지를 선택해주세요.")
	ErrNotLoaded        = pkgerrors.New(pkgerrors.CodeInternal, "checkout not loaded")
	ErrSubmitInProgress = pkgerrors.New(pkgerrors.CodeValidation, "주문을 처리하고 있습니다.")
)

type checkoutClient interface {
	Cart(ctx context.Context) (types.Cart, error)
	Addresses(ctx context.Context) ([]types.Address, error)
	CreateOrder(ctx context.Context, req types.CreateOrderRequest) (*types.Order, error)
}

type profileStore interface {
	State() session.State
	User() (types.User, bool)
	DeductPoint(ctx context.Context, amount int) error
}

// View is the rendered state of the form.
type View struct {
	Items           types.Cart      `json:"items"`
	Addresses       []types.Address `json:"addresses"`
	SelectedAddress *types.Address  `json:"selectedAddress,omitempty"`
	UserPoint       int             `json:"userPoint"`
	Memo            string          `json:"memo"`
	Summary         pricing.Summary `json:"summary"`
}

type Service struct {
	client  checkoutClient
	profile profileStore
	scope   *screen.Scope
	logg    *logger.Logger

	mu         sync.Mutex
	state      *pricing.CheckoutState
	addresses  []types.Address
	submitting bool
}

func NewService(client checkoutClient, profile profileStore, scope *screen.Scope, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("checkout client required")
	}
	if profile == nil {
		return nil, fmt.Errorf("profile store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{client: client, profile: profile, scope: scope, logg: logg}, nil
}

// Load fetches the cart and the address book in parallel and snapshots the
// cached point balance. The point balance is not re-read from the backend.
func (s *Service) Load(ctx context.Context) (View, error) {
	if s.profile.State() != session.LoggedIn {
		return View{}, pkgerrors.New(pkgerrors.CodeAuthExpired, "login required")
	}

	var (
		items     types.Cart
		addresses []types.Address
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.client.Cart(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		addresses, err = s.client.Addresses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("checkout load failed: %v", err))
		return View{}, err
	}
	if len(items) == 0 {
		return View{}, ErrCartEmpty
	}

	var point int
	if user, ok := s.profile.User(); ok {
		point = user.Point
	}

	s.scope.Apply(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.state = pricing.NewCheckoutState(items, addresses, point)
		s.addresses = append([]types.Address(nil), addresses...)
	})
	return s.View()
}

// SetPointInput applies typed text to the redemption field.
func (s *Service) SetPointInput(text string) (pricing.Summary, error) {
	return s.update(func(st *pricing.CheckoutState) { st.SetPointInput(text) })
}

func (s *Service) SetUsePoint(points int) (pricing.Summary, error) {
	return s.update(func(st *pricing.CheckoutState) { st.SetUsePoint(points) })
}

func (s *Service) UseAllPoints() (pricing.Summary, error) {
	return s.update(func(st *pricing.CheckoutState) { st.UseAllPoints() })
}

func (s *Service) SetMemo(memo string) error {
	_, err := s.update(func(st *pricing.CheckoutState) { st.Memo = memo })
	return err
}

// SelectAddress picks one of the loaded addresses.
func (s *Service) SelectAddress(addressID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ErrNotLoaded
	}
	for _, addr := range s.addresses {
		if addr.AddressID == addressID {
			selected := addr
			s.state.SelectedAddress = &selected
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("address %d is not in the address book", addressID))
}

func (s *Service) Summary() (pricing.Summary, error) {
	return s.update(func(*pricing.CheckoutState) {})
}

func (s *Service) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return View{}, ErrNotLoaded
	}
	view := View{
		Items:     s.state.Cart.Clone(),
		Addresses: append([]types.Address(nil), s.addresses...),
		UserPoint: s.state.UserPoint,
		Memo:      s.state.Memo,
		Summary:   s.state.Summary(),
	}
	if s.state.SelectedAddress != nil {
		selected := *s.state.SelectedAddress
		view.SelectedAddress = &selected
	}
	return view, nil
}

// Submit places the order. Without a selected address nothing is sent. On
// success the redeemed points are deducted from the cached profile.
func (s *Service) Submit(ctx context.Context) (*types.Order, error) {
	s.mu.Lock()
	if s.state == nil {
		s.mu.Unlock()
		return nil, ErrNotLoaded
	}
	if s.state.SelectedAddress == nil {
		s.mu.Unlock()
		return nil, ErrAddressRequired
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	summary := s.state.Summary()
	req := types.CreateOrderRequest{
		AddressID: s.state.SelectedAddress.AddressID,
		UsePoint:  summary.UsePoint,
		Memo:      s.state.Memo,
	}
	s.submitting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	order, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("order submission failed: %v", err))
		return nil, err
	}
	if err := s.profile.DeductPoint(ctx, req.UsePoint); err != nil {
		s.logg.Error(ctx, "failed to update cached point balance", err)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":    order.OrderID,
		"final_price": order.FinalPrice,
		"used_point":  order.UsedPoint,
	}), "order placed")
	return order, nil
}

func (s *Service) update(fn func(*pricing.CheckoutState)) (pricing.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return pricing.Summary{}, ErrNotLoaded
	}
	fn(s.state)
	return s.state.Summary(), nil
}
