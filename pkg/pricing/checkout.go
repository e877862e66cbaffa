package pricing

import "github.com/angelmondragon/coffeemarket/pkg/types"

// Summary is the price breakdown shown on the checkout screen.
type Summary struct {
	TotalCount  int `json:"totalCount"`
	TotalPrice  int `json:"totalPrice"`
	UsePoint    int `json:"usePoint"`
	FinalPrice  int `json:"finalPrice"`
	EarnedPoint int `json:"earnedPoint"`
}

// CheckoutState holds the snapshot taken on checkout entry. UserPoint is not
// live; it is the balance cached at the time the screen loaded.
type CheckoutState struct {
	Cart            types.Cart
	SelectedAddress *types.Address
	UserPoint       int
	Memo            string

	usePoint int
}

// NewCheckoutState snapshots the cart and pre-selects the default address.
func NewCheckoutState(cart types.Cart, addresses []types.Address, userPoint int) *CheckoutState {
	return &CheckoutState{
		Cart:            cart.Clone(),
		SelectedAddress: DefaultAddress(addresses),
		UserPoint:       max(0, userPoint),
	}
}

// UsePoint returns the current, already clamped, redemption.
func (s *CheckoutState) UsePoint() int {
	return s.usePoint
}

// SetUsePoint clamps requested and stores it. The clamped value is returned.
func (s *CheckoutState) SetUsePoint(requested int) int {
	s.usePoint = ClampUsePoint(requested, s.UserPoint, CartTotals(s.Cart).TotalPrice)
	return s.usePoint
}

// SetPointInput applies the parse-or-zero rule to raw text input.
func (s *CheckoutState) SetPointInput(text string) int {
	return s.SetUsePoint(ParsePointInput(text))
}

// UseAllPoints redeems as much of the balance as the cart allows.
func (s *CheckoutState) UseAllPoints() int {
	return s.SetUsePoint(s.UserPoint)
}

func (s *CheckoutState) Summary() Summary {
	totals := CartTotals(s.Cart)
	use := ClampUsePoint(s.usePoint, s.UserPoint, totals.TotalPrice)
	final := FinalPrice(totals.TotalPrice, use)
	return Summary{
		TotalCount:  totals.TotalCount,
		TotalPrice:  totals.TotalPrice,
		UsePoint:    use,
		FinalPrice:  final,
		EarnedPoint: EarnedPoint(final),
	}
}

// DefaultAddress returns the address flagged as default, else the first one,
// else nil. The returned pointer refers to a copy.
func DefaultAddress(addresses []types.Address) *types.Address {
	if len(addresses) == 0 {
		return nil
	}
	for _, addr := range addresses {
		if addr.IsDefault {
			selected := addr
			return &selected
		}
	}
	first := addresses[0]
	return &first
}
