package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

// EarnRate is the flat point accrual rate on the final payable price.
var EarnRate = decimal.RequireFromString("0.01")

// Totals are the derived aggregates of a cart.
type Totals struct {
	TotalCount int `json:"totalCount"`
	TotalPrice int `json:"totalPrice"`
}

// LineTotal returns (base+extra)*qty. A zero quantity is valid and yields 0.
func LineTotal(base, extra, qty int) (int, error) {
	if qty < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidQuantity, fmt.Sprintf("quantity must not be negative, got %d", qty))
	}
	return (base + extra) * qty, nil
}

// ApplyQuantityChange returns a new cart with the quantity of cartItemID set
// to newQty. newQty <= 0 drops the item. The input cart is never mutated and
// an unknown id returns an unchanged copy.
func ApplyQuantityChange(cart types.Cart, cartItemID int64, newQty int) types.Cart {
	idx := cart.Find(cartItemID)
	if idx < 0 {
		return cart.Clone()
	}
	if newQty <= 0 {
		out := make(types.Cart, 0, len(cart)-1)
		out = append(out, cart[:idx]...)
		return append(out, cart[idx+1:]...)
	}

	out := cart.Clone()
	item := out[idx]
	// newQty > 0 here, so LineTotal cannot fail.
	total, _ := LineTotal(item.BasePrice, item.ExtraPrice, newQty)
	item.Quantity = newQty
	item.TotalPrice = total
	out[idx] = item
	return out
}

// CartTotals sums quantities and line totals. An empty cart yields 0/0.
func CartTotals(cart types.Cart) Totals {
	var totals Totals
	for _, item := range cart {
		totals.TotalCount += item.Quantity
		totals.TotalPrice += item.TotalPrice
	}
	return totals
}

// ClampUsePoint bounds a requested redemption to [0, min(userPoint, cartTotal)].
func ClampUsePoint(requested, userPoint, cartTotal int) int {
	return max(0, min(requested, min(userPoint, cartTotal)))
}

// ParsePointInput reads an optional sign followed by decimal digits from the
// start of text. Anything unparsable, and any negative value, yields 0. A
// positive number too large for int yields math.MaxInt.
func ParsePointInput(text string) int {
	s := strings.TrimSpace(text)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	value, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) && s[0] != '-' {
		// too many digits: ClampUsePoint caps it like any other large request
		return math.MaxInt
	}
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// FinalPrice is the payable amount after point redemption, never negative.
func FinalPrice(cartTotal, usePoint int) int {
	return max(0, cartTotal-usePoint)
}

// EarnedPoint is floor(finalPrice * EarnRate).
func EarnedPoint(finalPrice int) int {
	if finalPrice <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(finalPrice)).Mul(EarnRate).Floor().IntPart())
}

// QuantityViolation describes a cart line whose quantity cannot be priced.
type QuantityViolation struct {
	CartItemID int64  `json:"cart_item_id"`
	Product    string `json:"product,omitempty"`
	Quantity   int    `json:"quantity"`
}

// ValidateQuantities checks that every line in the cart has a non-negative
// quantity and a consistent line total.
func ValidateQuantities(cart types.Cart) error {
	var violations []QuantityViolation
	for _, item := range cart {
		total, err := LineTotal(item.BasePrice, item.ExtraPrice, item.Quantity)
		if err != nil || total != item.TotalPrice {
			violations = append(violations, QuantityViolation{
				CartItemID: item.CartItemID,
				Product:    item.ProductName,
				Quantity:   item.Quantity,
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeInvalidQuantity, fmt.Sprintf("invalid quantity on %d cart item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
