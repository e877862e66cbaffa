package types

// CartItem mirrors one line of GET /api/cart. Prices are whole currency
// units; TotalPrice is (BasePrice+ExtraPrice)*Quantity.
type CartItem struct {
	CartItemID   int64  `json:"cartItemId"`
	ProductID    int64  `json:"productId"`
	OptionID     int64  `json:"optionId"`
	ProductName  string `json:"productName"`
	OptionValue  string `json:"optionValue"`
	ThumbnailImg string `json:"thumbnailImg"`
	BasePrice    int    `json:"basePrice"`
	ExtraPrice   int    `json:"extraPrice"`
	Quantity     int    `json:"quantity"`
	TotalPrice   int    `json:"totalPrice"`
}

// Cart is an ordered snapshot of cart items, unique by CartItemID.
type Cart []CartItem

// Find returns the index of the item with the given id, or -1.
func (c Cart) Find(cartItemID int64) int {
	for i := range c {
		if c[i].CartItemID == cartItemID {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of the snapshot.
func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// AddToCartRequest is the body of POST /api/cart. SessionID is set for
// guests instead of a bearer token.
type AddToCartRequest struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	OptionID  int64  `json:"optionId" validate:"required,gt=0"`
	Quantity  int    `json:"quantity" validate:"min=1"`
	SessionID string `json:"sessionId,omitempty"`
}
