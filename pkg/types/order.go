package types

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "결제대기",
	OrderStatusPaid:      "결제완료",
	OrderStatusPreparing: "상품준비중",
	OrderStatusShipped:   "배송중",
	OrderStatusDelivered: "배송완료",
	OrderStatusCancelled: "주문취소",
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// Label returns the display label; unknown statuses display as pending.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return orderStatusLabels[OrderStatusPending]
}

type Order struct {
	OrderID       int64       `json:"orderId"`
	TotalPrice    int         `json:"totalPrice"`
	UsedPoint     int         `json:"usedPoint"`
	EarnedPoint   int         `json:"earnedPoint"`
	FinalPrice    int         `json:"finalPrice"`
	Status        OrderStatus `json:"status"`
	Recipient     string      `json:"recipient"`
	Phone         string      `json:"phone"`
	Zipcode       string      `json:"zipcode"`
	Address       string      `json:"address"`
	AddressDetail string      `json:"addressDetail"`
	Memo          string      `json:"memo"`
	CreatedAt     *Timestamp  `json:"createdAt,omitempty"`
	PaidAt        *Timestamp  `json:"paidAt,omitempty"`
	ShippedAt     *Timestamp  `json:"shippedAt,omitempty"`
	DeliveredAt   *Timestamp  `json:"deliveredAt,omitempty"`
	Items         []OrderItem `json:"items"`
}

type OrderItem struct {
	OrderItemID  int64  `json:"orderItemId"`
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	ThumbnailImg string `json:"thumbnailImg"`
	OptionID     int64  `json:"optionId"`
	OptionValue  string `json:"optionValue"`
	Quantity     int    `json:"quantity"`
	Price        int    `json:"price"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	AddressID int64  `json:"addressId" validate:"required,gt=0"`
	UsePoint  int    `json:"usePoint" validate:"min=0"`
	Memo      string `json:"memo"`
}
