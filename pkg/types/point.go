package types

type PointHistoryType string

const (
	PointEarn PointHistoryType = "EARN"
	PointUse  PointHistoryType = "USE"
)

type PointHistory struct {
	HistoryID   int64            `json:"historyId"`
	Amount      int              `json:"amount"`
	Type        PointHistoryType `json:"type"`
	Description string           `json:"description"`
	OrderID     *int64           `json:"orderId,omitempty"`
	Balance     int              `json:"balance"`
	CreatedAt   *Timestamp       `json:"createdAt,omitempty"`
}

// PointSummary is the body of GET /api/points.
type PointSummary struct {
	CurrentPoint int            `json:"currentPoint"`
	History      []PointHistory `json:"history"`
}
