package types

type Review struct {
	ReviewID         int64      `json:"reviewId"`
	ProductID        int64      `json:"productId"`
	ProductName      string     `json:"productName"`
	ProductThumbnail string     `json:"productThumbnail"`
	UserID           int64      `json:"userId"`
	UserName         string     `json:"userName"`
	UserProfileImage string     `json:"userProfileImage"`
	Rating           int        `json:"rating"`
	Content          string     `json:"content"`
	CreatedAt        *Timestamp `json:"createdAt,omitempty"`
}

type ReviewInput struct {
	ProductID   int64  `json:"productId" validate:"required,gt=0"`
	OrderItemID *int64 `json:"orderItemId,omitempty"`
	Rating      int    `json:"rating" validate:"min=1,max=5"`
	Content     string `json:"content"`
}

// ReviewStats is the per-product aggregate from /api/reviews/product/{id}/stats.
type ReviewStats struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int64   `json:"reviewCount"`
}
