package types

// DefaultInquiryTitle is sent when the title field is left blank.
const DefaultInquiryTitle = "상품 문의"

type Inquiry struct {
	InquiryID        int64      `json:"inquiryId"`
	ProductID        int64      `json:"productId"`
	ProductName      string     `json:"productName"`
	ProductThumbnail string     `json:"productThumbnail"`
	UserID           int64      `json:"userId"`
	UserName         string     `json:"userName"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	Answer           *string    `json:"answer,omitempty"`
	AnsweredAt       *Timestamp `json:"answeredAt,omitempty"`
	IsSecret         bool       `json:"isSecret"`
	IsAnswered       bool       `json:"isAnswered"`
	CreatedAt        *Timestamp `json:"createdAt,omitempty"`
}

type InquiryInput struct {
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Title     string `json:"title"`
	Content   string `json:"content" validate:"required,notblank"`
	IsSecret  bool   `json:"isSecret"`
}
