package types

// Address is a saved shipping address. At most one address per user has
// IsDefault set; the backend enforces it.
type Address struct {
	AddressID     int64      `json:"addressId"`
	Name          string     `json:"name"`
	Recipient     string     `json:"recipient"`
	Phone         string     `json:"phone"`
	Zipcode       string     `json:"zipcode"`
	Address       string     `json:"address"`
	AddressDetail string     `json:"addressDetail"`
	IsDefault     bool       `json:"isDefault"`
	CreatedAt     *Timestamp `json:"createdAt,omitempty"`
}

// AddressInput is the create/update body for /api/addresses.
type AddressInput struct {
	Name          string `json:"name" validate:"required,notblank"`
	Recipient     string `json:"recipient" validate:"required,notblank"`
	Phone         string `json:"phone" validate:"required,notblank"`
	Zipcode       string `json:"zipcode"`
	Address       string `json:"address" validate:"required,notblank"`
	AddressDetail string `json:"addressDetail"`
	IsDefault     bool   `json:"isDefault"`
}

// InputFrom pre-fills an edit form from a saved address.
func InputFrom(a Address) AddressInput {
	return AddressInput{
		Name:          a.Name,
		Recipient:     a.Recipient,
		Phone:         a.Phone,
		Zipcode:       a.Zipcode,
		Address:       a.Address,
		AddressDetail: a.AddressDetail,
		IsDefault:     a.IsDefault,
	}
}
