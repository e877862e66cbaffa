package types

type Product struct {
	ProductID    int64  `json:"productId"`
	ProductName  string `json:"productName"`
	BasePrice    int    `json:"basePrice"`
	Continent    string `json:"continent"`
	Nationality  string `json:"nationality"`
	Type         string `json:"type"`
	ThumbnailImg string `json:"thumbnailImg"`
}

type ProductDetail struct {
	Product
	DetailImg string          `json:"detailImg"`
	Options   []ProductOption `json:"options"`
	Images    []ProductImage  `json:"images"`
}

type ProductOption struct {
	OptionID    int64  `json:"optionId"`
	OptionValue string `json:"optionValue"`
	ExtraPrice  int    `json:"extraPrice"`
}

type ProductImage struct {
	ImageID   int64  `json:"imageId"`
	ImageURL  string `json:"imageUrl"`
	SortOrder int    `json:"sortOrder"`
}

// Option returns the option with the given id.
func (p ProductDetail) Option(optionID int64) (ProductOption, bool) {
	for _, opt := range p.Options {
		if opt.OptionID == optionID {
			return opt, true
		}
	}
	return ProductOption{}, false
}

// ProductFilter names a browse filter under /api/products/filter.
type ProductFilter string

const (
	FilterContinent   ProductFilter = "continent"
	FilterNationality ProductFilter = "nationality"
	FilterType        ProductFilter = "type"
)

func (f ProductFilter) IsValid() bool {
	switch f {
	case FilterContinent, FilterNationality, FilterType:
		return true
	default:
		return false
	}
}
