package models

import "github.com/lib/pq"

// Gender audience values. The empty string means unspecified.
const (
	GenderUnspecified = ""
	GenderMen         = "men"
	GenderWomen       = "women"
)

// Product is a catalog listing. Image and ExtraImages hold public asset URLs;
// each referenced asset is owned exclusively by this record.
type Product struct {
	BaseModel
	Name           string         `json:"name"`
	Store          string         `json:"store"`
	Code           string         `json:"code"`
	LabelCode      string         `json:"labelCode"`
	Description    string         `json:"description"`
	Classification string         `json:"classification"`
	Gender         string         `json:"gender"`
	Price          float64        `json:"price"`
	DiscountPrice  float64        `json:"discountPrice"`
	Quantity       int            `json:"quantity"`
	InventoryValue float64        `json:"inventoryValue"`
	Sizes          pq.StringArray `gorm:"type:text[]" json:"sizes"`
	Image          string         `json:"image"`
	ExtraImages    pq.StringArray `gorm:"type:text[]" json:"extraImages"`
}

// EffectivePrice is what shoppers actually pay: the discount price when one
// is set below the list price, otherwise the list price.
func (p Product) EffectivePrice() float64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

// HasSize reports whether the product is offered in the given size.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
