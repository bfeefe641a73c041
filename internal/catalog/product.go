package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	StatusPublished  = "published"
	StatusOutOfStock = "out-of-stock"
)

type Variant struct {
	Color   string          `json:"color"`
	Size    string          `json:"size"`
	SKU     string          `json:"sku"`
	Barcode string          `json:"barcode,omitempty"`
	Price   decimal.Decimal `json:"price"`
	Stock   int             `json:"stock"`
}

type Product struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	SKU                string          `json:"sku"`
	Barcode            string          `json:"barcode,omitempty"`
	Price              decimal.Decimal `json:"price"`
	InStock            int             `json:"inStock"`
	Status             string          `json:"status"`
	MaxDiscountPercent *float64        `json:"maxDiscountPercent,omitempty"`
	Variants           []Variant       `json:"variants,omitempty"`
}

// NoVariant marks a line that sells the whole product rather than one of its variants.
const NoVariant = -1

// AvailableStock returns the sellable stock for the given variant index,
// or the product-level stock when variantIndex is NoVariant.
func (p Product) AvailableStock(variantIndex int) int {
	if variantIndex == NoVariant {
		return p.InStock
	}
	if variantIndex < 0 || variantIndex >= len(p.Variants) {
		return 0
	}
	return p.Variants[variantIndex].Stock
}

// UnitPrice returns the selling price for the given variant index,
// falling back to the product price when no variant is selected.
func (p Product) UnitPrice(variantIndex int) decimal.Decimal {
	if variantIndex == NoVariant || variantIndex < 0 || variantIndex >= len(p.Variants) {
		return p.Price
	}
	return p.Variants[variantIndex].Price
}

// LineID derives the cart line identity for a product/variant selection.
func (p Product) LineID(variantIndex int) string {
	if variantIndex == NoVariant {
		return p.ID
	}
	return fmt.Sprintf("%s-%d", p.ID, variantIndex)
}

// MatchesBarcode reports whether the code matches the product itself or one of
// its variants, returning the matching variant index (NoVariant for the product).
func (p Product) MatchesBarcode(code string) (int, bool) {
	if code == "" {
		return 0, false
	}
	if p.Barcode == code {
		return NoVariant, true
	}
	for i, v := range p.Variants {
		if v.Barcode == code {
			return i, true
		}
	}
	return 0, false
}
