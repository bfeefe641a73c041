package cart

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/catalog"
)

var (
	ErrOutOfStock        = errors.New("product is out of stock")
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
	ErrLineNotFound      = errors.New("cart line not found")
)

// Settings carries the till-wide defaults that bound cart transitions.
type Settings struct {
	// MaxDiscountPercent caps line discounts for products that do not carry
	// their own maxDiscountPercent.
	MaxDiscountPercent float64
}

func DefaultSettings() Settings {
	return Settings{MaxDiscountPercent: 50}
}

// Line is one product/variant entry in the cart. Discount is an absolute
// amount, never more than Total() scaled by the effective discount cap.
type Line struct {
	ID           string          `json:"id"`
	Product      catalog.Product `json:"product"`
	VariantIndex int             `json:"variantIndex"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Discount     decimal.Decimal `json:"discount"`
}

// Total is quantity × unit price, before discount.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) availableStock() int {
	return l.Product.AvailableStock(l.VariantIndex)
}

// maxDiscount is the largest absolute discount the line may carry.
func (l Line) maxDiscount(s Settings) decimal.Decimal {
	cap := s.MaxDiscountPercent
	if l.Product.MaxDiscountPercent != nil {
		cap = *l.Product.MaxDiscountPercent
	}
	return l.Total().Mul(decimal.NewFromFloat(cap)).Div(decimal.NewFromInt(100)).Round(2)
}

type Customer struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

// Payment is the pending payment input for the session, set before checkout.
type Payment struct {
	Method      PaymentMethod   `json:"method,omitempty"`
	AmountPaid  decimal.Decimal `json:"amountPaid"`
	TaxOverride *float64        `json:"taxOverride,omitempty"`
}

// Cart is the in-memory aggregate for one till session. All transitions are
// plain methods so they can be tested without any HTTP or storage layer.
type Cart struct {
	Lines     []Line    `json:"lines"`
	Customer  *Customer `json:"customer,omitempty"`
	Payment   Payment   `json:"payment"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AddItem puts a product (or one of its variants) in the cart. A product with
// no sellable stock is rejected. Adding a product already in the cart bumps
// its quantity, capped at the available stock.
func (c *Cart) AddItem(p catalog.Product, variantIndex int) error {
	available := p.AvailableStock(variantIndex)
	if available <= 0 {
		return ErrOutOfStock
	}

	id := p.LineID(variantIndex)
	for i := range c.Lines {
		if c.Lines[i].ID != id {
			continue
		}
		if c.Lines[i].Quantity >= available {
			return ErrInsufficientStock
		}
		oldTotal := c.Lines[i].Total()
		c.Lines[i].Quantity++
		c.Lines[i].Discount = rescaleDiscount(c.Lines[i].Discount, oldTotal, c.Lines[i].Total())
		c.touch()
		return nil
	}

	c.Lines = append(c.Lines, Line{
		ID:           id,
		Product:      p,
		VariantIndex: variantIndex,
		Quantity:     1,
		UnitPrice:    p.UnitPrice(variantIndex),
		Discount:     decimal.Zero,
	})
	c.touch()
	return nil
}

// UpdateQuantity sets a line's quantity. Requests over the available stock are
// rejected and leave the line untouched; zero or less removes the line. The
// existing discount is rescaled so its percentage of the line total is kept.
func (c *Cart) UpdateQuantity(lineID string, quantity int) error {
	i, ok := c.find(lineID)
	if !ok {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		c.touch()
		return nil
	}
	if quantity > c.Lines[i].availableStock() {
		return ErrInsufficientStock
	}

	oldTotal := c.Lines[i].Total()
	c.Lines[i].Quantity = quantity
	c.Lines[i].Discount = rescaleDiscount(c.Lines[i].Discount, oldTotal, c.Lines[i].Total())
	c.touch()
	return nil
}

// RemoveItem deletes a line unconditionally.
func (c *Cart) RemoveItem(lineID string) error {
	i, ok := c.find(lineID)
	if !ok {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.touch()
	return nil
}

// ApplyDiscount sets the absolute discount on a line, clamped to the line's
// discount cap. It returns the amount actually applied and whether clamping
// happened so the caller can warn the cashier.
func (c *Cart) ApplyDiscount(lineID string, amount decimal.Decimal, s Settings) (decimal.Decimal, bool, error) {
	i, ok := c.find(lineID)
	if !ok {
		return decimal.Zero, false, ErrLineNotFound
	}

	if amount.IsNegative() {
		amount = decimal.Zero
	}

	max := c.Lines[i].maxDiscount(s)
	clamped := false
	if amount.GreaterThan(max) {
		amount = max
		clamped = true
	}

	c.Lines[i].Discount = amount
	c.touch()
	return amount, clamped, nil
}

// SetCustomer attaches (or detaches, with nil) the customer for this sale.
func (c *Cart) SetCustomer(cust *Customer) {
	c.Customer = cust
	c.touch()
}

// SetPayment records the pending payment details.
func (c *Cart) SetPayment(p Payment) {
	c.Payment = p
	c.touch()
}

// Clear empties the cart and resets customer and payment state.
func (c *Cart) Clear() {
	c.Lines = nil
	c.Customer = nil
	c.Payment = Payment{}
	c.touch()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Line returns a copy of the line with the given ID.
func (c *Cart) Line(lineID string) (Line, bool) {
	i, ok := c.find(lineID)
	if !ok {
		return Line{}, false
	}
	return c.Lines[i], true
}

func (c *Cart) find(lineID string) (int, bool) {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return i, true
		}
	}
	return 0, false
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

// rescaleDiscount keeps the discount percentage constant across a quantity
// change: newDiscount = newTotal × (oldDiscount / oldTotal).
func rescaleDiscount(discount, oldTotal, newTotal decimal.Decimal) decimal.Decimal {
	if discount.IsZero() || oldTotal.IsZero() {
		return discount
	}
	return newTotal.Mul(discount).Div(oldTotal).Round(2)
}
