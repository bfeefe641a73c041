// Package pricing derives the money figures for a till session. Everything
// here is a pure function of cart state and settings so the numbers can be
// recomputed after every cart mutation.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/cart"
)

// Settings holds the configured tax behaviour of the store.
type Settings struct {
	// DefaultTaxRate is the percent applied when the session has no override.
	DefaultTaxRate float64
	// TaxIncluded means prices already carry tax; tax amount is then zero.
	TaxIncluded bool
}

// Totals is the derived money state of a cart.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Total     decimal.Decimal `json:"total"`
	// Change is amountPaid − total. Only meaningful for cash payments;
	// negative change blocks sale completion.
	Change decimal.Decimal `json:"change"`
}

// Compute calculates subtotal, tax, total and change for the cart.
func Compute(c *cart.Cart, s Settings) Totals {
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		subtotal = subtotal.Add(l.Total().Sub(l.Discount))
	}

	rate := s.DefaultTaxRate
	if c.Payment.TaxOverride != nil {
		rate = *c.Payment.TaxOverride
	}
	taxRate := decimal.NewFromFloat(rate)

	taxAmount := decimal.Zero
	if !s.TaxIncluded {
		taxAmount = subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	}

	total := subtotal.Add(taxAmount)

	return Totals{
		Subtotal:  subtotal,
		TaxRate:   taxRate,
		TaxAmount: taxAmount,
		Total:     total,
		Change:    c.Payment.AmountPaid.Sub(total),
	}
}
