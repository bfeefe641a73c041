// Package receipt renders the plain-text till receipt. There is no printer
// protocol; the rendered receipt is returned to the caller and logged.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/journal"
)

const width = 40

// Render formats a committed sale as a fixed-width receipt.
func Render(storeName string, e journal.Entry) string {
	var b strings.Builder

	line := strings.Repeat("-", width)
	b.WriteString(center(storeName) + "\n")
	b.WriteString(center("SALE RECEIPT") + "\n")
	b.WriteString(line + "\n")
	b.WriteString(fmt.Sprintf("Sale:    %s\n", e.ID))
	b.WriteString(fmt.Sprintf("Order:   %s\n", e.OrderID))
	b.WriteString(fmt.Sprintf("Cashier: %s\n", e.Cashier))
	b.WriteString(fmt.Sprintf("Date:    %s\n", e.CommittedAt.Format(time.RFC822)))
	b.WriteString(line + "\n")

	for _, ln := range e.Lines {
		title := ln.Title
		if ln.VariantSKU != "" {
			title += " (" + ln.VariantSKU + ")"
		}
		b.WriteString(truncate(title) + "\n")
		gross := ln.UnitPrice.Mul(decimal.NewFromInt(int64(ln.Quantity)))
		b.WriteString(row(
			fmt.Sprintf("  %d x %s", ln.Quantity, money(ln.UnitPrice, e.Currency)),
			money(gross, e.Currency),
		))
		if ln.Discount.IsPositive() {
			b.WriteString(row("  discount", "-"+money(ln.Discount, e.Currency)))
		}
	}

	b.WriteString(line + "\n")
	b.WriteString(row("Subtotal", money(e.Subtotal, e.Currency)))
	b.WriteString(row("Tax", money(e.TaxAmount, e.Currency)))
	b.WriteString(row("TOTAL", money(e.Total, e.Currency)))
	b.WriteString(row("Paid ("+e.PaymentMethod+")", money(e.AmountPaid, e.Currency)))
	if e.PaymentMethod == "cash" {
		b.WriteString(row("Change", money(e.Change, e.Currency)))
	}
	b.WriteString(line + "\n")
	b.WriteString(center("Thank you!") + "\n")

	return b.String()
}

func money(d decimal.Decimal, currency string) string {
	return currency + " " + d.StringFixed(2)
}

func row(left, right string) string {
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right + "\n"
}

func center(s string) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
