// Package journal is the till's local audit trail. Every committed sale is
// appended here after the storefront accepts it, giving reconciliation jobs a
// record to diff against the storefront's stock counters.
package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EntryLine struct {
	ProductID  string
	Title      string
	SKU        string
	VariantSKU string
	Quantity   int
	UnitPrice  decimal.Decimal
	Discount   decimal.Decimal
}

type Entry struct {
	ID            string
	SessionID     string
	Cashier       string
	OrderID       string
	TransactionID string
	CustomerID    string
	Lines         []EntryLine
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	Change        decimal.Decimal
	PaymentMethod string
	Currency      string
	CommittedAt   time.Time
}

// Recorder persists committed sales. A nil Recorder on the committer simply
// disables journaling.
type Recorder interface {
	Append(ctx context.Context, e Entry) error
	ListSince(ctx context.Context, since time.Time) ([]Entry, error)
}
