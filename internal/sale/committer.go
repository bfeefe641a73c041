// Package sale turns a till cart into storefront records. The commit is a
// sequence of independent REST writes, not a transaction: the storefront
// offers no cross-collection atomicity, so a failure partway through leaves
// earlier stock decrements applied.
package sale

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/cart"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/catalog"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/journal"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/pricing"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/receipt"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/storefront"
)

// State of one checkout attempt.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrNoPaymentMethod     = errors.New("no payment method selected")
	ErrInsufficientPayment = errors.New("amount paid does not cover the total")
)

// ProductWriter is the slice of the storefront products API the committer
// needs to push stock changes.
type ProductWriter interface {
	UpdateStock(ctx context.Context, id string, inStock int) error
	UpdateVariants(ctx context.Context, id string, variants []catalog.Variant) error
	MarkOutOfStock(ctx context.Context, id string) error
}

type OrderCreator interface {
	Create(ctx context.Context, in storefront.OrderInput) (storefront.OrderRecord, error)
}

type TransactionCreator interface {
	Create(ctx context.Context, in storefront.TransactionInput) (storefront.TransactionRecord, error)
}

type CatalogRefresher interface {
	Refresh(ctx context.Context) ([]catalog.Product, error)
}

type EventPublisher interface {
	PublishSaleCompleted(ctx context.Context, e journal.Entry) error
}

// Config carries the store identity and pricing behaviour baked into every
// committed sale.
type Config struct {
	Pricing   pricing.Settings
	Currency  string
	StoreName string
}

// SessionRef identifies the till session a commit belongs to.
type SessionRef struct {
	ID      string
	Cashier string
}

// Committer runs checkout attempts. Recorder, publisher and refresher are
// optional; a nil value disables that post-commit side effect.
type Committer struct {
	products     ProductWriter
	orders       OrderCreator
	transactions TransactionCreator
	refresher    CatalogRefresher
	recorder     journal.Recorder
	publisher    EventPublisher
	logger       *log.Logger
	cfg          Config
}

func NewCommitter(
	products ProductWriter,
	orders OrderCreator,
	transactions TransactionCreator,
	refresher CatalogRefresher,
	recorder journal.Recorder,
	publisher EventPublisher,
	logger *log.Logger,
	cfg Config,
) *Committer {
	return &Committer{
		products:     products,
		orders:       orders,
		transactions: transactions,
		refresher:    refresher,
		recorder:     recorder,
		publisher:    publisher,
		logger:       logger,
		cfg:          cfg,
	}
}

// Result reports how a checkout attempt ended.
type Result struct {
	State         State          `json:"state"`
	SaleID        string         `json:"saleId,omitempty"`
	OrderID       string         `json:"orderId,omitempty"`
	TransactionID string         `json:"transactionId,omitempty"`
	Totals        pricing.Totals `json:"totals"`
	Receipt       string         `json:"receipt,omitempty"`
	FailedStep    string         `json:"failedStep,omitempty"`
}

// Commit runs the full sale pipeline for the session's cart:
// stock patches per line, order create, transaction create, receipt, then
// journal/event/refresh side effects and cart clear. On failure the cart is
// left intact so the cashier can retry; stock decrements already applied are
// not rolled back.
func (c *Committer) Commit(ctx context.Context, ref SessionRef, crt *cart.Cart) (Result, error) {
	totals := pricing.Compute(crt, c.cfg.Pricing)
	res := Result{State: StateIdle, Totals: totals}

	if crt.IsEmpty() {
		return res, ErrEmptyCart
	}
	if crt.Payment.Method == "" {
		return res, ErrNoPaymentMethod
	}
	if crt.Payment.Method == cart.PaymentCash && totals.Change.IsNegative() {
		return res, ErrInsufficientPayment
	}

	res.State = StateSubmitting

	// Step 1: stock decrements, one PATCH per line, sequential.
	for _, ln := range crt.Lines {
		if err := c.decrementStock(ctx, ln); err != nil {
			res.State = StateFailed
			res.FailedStep = fmt.Sprintf("stock update for %q", ln.Product.Title)
			return res, fmt.Errorf("update stock for %s: %w", ln.Product.Title, err)
		}
	}

	// Step 2: order record.
	order, err := c.orders.Create(ctx, c.orderInput(crt, totals))
	if err != nil {
		res.State = StateFailed
		res.FailedStep = "order creation"
		return res, fmt.Errorf("create order: %w", err)
	}
	res.OrderID = order.ID

	// Step 3: transaction record.
	tx, err := c.transactions.Create(ctx, storefront.TransactionInput{
		Order:         order.ID,
		Amount:        totals.Total,
		Currency:      c.cfg.Currency,
		PaymentMethod: string(crt.Payment.Method),
		Status:        storefront.TransactionCompleted,
	})
	if err != nil {
		res.State = StateFailed
		res.FailedStep = "transaction creation"
		return res, fmt.Errorf("create transaction: %w", err)
	}
	res.TransactionID = tx.ID

	entry := c.journalEntry(ref, crt, totals, order.ID, tx.ID)
	res.SaleID = entry.ID

	// Step 4: receipt side effect, logged only.
	res.Receipt = receipt.Render(c.cfg.StoreName, entry)
	c.logger.Printf("sale %s: receipt\n%s", entry.ID, res.Receipt)

	// Post-commit side effects are best effort: the sale stands even when
	// the journal, broker or catalog refresh is down.
	if c.recorder != nil {
		if err := c.recorder.Append(ctx, entry); err != nil {
			c.logger.Printf("sale %s: journal append failed: %v", entry.ID, err)
		}
	}
	if c.publisher != nil {
		if err := c.publisher.PublishSaleCompleted(ctx, entry); err != nil {
			c.logger.Printf("sale %s: publish failed: %v", entry.ID, err)
		}
	}

	// Step 5: refresh the catalog, then clear the cart.
	if c.refresher != nil {
		if _, err := c.refresher.Refresh(ctx); err != nil {
			c.logger.Printf("sale %s: catalog refresh failed: %v", entry.ID, err)
		}
	}
	crt.Clear()

	res.State = StateCommitted
	return res, nil
}

// decrementStock writes the post-sale stock for one line. A variant line
// rewrites the variant array; a plain line patches the product counter. When
// the remaining stock hits zero the product is also flipped to out-of-stock.
func (c *Committer) decrementStock(ctx context.Context, ln cart.Line) error {
	available := ln.Product.AvailableStock(ln.VariantIndex)
	newStock := available - ln.Quantity
	if newStock < 0 {
		newStock = 0
	}

	if ln.VariantIndex == catalog.NoVariant {
		if err := c.products.UpdateStock(ctx, ln.Product.ID, newStock); err != nil {
			return err
		}
	} else {
		variants := make([]catalog.Variant, len(ln.Product.Variants))
		copy(variants, ln.Product.Variants)
		variants[ln.VariantIndex].Stock = newStock
		if err := c.products.UpdateVariants(ctx, ln.Product.ID, variants); err != nil {
			return err
		}
	}

	if newStock == 0 {
		if err := c.products.MarkOutOfStock(ctx, ln.Product.ID); err != nil {
			return err
		}
	}
	return nil
}

func (c *Committer) orderInput(crt *cart.Cart, totals pricing.Totals) storefront.OrderInput {
	in := storefront.OrderInput{
		Subtotal:        totals.Subtotal,
		TaxRate:         totals.TaxRate,
		TaxAmount:       totals.TaxAmount,
		Total:           totals.Total,
		Currency:        c.cfg.Currency,
		PaymentMethod:   string(crt.Payment.Method),
		Source:          "pos",
		ShippingAddress: storefront.InStoreAddress(),
	}
	if crt.Customer != nil {
		in.Customer = crt.Customer.ID
	}
	for _, ln := range crt.Lines {
		in.Items = append(in.Items, storefront.OrderItem{
			Product:    ln.Product.ID,
			VariantSKU: variantSKU(ln),
			Title:      ln.Product.Title,
			Quantity:   ln.Quantity,
			UnitPrice:  ln.UnitPrice,
			Discount:   ln.Discount,
			LineTotal:  ln.Total(),
		})
	}
	return in
}

func (c *Committer) journalEntry(ref SessionRef, crt *cart.Cart, totals pricing.Totals, orderID, txID string) journal.Entry {
	e := journal.Entry{
		ID:            uuid.NewString(),
		SessionID:     ref.ID,
		Cashier:       ref.Cashier,
		OrderID:       orderID,
		TransactionID: txID,
		Subtotal:      totals.Subtotal,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		AmountPaid:    crt.Payment.AmountPaid,
		Change:        totals.Change,
		PaymentMethod: string(crt.Payment.Method),
		Currency:      c.cfg.Currency,
		CommittedAt:   time.Now().UTC(),
	}
	if crt.Customer != nil {
		e.CustomerID = crt.Customer.ID
	}
	for _, ln := range crt.Lines {
		e.Lines = append(e.Lines, journal.EntryLine{
			ProductID:  ln.Product.ID,
			Title:      ln.Product.Title,
			SKU:        ln.Product.SKU,
			VariantSKU: variantSKU(ln),
			Quantity:   ln.Quantity,
			UnitPrice:  ln.UnitPrice,
			Discount:   ln.Discount,
		})
	}
	return e
}

func variantSKU(ln cart.Line) string {
	if ln.VariantIndex == catalog.NoVariant || ln.VariantIndex >= len(ln.Product.Variants) {
		return ""
	}
	return ln.Product.Variants[ln.VariantIndex].SKU
}
