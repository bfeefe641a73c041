package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type OrdersClient struct{ c *Client }

func NewOrdersClient(c *Client) *OrdersClient { return &OrdersClient{c: c} }

type OrderItem struct {
	Product    string          `json:"product"`
	VariantSKU string          `json:"variantSku,omitempty"`
	Title      string          `json:"title"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Discount   decimal.Decimal `json:"discount"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
}

type Address struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// InStoreAddress is the synthetic shipping address stamped on POS orders;
// the orders collection requires one even though nothing ships.
func InStoreAddress() Address {
	return Address{Line1: "In-Store Purchase", City: "In-Store", Country: "KE"}
}

type OrderInput struct {
	Customer        string          `json:"customer,omitempty"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxRate         decimal.Decimal `json:"taxRate"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	PaymentMethod   string          `json:"paymentMethod"`
	Source          string          `json:"source"`
	ShippingAddress Address         `json:"shippingAddress"`
}

type OrderRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type orderCreated struct {
	Doc OrderRecord `json:"doc"`
}

// Create posts a new order document.
func (oc *OrdersClient) Create(ctx context.Context, in OrderInput) (OrderRecord, error) {
	var out orderCreated
	if err := oc.c.do(ctx, http.MethodPost, "/api/orders", nil, in, &out); err != nil {
		return OrderRecord{}, err
	}
	return out.Doc, nil
}
