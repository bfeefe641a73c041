package storefront

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

type TransactionsClient struct{ c *Client }

func NewTransactionsClient(c *Client) *TransactionsClient { return &TransactionsClient{c: c} }

const TransactionCompleted = "completed"

type TransactionInput struct {
	Order         string          `json:"order"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
}

type TransactionRecord struct {
	ID string `json:"id"`
}

type transactionCreated struct {
	Doc TransactionRecord `json:"doc"`
}

// Create posts a completed payment transaction referencing an order.
func (tc *TransactionsClient) Create(ctx context.Context, in TransactionInput) (TransactionRecord, error) {
	var out transactionCreated
	if err := tc.c.do(ctx, http.MethodPost, "/api/transactions", nil, in, &out); err != nil {
		return TransactionRecord{}, err
	}
	return out.Doc, nil
}
