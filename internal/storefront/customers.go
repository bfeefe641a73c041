package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/cart"
)

type CustomersClient struct{ c *Client }

func NewCustomersClient(c *Client) *CustomersClient { return &CustomersClient{c: c} }

type customerList struct {
	Docs []cart.Customer `json:"docs"`
}

type customerCreated struct {
	Doc cart.Customer `json:"doc"`
}

// Search fuzzy-matches q against name, phone and email.
func (cc *CustomersClient) Search(ctx context.Context, q string, limit int) ([]cart.Customer, error) {
	if limit <= 0 {
		limit = 10
	}
	qv := url.Values{}
	qv.Set("limit", strconv.Itoa(limit))
	qv.Set("where[or][0][name][like]", q)
	qv.Set("where[or][1][phone][like]", q)
	qv.Set("where[or][2][email][like]", q)

	var out customerList
	if err := cc.c.do(ctx, http.MethodGet, "/api/customers", qv, nil, &out); err != nil {
		return nil, err
	}
	return out.Docs, nil
}

// Create registers a walk-in customer captured at the till.
func (cc *CustomersClient) Create(ctx context.Context, cust cart.Customer) (cart.Customer, error) {
	var out customerCreated
	if err := cc.c.do(ctx, http.MethodPost, "/api/customers", nil, cust, &out); err != nil {
		return cart.Customer{}, err
	}
	return out.Doc, nil
}

// Update patches an existing customer record.
func (cc *CustomersClient) Update(ctx context.Context, cust cart.Customer) error {
	return cc.c.do(ctx, http.MethodPatch, "/api/customers/"+cust.ID, nil, cust, nil)
}
