package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/catalog"
)

type ProductsClient struct{ c *Client }

func NewProductsClient(c *Client) *ProductsClient { return &ProductsClient{c: c} }

type productList struct {
	Docs []catalog.Product `json:"docs"`
}

// List fetches published products, optionally filtered by a title substring.
func (pc *ProductsClient) List(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("where[status][equals]", catalog.StatusPublished)
	if query != "" {
		q.Set("where[title][like]", query)
	}

	var out productList
	if err := pc.c.do(ctx, http.MethodGet, "/api/products", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Docs, nil
}

// FindByBarcode resolves an exact barcode against product and variant
// barcodes. Returns nil when nothing matches.
func (pc *ProductsClient) FindByBarcode(ctx context.Context, code string) (*catalog.Product, error) {
	q := url.Values{}
	q.Set("limit", "1")
	q.Set("where[or][0][barcode][equals]", code)
	q.Set("where[or][1][variants.barcode][equals]", code)

	var out productList
	if err := pc.c.do(ctx, http.MethodGet, "/api/products", q, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Docs) == 0 {
		return nil, nil
	}
	return &out.Docs[0], nil
}

// Get fetches one product by ID.
func (pc *ProductsClient) Get(ctx context.Context, id string) (catalog.Product, error) {
	var out catalog.Product
	if err := pc.c.do(ctx, http.MethodGet, "/api/products/"+id, nil, nil, &out); err != nil {
		return catalog.Product{}, err
	}
	return out, nil
}

// UpdateStock patches the product-level stock count.
func (pc *ProductsClient) UpdateStock(ctx context.Context, id string, inStock int) error {
	body := map[string]int{"inStock": inStock}
	return pc.c.do(ctx, http.MethodPatch, "/api/products/"+id, nil, body, nil)
}

// UpdateVariants replaces the product's variant array. The storefront has no
// per-variant endpoint, so a variant stock change rewrites the whole array.
func (pc *ProductsClient) UpdateVariants(ctx context.Context, id string, variants []catalog.Variant) error {
	body := map[string][]catalog.Variant{"variants": variants}
	return pc.c.do(ctx, http.MethodPatch, "/api/products/"+id, nil, body, nil)
}

// MarkOutOfStock flips the product status once its last unit is sold.
func (pc *ProductsClient) MarkOutOfStock(ctx context.Context, id string) error {
	body := map[string]string{"status": catalog.StatusOutOfStock}
	return pc.c.do(ctx, http.MethodPatch, "/api/products/"+id, nil, body, nil)
}
