package catalog

import (
	"context"
	"log"
	"sync"
)

// DefaultLimit caps how many products one search pulls from the storefront.
const DefaultLimit = 100

// Fetcher is the upstream product lookup used by the cache.
// Implemented by storefront.ProductsClient.
type Fetcher interface {
	List(ctx context.Context, query string, limit int) ([]Product, error)
	FindByBarcode(ctx context.Context, code string) (*Product, error)
}

// Cache holds the till's working set of products. Reads during a sale hit the
// cached list; Search and Refresh go upstream with a bounded retry and fall
// back to the built-in sample list when the storefront is unreachable.
type Cache struct {
	fetcher Fetcher
	retry   RetryPolicy
	logger  *log.Logger

	mu        sync.RWMutex
	products  []Product
	lastQuery string
}

func NewCache(fetcher Fetcher, retry RetryPolicy, logger *log.Logger) *Cache {
	return &Cache{fetcher: fetcher, retry: retry, logger: logger}
}

// Search fetches up to DefaultLimit published products matching query and
// replaces the cached list. When every attempt fails a warm cache keeps its
// current list, and a cold cache falls back to the sample list, so the till
// stays usable offline either way.
func (c *Cache) Search(ctx context.Context, query string) ([]Product, error) {
	var fetched []Product
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		products, err := c.fetcher.List(ctx, query, DefaultLimit)
		if err != nil {
			c.logger.Printf("catalog: search %q failed: %v", query, err)
			return err
		}
		fetched = products
		return nil
	})
	if err != nil {
		c.mu.RLock()
		cached := make([]Product, len(c.products))
		copy(cached, c.products)
		c.mu.RUnlock()

		if len(cached) > 0 {
			c.logger.Printf("catalog: search %q exhausted retries, keeping %d cached products: %v", query, len(cached), err)
			return cached, nil
		}
		c.logger.Printf("catalog: search %q exhausted retries, serving sample products: %v", query, err)
		fetched = sampleProducts()
	}

	c.mu.Lock()
	c.products = fetched
	c.lastQuery = query
	c.mu.Unlock()

	return fetched, nil
}

// Refresh re-runs the last search. Called after a committed sale so stock
// numbers on screen match what was just written upstream.
func (c *Cache) Refresh(ctx context.Context) ([]Product, error) {
	c.mu.RLock()
	query := c.lastQuery
	c.mu.RUnlock()
	return c.Search(ctx, query)
}

// FindByBarcode resolves an exact barcode to a product. The cached list is
// checked first; on a miss the storefront is queried once. Lookup failures
// are swallowed, a scan that resolves nothing returns nil.
func (c *Cache) FindByBarcode(ctx context.Context, code string) *Product {
	if code == "" {
		return nil
	}

	c.mu.RLock()
	for i := range c.products {
		if _, ok := c.products[i].MatchesBarcode(code); ok {
			p := c.products[i]
			c.mu.RUnlock()
			return &p
		}
	}
	c.mu.RUnlock()

	p, err := c.fetcher.FindByBarcode(ctx, code)
	if err != nil {
		c.logger.Printf("catalog: barcode lookup %q failed: %v", code, err)
		return nil
	}
	return p
}

// Get returns a product from the cached list by ID.
func (c *Cache) Get(id string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.products {
		if c.products[i].ID == id {
			return c.products[i], true
		}
	}
	return Product{}, false
}

// Products returns a copy of the cached list.
func (c *Cache) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}
