package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/shopspring/decimal"
)

type fakeFetcher struct {
	products []Product
	listErrs []error // consumed per List call; nil entry means success
	listCnt  int

	barcodeProduct *Product
	barcodeErr     error
}

func (f *fakeFetcher) List(ctx context.Context, query string, limit int) ([]Product, error) {
	f.listCnt++
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if query == "" {
		return f.products, nil
	}
	var out []Product
	for _, p := range f.products {
		if p.Title == query {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeFetcher) FindByBarcode(ctx context.Context, code string) (*Product, error) {
	if f.barcodeErr != nil {
		return nil, f.barcodeErr
	}
	return f.barcodeProduct, nil
}

func immediateRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3}
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func someProducts() []Product {
	return []Product{
		{ID: "p1", Title: "Mug", Barcode: "111", Price: decimal.NewFromInt(800), InStock: 4},
		{ID: "p2", Title: "Shirt", Price: decimal.NewFromInt(1500), Variants: []Variant{
			{SKU: "S-BLK", Barcode: "222", Price: decimal.NewFromInt(1500), Stock: 2},
		}},
	}
}

func TestSearchCachesResults(t *testing.T) {
	f := &fakeFetcher{products: someProducts()}
	c := NewCache(f, immediateRetry(), discard())

	got, err := c.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}

	if _, ok := c.Get("p1"); !ok {
		t.Fatalf("p1 missing from cache")
	}
	if _, ok := c.Get("p3"); ok {
		t.Fatalf("unexpected p3 in cache")
	}
}

func TestSearchRetriesTransientFailures(t *testing.T) {
	f := &fakeFetcher{
		products: someProducts(),
		listErrs: []error{errors.New("transient"), errors.New("transient"), nil},
	}
	c := NewCache(f, immediateRetry(), discard())

	got, err := c.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if f.listCnt != 3 {
		t.Fatalf("expected 3 attempts, got %d", f.listCnt)
	}
	if len(got) != 2 {
		t.Fatalf("expected fetched products after retry, got %d", len(got))
	}
}

func TestSearchFallsBackToSamplesWhenCold(t *testing.T) {
	f := &fakeFetcher{
		listErrs: []error{errors.New("down"), errors.New("down"), errors.New("down")},
	}
	c := NewCache(f, immediateRetry(), discard())

	got, err := c.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("fallback must not error: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("expected sample products on fallback")
	}
	if got[0].ID != sampleProducts()[0].ID {
		t.Fatalf("expected sample list, got %q", got[0].ID)
	}
}

func TestSearchKeepsWarmCacheOnFailure(t *testing.T) {
	// An outage right after a sale must not swap real products for samples:
	// the post-commit refresh keeps the list the cashier was selling from.
	f := &fakeFetcher{products: someProducts()}
	c := NewCache(f, immediateRetry(), discard())

	if _, err := c.Search(context.Background(), ""); err != nil {
		t.Fatalf("warmup search: %v", err)
	}

	f.listErrs = []error{errors.New("down"), errors.New("down"), errors.New("down")}
	got, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" {
		t.Fatalf("expected cached products kept, got %+v", got)
	}
	if _, ok := c.Get("p1"); !ok {
		t.Fatalf("p1 evicted from cache by failed refresh")
	}
	if _, ok := c.Get(sampleProducts()[0].ID); ok {
		t.Fatalf("sample products leaked into a warm cache")
	}
}

func TestRefreshReusesLastQuery(t *testing.T) {
	f := &fakeFetcher{products: someProducts()}
	c := NewCache(f, immediateRetry(), discard())

	if _, err := c.Search(context.Background(), "Mug"); err != nil {
		t.Fatalf("search: %v", err)
	}
	got, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Mug" {
		t.Fatalf("refresh did not reuse query: %+v", got)
	}
}

func TestFindByBarcode(t *testing.T) {
	upstream := Product{ID: "p9", Title: "Upstream", Barcode: "999"}

	t.Run("served from cache", func(t *testing.T) {
		f := &fakeFetcher{products: someProducts()}
		c := NewCache(f, immediateRetry(), discard())
		if _, err := c.Search(context.Background(), ""); err != nil {
			t.Fatalf("search: %v", err)
		}

		p := c.FindByBarcode(context.Background(), "222")
		if p == nil || p.ID != "p2" {
			t.Fatalf("expected variant barcode hit on p2, got %+v", p)
		}
	})

	t.Run("falls through to upstream", func(t *testing.T) {
		f := &fakeFetcher{barcodeProduct: &upstream}
		c := NewCache(f, immediateRetry(), discard())

		p := c.FindByBarcode(context.Background(), "999")
		if p == nil || p.ID != "p9" {
			t.Fatalf("expected upstream product, got %+v", p)
		}
	})

	t.Run("lookup failure yields nil", func(t *testing.T) {
		f := &fakeFetcher{barcodeErr: errors.New("down")}
		c := NewCache(f, immediateRetry(), discard())

		if p := c.FindByBarcode(context.Background(), "999"); p != nil {
			t.Fatalf("expected nil on failure, got %+v", p)
		}
	})

	t.Run("empty code yields nil", func(t *testing.T) {
		c := NewCache(&fakeFetcher{}, immediateRetry(), discard())
		if p := c.FindByBarcode(context.Background(), ""); p != nil {
			t.Fatalf("expected nil on empty code")
		}
	})
}
