package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/cart"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/catalog"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/pricing"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/sale"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/till"
)

// SaleCommitter runs the checkout pipeline for a session's cart.
type SaleCommitter interface {
	Commit(ctx context.Context, ref sale.SessionRef, crt *cart.Cart) (sale.Result, error)
}

// CustomerDirectory looks up and registers storefront customers.
type CustomerDirectory interface {
	Search(ctx context.Context, q string, limit int) ([]cart.Customer, error)
	Create(ctx context.Context, cust cart.Customer) (cart.Customer, error)
}

// Catalog is the slice of the catalog cache the handlers use.
type Catalog interface {
	Search(ctx context.Context, query string) ([]catalog.Product, error)
	FindByBarcode(ctx context.Context, code string) *catalog.Product
	Get(id string) (catalog.Product, bool)
}

type Handler struct {
	registry  *till.Registry
	catalog   Catalog
	customers CustomerDirectory
	committer SaleCommitter

	cartSettings    cart.Settings
	pricingSettings pricing.Settings
	logger          *log.Logger
}

func NewHandler(
	registry *till.Registry,
	cat Catalog,
	customers CustomerDirectory,
	committer SaleCommitter,
	cartSettings cart.Settings,
	pricingSettings pricing.Settings,
	logger *log.Logger,
) *Handler {
	return &Handler{
		registry:        registry,
		catalog:         cat,
		customers:       customers,
		committer:       committer,
		cartSettings:    cartSettings,
		pricingSettings: pricingSettings,
		logger:          logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// sessionView is the JSON shape returned after every cart mutation so the
// till UI can rerender totals without a second round trip.
type sessionView struct {
	ID       string         `json:"id"`
	Cashier  string         `json:"cashier"`
	OpenedAt time.Time      `json:"openedAt"`
	Cart     cart.Cart      `json:"cart"`
	Totals   pricing.Totals `json:"totals"`
}

func (h *Handler) view(s *till.Session) sessionView {
	return sessionView{
		ID:       s.ID,
		Cashier:  s.Cashier,
		OpenedAt: s.OpenedAt,
		Cart:     s.Cart,
		Totals:   pricing.Compute(&s.Cart, h.pricingSettings),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
