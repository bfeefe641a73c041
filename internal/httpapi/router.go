package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/middleware"
)

func NewRouter(h *Handler, corsAllowOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.CORS(corsAllowOrigins))

	r.Get("/health", h.Health)

	r.Route("/api/till/sessions", func(r chi.Router) {
		r.Post("/", h.OpenSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)
			r.Post("/items", h.AddItem)
			r.Patch("/items/{lineId}", h.UpdateQuantity)
			r.Delete("/items/{lineId}", h.RemoveItem)
			r.Post("/items/{lineId}/discount", h.ApplyDiscount)
			r.Put("/customer", h.SetCustomer)
			r.Put("/payment", h.SetPayment)
			r.Post("/checkout", h.Checkout)
		})
	})

	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/products", h.SearchProducts)
		r.Get("/barcode/{code}", h.LookupBarcode)
	})

	r.Get("/api/customers", h.SearchCustomers)

	return r
}
