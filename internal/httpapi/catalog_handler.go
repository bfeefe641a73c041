package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	products, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		h.logger.Printf("httpapi: product search %q: %v", query, err)
		writeError(w, http.StatusBadGateway, "catalog search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"docs": products})
}

func (h *Handler) LookupBarcode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing barcode")
		return
	}

	p := h.catalog.FindByBarcode(r.Context(), code)
	if p == nil {
		writeError(w, http.StatusNotFound, "no product matches barcode")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing q")
		return
	}

	customers, err := h.customers.Search(r.Context(), q, 10)
	if err != nil {
		h.logger.Printf("httpapi: customer search %q: %v", q, err)
		writeError(w, http.StatusBadGateway, "customer search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"docs": customers})
}
