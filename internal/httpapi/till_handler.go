package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/cart"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/catalog"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/sale"
	"github.com/kimutaiwycliff/shop-website-pos-sub000/internal/till"
)

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Cashier string `json:"cashier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Cashier == "" {
		writeError(w, http.StatusBadRequest, "missing cashier")
		return
	}

	s, err := h.registry.Open(r.Context(), body.Cashier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open session")
		return
	}
	writeJSON(w, http.StatusCreated, h.view(s))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Mu.Lock()
	defer s.Mu.Unlock()
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if err := h.registry.Close(r.Context(), id); err != nil {
		if errors.Is(err, till.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to close session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body struct {
		ProductID    string `json:"productId"`
		VariantIndex *int   `json:"variantIndex"`
		Barcode      string `json:"barcode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var (
		product      catalog.Product
		variantIndex = catalog.NoVariant
	)
	switch {
	case body.Barcode != "":
		p := h.catalog.FindByBarcode(r.Context(), body.Barcode)
		if p == nil {
			writeError(w, http.StatusNotFound, "no product matches barcode")
			return
		}
		product = *p
		if idx, ok := p.MatchesBarcode(body.Barcode); ok {
			variantIndex = idx
		}
	case body.ProductID != "":
		p, ok := h.catalog.Get(body.ProductID)
		if !ok {
			writeError(w, http.StatusNotFound, "product not in catalog")
			return
		}
		product = p
		if body.VariantIndex != nil {
			variantIndex = *body.VariantIndex
		}
	default:
		writeError(w, http.StatusBadRequest, "productId or barcode required")
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	if err := s.Cart.AddItem(product, variantIndex); err != nil {
		h.writeCartError(w, err)
		return
	}
	h.registry.Snapshot(r.Context(), s)
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID := chi.URLParam(r, "lineId")

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	if err := s.Cart.UpdateQuantity(lineID, body.Quantity); err != nil {
		h.writeCartError(w, err)
		return
	}
	h.registry.Snapshot(r.Context(), s)
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID := chi.URLParam(r, "lineId")

	s.Mu.Lock()
	defer s.Mu.Unlock()

	if err := s.Cart.RemoveItem(lineID); err != nil {
		h.writeCartError(w, err)
		return
	}
	h.registry.Snapshot(r.Context(), s)
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	lineID := chi.URLParam(r, "lineId")

	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	applied, clamped, err := s.Cart.ApplyDiscount(lineID, body.Amount, h.cartSettings)
	if err != nil {
		h.writeCartError(w, err)
		return
	}
	h.registry.Snapshot(r.Context(), s)

	resp := struct {
		sessionView
		Applied decimal.Decimal `json:"applied"`
		Clamped bool            `json:"clamped"`
		Warning string          `json:"warning,omitempty"`
	}{sessionView: h.view(s), Applied: applied, Clamped: clamped}
	if clamped {
		resp.Warning = "discount reduced to the line's maximum"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body cart.Customer
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Name == "" && body.ID == "" {
		writeError(w, http.StatusBadRequest, "customer name or id required")
		return
	}

	// A walk-in customer without a record is registered upstream first so
	// the order can reference them.
	if body.ID == "" {
		created, err := h.customers.Create(r.Context(), body)
		if err != nil {
			h.logger.Printf("httpapi: create customer: %v", err)
			writeError(w, http.StatusBadGateway, "failed to register customer")
			return
		}
		body = created
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	s.Cart.SetCustomer(&body)
	h.registry.Snapshot(r.Context(), s)
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) SetPayment(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var body cart.Payment
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	switch body.Method {
	case cart.PaymentCash, cart.PaymentCard, cart.PaymentMobile:
	default:
		writeError(w, http.StatusBadRequest, "unknown payment method")
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	s.Cart.SetPayment(body)
	h.registry.Snapshot(r.Context(), s)
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Mu.Lock()
	defer s.Mu.Unlock()

	res, err := h.committer.Commit(r.Context(), sale.SessionRef{ID: s.ID, Cashier: s.Cashier}, &s.Cart)
	if err != nil {
		switch {
		case errors.Is(err, sale.ErrEmptyCart),
			errors.Is(err, sale.ErrNoPaymentMethod),
			errors.Is(err, sale.ErrInsufficientPayment):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Printf("httpapi: checkout session %s: %v", s.ID, err)
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":      err.Error(),
				"failedStep": res.FailedStep,
				"state":      res.State,
			})
		}
		return
	}

	h.registry.Snapshot(r.Context(), s)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*till.Session, bool) {
	id := chi.URLParam(r, "sessionId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sessionId")
		return nil, false
	}
	s, err := h.registry.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, till.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return nil, false
	}
	return s, true
}

func (h *Handler) writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrOutOfStock), errors.Is(err, cart.ErrInsufficientStock):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
