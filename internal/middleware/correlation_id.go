package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderCorrelationID carries the request's correlation id between the till,
// the browser and the storefront.
const HeaderCorrelationID = "X-Correlation-Id"

type ctxKey int

const ctxCorrelationID ctxKey = iota

// CorrelationID assigns a correlation id to every request, reusing the
// caller's when present. The id is echoed on the response and stored on the
// context so storefront calls can propagate it upstream.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}
		w.Header().Set(HeaderCorrelationID, cid)

		next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), cid)))
	})
}

// WithCorrelationID returns a context carrying the given correlation id.
func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, ctxCorrelationID, cid)
}

// GetCorrelationID returns the correlation id on the context, or "".
func GetCorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(ctxCorrelationID).(string)
	return cid
}
