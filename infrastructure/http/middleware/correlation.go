package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/joestar02/fleetdesk/domain"
)

const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationIDMiddleware ensures every request carries a short correlation
// id, echoed in the response header and attached to the request context so
// log lines and audit events can be joined.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(CorrelationIDHeader)
		if cid == "" {
			cid = generateCorrelationID()
		}
		w.Header().Set(CorrelationIDHeader, cid)
		ctx := domain.WithCorrelationID(r.Context(), cid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// generateCorrelationID returns 8 hex characters, short enough to quote in a
// support ticket.
func generateCorrelationID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}
