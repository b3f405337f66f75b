package middleware

import (
	"net/http"
	"strings"

	"github.com/joestar02/fleetdesk/infrastructure/http/response"
)

// RequireHTTPS refuses plaintext traffic. Safe methods are redirected to the
// https equivalent so bookmarked links keep working; everything else is
// rejected outright because the credentials already crossed the wire.
// A terminating proxy announces the original scheme via X-Forwarded-Proto.
func RequireHTTPS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestIsSecure(r) {
			next.ServeHTTP(w, r)
			return
		}
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
			return
		}
		response.Forbidden(w, "HTTPS is required")
	})
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
