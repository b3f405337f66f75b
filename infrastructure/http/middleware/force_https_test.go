package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func httpsHandler() http.Handler {
	return RequireHTTPS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequireHTTPSRedirectsSafeMethods(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://fleet.example.com/api/v1/reservations?page=2", nil)
	w := httptest.NewRecorder()
	httpsHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusPermanentRedirect, w.Code)
	assert.Equal(t, "https://fleet.example.com/api/v1/reservations?page=2", w.Header().Get("Location"))
}

func TestRequireHTTPSRejectsPlaintextMutation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://fleet.example.com/api/v1/auth/login", nil)
	w := httptest.NewRecorder()
	httpsHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireHTTPSAllowsTLS(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "https://fleet.example.com/api/v1/auth/login", nil)
	w := httptest.NewRecorder()
	httpsHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireHTTPSTrustsForwardedProto(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://fleet.example.com/api/v1/auth/login", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	httpsHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
