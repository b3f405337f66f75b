package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfHandler() http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CSRFMiddleware(false)(next)
}

func TestCSRFIssuesCookieOnFirstVisit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == CSRFCookieName {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)
	assert.Len(t, token, 32)
}

func TestCSRFMutatingWithoutHeaderRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("{}"))
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-value"})
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFMatchingHeaderAccepted(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("{}"))
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-value"})
	req.Header.Set(CSRFHeaderName, "token-value")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFMismatchedHeaderRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("{}"))
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-value"})
	req.Header.Set(CSRFHeaderName, "other-value")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFBearerRequestsExempt(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer some.jwt.token")
	rec := httptest.NewRecorder()
	csrfHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFReadsAreExempt(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/api/v1/reservations", nil)
		rec := httptest.NewRecorder()
		csrfHandler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}
