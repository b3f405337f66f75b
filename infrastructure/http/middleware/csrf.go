package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/joestar02/fleetdesk/infrastructure/http/response"
)

const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFMiddleware implements the double-submit pattern for cookie sessions:
// the token cookie is readable by the page, and mutating requests must echo
// it back in a header. Bearer-token clients are exempt because the browser
// never attaches their credential automatically.
func CSRFMiddleware(secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CSRFCookieName)
			if err != nil || cookie.Value == "" {
				token := generateCSRFToken()
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
				cookie = &http.Cookie{Value: token}
			}

			if mutating(r.Method) && !usesBearerAuth(r) {
				header := r.Header.Get(CSRFHeaderName)
				if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
					response.Forbidden(w, "CSRF token missing or invalid")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func usesBearerAuth(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return len(auth) > 7 && (auth[:7] == "Bearer " || auth[:7] == "bearer ")
}

func generateCSRFToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "invalid"
	}
	return hex.EncodeToString(b)
}
