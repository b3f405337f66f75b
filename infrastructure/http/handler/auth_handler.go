package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/http/middleware"
	"github.com/joestar02/fleetdesk/infrastructure/http/response"
	"github.com/joestar02/fleetdesk/infrastructure/http/validator"
)

type AuthHandler struct {
	auth         inbound.AuthUseCase
	secureCookie bool
}

func NewAuthHandler(auth inbound.AuthUseCase, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookie: secureCookie}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	Actor     *domain.Actor `json:"actor"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if !validator.ValidateRequired(req.Login) || !validator.ValidateRequired(req.Password) {
		response.BadRequest(w, "Login and password are required")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Login, req.Password, clientIP(r))
	if err != nil {
		response.AppError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	response.Success(w, http.StatusOK, "Login successful", loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		Actor:     result.Actor,
	})
}

// registerRequest deliberately has no role field; self-registration always
// produces a viewer account.
type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if !validator.ValidateEmail(req.Email) {
		response.BadRequest(w, "A valid email address is required")
		return
	}
	if !validator.ValidatePassword(req.Password) {
		response.BadRequest(w, "Password must be at least 8 characters")
		return
	}

	actor, err := h.auth.Register(r.Context(), inbound.RegisterRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, clientIP(r))
	if err != nil {
		response.AppError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, "Account created", actor)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := domain.IdentityFrom(r.Context()); ok {
		h.auth.Logout(r.Context(), id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	response.Success(w, http.StatusOK, "Logged out", nil)
}
