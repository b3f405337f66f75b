package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
	"github.com/joestar02/fleetdesk/infrastructure/http/response"
)

const SessionCookieName = "session"

// AuthMiddleware resolves the acting identity for each request. The session
// token comes from the HttpOnly cookie (browser flow) or a bearer header
// (API clients); the actor is re-loaded so deactivation takes effect
// immediately rather than at token expiry.
type AuthMiddleware struct {
	tokens  outbound.TokenService
	actors  outbound.ActorRepository
	drivers outbound.DriverRepository
	clock   clock.Clock
}

func NewAuthMiddleware(tokens outbound.TokenService, actors outbound.ActorRepository, drivers outbound.DriverRepository, clk clock.Clock) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, actors: actors, drivers: drivers, clock: clk}
}

// RequireAuth rejects requests without a valid session.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := m.resolve(r)
		if err != nil {
			response.Unauthorized(w, "Authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithIdentity(r.Context(), *id)))
	}
}

// OptionalAuth attaches the identity when a valid session is present and
// proceeds anonymously otherwise.
func (m *AuthMiddleware) OptionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, err := m.resolve(r); err == nil {
			r = r.WithContext(domain.WithIdentity(r.Context(), *id))
		}
		next.ServeHTTP(w, r)
	}
}

func (m *AuthMiddleware) resolve(r *http.Request) (*domain.Identity, error) {
	token := extractToken(r)
	if token == "" {
		return nil, errors.New("no session token")
	}
	claims, err := m.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	actor, err := m.actors.FindByID(r.Context(), claims.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsActive {
		return nil, errors.New("account deactivated")
	}

	id := domain.Identity{
		ActorID:      actor.ID,
		Username:     actor.Username,
		Role:         actor.Role,
		IsSuperuser:  actor.IsSuperuser,
		OrgUnitID:    actor.OrgUnitID,
		DriverID:     actor.DriverID,
		RemoteIP:     remoteIP(r),
		SessionID:    claims.SessionID,
		RequestStart: m.clock.Now(),
	}
	// an actor without an explicit unit inherits their driver profile's unit
	if id.OrgUnitID == nil {
		if driver, err := m.drivers.FindByUserID(r.Context(), actor.ID); err == nil {
			id.OrgUnitID = driver.OrgUnitID
			if id.DriverID == nil {
				id.DriverID = &driver.ID
			}
		}
	}
	return &id, nil
}

func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// remoteIP prefers the first X-Forwarded-For hop set by the reverse proxy.
func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
