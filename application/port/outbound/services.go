package outbound

import (
	"context"
	"time"

	"github.com/joestar02/fleetdesk/domain"
)

type PasswordService interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

// SessionClaims is the payload of a signed session token. SessionID doubles
// as the audit session field.
type SessionClaims struct {
	ActorID   int64
	Username  string
	Role      domain.Role
	SessionID string
}

type TokenService interface {
	Generate(claims SessionClaims) (string, error)
	Validate(token string) (*SessionClaims, error)
	Lifetime() time.Duration
}

// LoginThrottle limits authentication abuse per remote IP. Entries age out
// after their window.
type LoginThrottle interface {
	// Allow consumes one attempt for scope (login, register) and reports
	// whether the limit still holds.
	Allow(ctx context.Context, scope, ip string, limit int, window time.Duration) (bool, error)
	RecordFailure(ctx context.Context, ip string) error
	IsBlocked(ctx context.Context, ip string) (bool, error)
}
