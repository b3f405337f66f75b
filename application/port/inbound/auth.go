package inbound

import (
	"context"
	"time"

	"github.com/joestar02/fleetdesk/domain"
)

// LoginResult is what the transport layer needs to establish the session.
type LoginResult struct {
	Actor     *domain.Actor
	Token     string
	SessionID string
	ExpiresAt time.Time
}

// RegisterRequest carries a new account. Self-registered accounts always
// start as viewers; elevated roles are granted by administrators afterwards.
type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type AuthUseCase interface {
	Login(ctx context.Context, login, password, ip string) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest, ip string) (*domain.Actor, error)
	Logout(ctx context.Context, id domain.Identity)
}
