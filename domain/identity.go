package domain

import (
	"context"
	"time"
)

// Identity is the per-request record of who is acting. It is populated at
// request entry, immutable for the request, and attached to every audit
// event and permission decision.
type Identity struct {
	ActorID      int64
	Username     string
	Role         Role
	IsSuperuser  bool
	OrgUnitID    *int64
	DriverID     *int64
	RemoteIP     string
	SessionID    string
	RequestStart time.Time
}

// SystemIdentity is the sentinel for unauthenticated or background work.
func SystemIdentity(now time.Time) Identity {
	return Identity{
		Username:     "system",
		RemoteIP:     "localhost",
		SessionID:    "background",
		RequestStart: now,
	}
}

// Authenticated reports whether the identity belongs to a real actor.
func (id Identity) Authenticated() bool { return id.ActorID != 0 }

// IsAdmin covers both the admin role and the superuser flag.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin || id.IsSuperuser }

type ctxKey string

const (
	identityCtxKey    ctxKey = "identity"
	correlationCtxKey ctxKey = "correlation_id"
)

// WithIdentity attaches the request identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, id)
}

// IdentityFrom returns the request identity, or false when none is attached.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey).(Identity)
	return id, ok
}

// WithCorrelationID attaches the request correlation id to the context.
func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationCtxKey, cid)
}

// CorrelationIDFrom returns the request correlation id, if any.
func CorrelationIDFrom(ctx context.Context) string {
	cid, _ := ctx.Value(correlationCtxKey).(string)
	return cid
}
