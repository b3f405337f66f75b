package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
)

var _ inbound.AuthUseCase = (*AuthUseCase)(nil)

// ThrottlePolicy carries the per-endpoint attempt budgets.
type ThrottlePolicy struct {
	LoginLimit     int
	LoginWindow    time.Duration
	RegisterLimit  int
	RegisterWindow time.Duration
}

// AuthUseCase handles login, registration and logout. Login failures are
// answered with one generic message regardless of cause; the real cause goes
// to the audit trail only.
type AuthUseCase struct {
	actors    outbound.ActorRepository
	drivers   outbound.DriverRepository
	passwords outbound.PasswordService
	tokens    outbound.TokenService
	throttle  outbound.LoginThrottle
	policy    ThrottlePolicy
	rec       audit.Recorder
	clock     clock.Clock
}

func NewAuthUseCase(
	actors outbound.ActorRepository,
	drivers outbound.DriverRepository,
	passwords outbound.PasswordService,
	tokens outbound.TokenService,
	throttle outbound.LoginThrottle,
	policy ThrottlePolicy,
	rec audit.Recorder,
	clk clock.Clock,
) *AuthUseCase {
	return &AuthUseCase{
		actors:    actors,
		drivers:   drivers,
		passwords: passwords,
		tokens:    tokens,
		throttle:  throttle,
		policy:    policy,
		rec:       rec,
		clock:     clk,
	}
}

var errInvalidCredentials = domain.NewAppError(domain.KindUnauthorized, "Invalid username or password", "", nil)

// Login authenticates by username or email. Blocked IPs and exhausted
// attempt budgets are rejected before any credential work happens.
func (uc *AuthUseCase) Login(ctx context.Context, login, password, ip string) (*inbound.LoginResult, error) {
	blocked, err := uc.throttle.IsBlocked(ctx, ip)
	if err == nil && blocked {
		audit.SuspiciousActivity(ctx, uc.rec, "blocked_ip_login_attempt", map[string]interface{}{
			"ip":                 ip,
			"attempted_username": login,
		})
		return nil, domain.ErrRateLimited("too many failed attempts from this address")
	}
	allowed, err := uc.throttle.Allow(ctx, "login", ip, uc.policy.LoginLimit, uc.policy.LoginWindow)
	if err == nil && !allowed {
		audit.SuspiciousActivity(ctx, uc.rec, "login_rate_limited", map[string]interface{}{"ip": ip})
		return nil, domain.ErrRateLimited("login attempt limit reached")
	}

	actor, err := uc.actors.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		uc.failLogin(ctx, login, ip, "unknown_account")
		return nil, errInvalidCredentials
	}
	if !actor.IsActive {
		uc.failLogin(ctx, login, ip, "inactive_account")
		return nil, errInvalidCredentials
	}
	if err := uc.passwords.Compare(actor.HashedPassword, password); err != nil {
		uc.failLogin(ctx, login, ip, "wrong_password")
		return nil, errInvalidCredentials
	}

	sessionID := uuid.NewString()
	token, err := uc.tokens.Generate(outbound.SessionClaims{
		ActorID:   actor.ID,
		Username:  actor.Username,
		Role:      actor.Role,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, domain.NewAppError(domain.KindInternal, "Internal error", "session token", err)
	}

	now := uc.clock.Now()
	if err := uc.actors.UpdateLastLogin(ctx, actor.ID, now); err != nil {
		// login stands even when the timestamp write fails
		audit.SuspiciousActivity(ctx, uc.rec, "last_login_update_failed", map[string]interface{}{
			"actor_id": actor.ID,
			"error":    err.Error(),
		})
	}
	audit.AuthAttempt(ctx, uc.rec, login, true, map[string]interface{}{
		"actor_id": actor.ID,
		"role":     string(actor.Role),
		"session":  sessionID,
	})
	return &inbound.LoginResult{
		Actor:     actor,
		Token:     token,
		SessionID: sessionID,
		ExpiresAt: now.Add(uc.tokens.Lifetime()),
	}, nil
}

func (uc *AuthUseCase) failLogin(ctx context.Context, login, ip, reason string) {
	if err := uc.throttle.RecordFailure(ctx, ip); err != nil {
		audit.SuspiciousActivity(ctx, uc.rec, "throttle_record_failed", map[string]interface{}{"error": err.Error()})
	}
	audit.AuthAttempt(ctx, uc.rec, login, false, map[string]interface{}{"reason": reason})
}

// Register creates an account after validating the request and the per-IP
// registration budget. New accounts always get the viewer role; callers
// cannot pick their own privileges.
func (uc *AuthUseCase) Register(ctx context.Context, req inbound.RegisterRequest, ip string) (*domain.Actor, error) {
	allowed, err := uc.throttle.Allow(ctx, "register", ip, uc.policy.RegisterLimit, uc.policy.RegisterWindow)
	if err == nil && !allowed {
		audit.SuspiciousActivity(ctx, uc.rec, "registration_rate_limited", map[string]interface{}{"ip": ip})
		return nil, domain.ErrRateLimited("registration attempt limit reached")
	}
	if err := validateRegistration(req); err != nil {
		return nil, err
	}

	hashed, err := uc.passwords.Hash(req.Password)
	if err != nil {
		return nil, domain.NewAppError(domain.KindInternal, "Internal error", "password hash", err)
	}

	now := uc.clock.Now()
	actor := &domain.Actor{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		HashedPassword: hashed,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           domain.RoleViewer,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.actors.Create(ctx, actor); err != nil {
		return nil, err
	}

	uc.rec.Emit(ctx, domain.AuditEvent{
		Operation:  domain.AuditUserRegistration,
		Resource:   "actor",
		ResourceID: itoa(actor.ID),
		Details: map[string]interface{}{
			"username": actor.Username,
			"email":    actor.Email,
			"role":     string(actor.Role),
			"ip":       ip,
		},
	})
	return actor, nil
}

// Logout only invalidates client state; the event is still recorded so the
// session trail has a closing entry.
func (uc *AuthUseCase) Logout(ctx context.Context, id domain.Identity) {
	audit.AuthAttempt(ctx, uc.rec, id.Username, true, map[string]interface{}{
		"action":  "logout",
		"session": id.SessionID,
	})
}

func validateRegistration(req inbound.RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return domain.ErrValidation("username", "username is required")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.ErrValidation("email", "a valid email address is required")
	}
	if len(req.Password) < 8 {
		return domain.ErrValidation("password", "password must be at least 8 characters")
	}
	return nil
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
