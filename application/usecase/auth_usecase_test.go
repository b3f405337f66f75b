package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
)

type authFixture struct {
	uc        *AuthUseCase
	actors    *MockActorRepository
	passwords *MockPasswordService
	tokens    *MockTokenService
	throttle  *MockLoginThrottle
	rec       *memRecorder
}

func newAuthFixture() *authFixture {
	rec := &memRecorder{}
	actors := new(MockActorRepository)
	passwords := new(MockPasswordService)
	tokens := new(MockTokenService)
	throttle := new(MockLoginThrottle)
	policy := ThrottlePolicy{
		LoginLimit:     5,
		LoginWindow:    time.Minute,
		RegisterLimit:  3,
		RegisterWindow: time.Hour,
	}
	clk := clock.Fixed{Instant: testNow}
	return &authFixture{
		uc:        NewAuthUseCase(actors, new(MockDriverRepository), passwords, tokens, throttle, policy, rec, clk),
		actors:    actors,
		passwords: passwords,
		tokens:    tokens,
		throttle:  throttle,
		rec:       rec,
	}
}

func (f *authFixture) allowTraffic() {
	f.throttle.On("IsBlocked", mock.Anything, "1.2.3.4").Return(false, nil)
	f.throttle.On("Allow", mock.Anything, "login", "1.2.3.4", 5, time.Minute).Return(true, nil)
}

func activeActor() *domain.Actor {
	return &domain.Actor{
		ID:             1,
		Username:       "jdoe",
		Email:          "jdoe@example.com",
		HashedPassword: "$2a$hash",
		Role:           domain.RoleFleetManager,
		IsActive:       true,
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture()
	f.allowTraffic()
	f.actors.On("FindByLogin", mock.Anything, "jdoe").Return(activeActor(), nil)
	f.passwords.On("Compare", "$2a$hash", "secret123").Return(nil)
	f.tokens.On("Generate", mock.Anything).Return("signed-token", nil)
	f.tokens.On("Lifetime").Return(8 * time.Hour)
	f.actors.On("UpdateLastLogin", mock.Anything, int64(1), testNow).Return(nil)

	result, err := f.uc.Login(context.Background(), "jdoe", "secret123", "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.Token)
	assert.NotEmpty(t, result.SessionID)
	assert.Equal(t, testNow.Add(8*time.Hour), result.ExpiresAt)

	attempts := f.rec.byOperation(domain.AuditAuthAttempt)
	require.Len(t, attempts, 1)
	assert.Equal(t, true, attempts[0].Details["success"])
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	// unknown account, inactive account and wrong password must be
	// indistinguishable to the caller
	cases := []struct {
		name   string
		setup  func(f *authFixture)
		reason string
	}{
		{
			name: "unknown account",
			setup: func(f *authFixture) {
				f.actors.On("FindByLogin", mock.Anything, "ghost").Return(nil, errors.New("not found"))
			},
			reason: "unknown_account",
		},
		{
			name: "inactive account",
			setup: func(f *authFixture) {
				inactive := activeActor()
				inactive.Username = "ghost"
				inactive.IsActive = false
				f.actors.On("FindByLogin", mock.Anything, "ghost").Return(inactive, nil)
			},
			reason: "inactive_account",
		},
		{
			name: "wrong password",
			setup: func(f *authFixture) {
				a := activeActor()
				a.Username = "ghost"
				f.actors.On("FindByLogin", mock.Anything, "ghost").Return(a, nil)
				f.passwords.On("Compare", "$2a$hash", mock.Anything).Return(errors.New("mismatch"))
			},
			reason: "wrong_password",
		},
	}

	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture()
			f.allowTraffic()
			f.throttle.On("RecordFailure", mock.Anything, "1.2.3.4").Return(nil)
			tc.setup(f)

			_, err := f.uc.Login(context.Background(), "ghost", "whatever", "1.2.3.4")
			require.Error(t, err)
			assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

			var appErr *domain.AppError
			require.True(t, errors.As(err, &appErr))
			messages = append(messages, appErr.Message)

			attempts := f.rec.byOperation(domain.AuditAuthAttempt)
			require.Len(t, attempts, 1)
			assert.Equal(t, tc.reason, attempts[0].Details["reason"])
			f.throttle.AssertCalled(t, "RecordFailure", mock.Anything, "1.2.3.4")
		})
	}
	for _, msg := range messages {
		assert.Equal(t, messages[0], msg)
	}
}

func TestLoginBlockedIP(t *testing.T) {
	f := newAuthFixture()
	f.throttle.On("IsBlocked", mock.Anything, "1.2.3.4").Return(true, nil)

	_, err := f.uc.Login(context.Background(), "jdoe", "secret123", "1.2.3.4")
	require.Error(t, err)
	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
	f.actors.AssertNotCalled(t, "FindByLogin", mock.Anything, mock.Anything)

	suspicious := f.rec.byOperation(domain.AuditSuspiciousActivity)
	require.Len(t, suspicious, 1)
	assert.Equal(t, "blocked_ip_login_attempt", suspicious[0].Details["activity_type"])
}

func TestLoginRateLimited(t *testing.T) {
	f := newAuthFixture()
	f.throttle.On("IsBlocked", mock.Anything, "1.2.3.4").Return(false, nil)
	f.throttle.On("Allow", mock.Anything, "login", "1.2.3.4", 5, time.Minute).Return(false, nil)

	_, err := f.uc.Login(context.Background(), "jdoe", "secret123", "1.2.3.4")
	require.Error(t, err)
	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
}

func TestLoginSurvivesLastLoginWriteFailure(t *testing.T) {
	f := newAuthFixture()
	f.allowTraffic()
	f.actors.On("FindByLogin", mock.Anything, "jdoe").Return(activeActor(), nil)
	f.passwords.On("Compare", "$2a$hash", "secret123").Return(nil)
	f.tokens.On("Generate", mock.Anything).Return("signed-token", nil)
	f.tokens.On("Lifetime").Return(8 * time.Hour)
	f.actors.On("UpdateLastLogin", mock.Anything, int64(1), testNow).Return(errors.New("db down"))

	result, err := f.uc.Login(context.Background(), "jdoe", "secret123", "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.Token)
}

func validRegistration() inbound.RegisterRequest {
	return inbound.RegisterRequest{
		Username:  "newuser",
		Email:     "New.User@Example.com",
		Password:  "longenough",
		FirstName: "New",
		LastName:  "User",
	}
}

func TestRegisterSuccess(t *testing.T) {
	f := newAuthFixture()
	f.throttle.On("Allow", mock.Anything, "register", "1.2.3.4", 3, time.Hour).Return(true, nil)
	f.passwords.On("Hash", "longenough").Return("hashed", nil)
	f.actors.On("Create", mock.Anything, mock.Anything).Return(nil)

	actor, err := f.uc.Register(context.Background(), validRegistration(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", actor.Email)
	assert.Equal(t, domain.RoleViewer, actor.Role)
	assert.True(t, actor.IsActive)

	events := f.rec.byOperation(domain.AuditUserRegistration)
	require.Len(t, events, 1)
	assert.Equal(t, "newuser", events[0].Details["username"])
}

func TestRegisterAlwaysCreatesViewer(t *testing.T) {
	// self-registration must never produce a privileged account
	f := newAuthFixture()
	f.throttle.On("Allow", mock.Anything, "register", "1.2.3.4", 3, time.Hour).Return(true, nil)
	f.passwords.On("Hash", "longenough").Return("hashed", nil)

	var created *domain.Actor
	f.actors.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.Actor)
	}).Return(nil)

	_, err := f.uc.Register(context.Background(), validRegistration(), "1.2.3.4")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.RoleViewer, created.Role)
	assert.False(t, created.IsSuperuser)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture()
	f.throttle.On("Allow", mock.Anything, "register", "1.2.3.4", 3, time.Hour).Return(true, nil)

	tests := []struct {
		name   string
		mutate func(r *inbound.RegisterRequest)
	}{
		{"missing username", func(r *inbound.RegisterRequest) { r.Username = "  " }},
		{"malformed email", func(r *inbound.RegisterRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *inbound.RegisterRequest) { r.Password = "short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(&req)
			_, err := f.uc.Register(context.Background(), req, "1.2.3.4")
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
	f.actors.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterRateLimited(t *testing.T) {
	f := newAuthFixture()
	f.throttle.On("Allow", mock.Anything, "register", "1.2.3.4", 3, time.Hour).Return(false, nil)

	_, err := f.uc.Register(context.Background(), validRegistration(), "1.2.3.4")
	require.Error(t, err)
	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
}

func TestLogoutLeavesClosingEntry(t *testing.T) {
	f := newAuthFixture()
	f.uc.Logout(context.Background(), domain.Identity{ActorID: 1, Username: "jdoe", SessionID: "sess-1"})

	attempts := f.rec.byOperation(domain.AuditAuthAttempt)
	require.Len(t, attempts, 1)
	assert.Equal(t, "logout", attempts[0].Details["action"])
}

var _ outbound.LoginThrottle = (*MockLoginThrottle)(nil)
