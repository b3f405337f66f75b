package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
)

type memRecorder struct {
	events []domain.AuditEvent
}

func (m *memRecorder) Emit(_ context.Context, ev domain.AuditEvent) {
	m.events = append(m.events, ev)
}

func (m *memRecorder) byOperation(op domain.AuditOperation) []domain.AuditEvent {
	var out []domain.AuditEvent
	for _, ev := range m.events {
		if ev.Operation == op {
			out = append(out, ev)
		}
	}
	return out
}

type MockActorRepository struct {
	mock.Mock
}

func (m *MockActorRepository) FindByID(ctx context.Context, id int64) (*domain.Actor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Actor), args.Error(1)
}

func (m *MockActorRepository) FindByLogin(ctx context.Context, login string) (*domain.Actor, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Actor), args.Error(1)
}

func (m *MockActorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	args := m.Called(ctx, actor)
	return args.Error(0)
}

func (m *MockActorRepository) UpdateLastLogin(ctx context.Context, id int64, when time.Time) error {
	args := m.Called(ctx, id, when)
	return args.Error(0)
}

func (m *MockActorRepository) RolePermissionOverrides(ctx context.Context) (map[domain.Role][]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.Role][]string), args.Error(1)
}

type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) FindByID(ctx context.Context, id int64) (*domain.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Driver, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id int64) (*domain.OrganizationUnit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrganizationUnit), args.Error(1)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) FindConflicting(ctx context.Context, vehicleID int64, start, end time.Time, excludeID int64) (*domain.Reservation, error) {
	args := m.Called(ctx, vehicleID, start, end, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) Update(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) CompleteWithMileage(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) List(ctx context.Context, filter outbound.ReservationFilter) ([]*domain.Reservation, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Reservation), args.Int(1), args.Error(2)
}

type MockComplianceRepository struct {
	mock.Mock
}

func (m *MockComplianceRepository) Inspections(ctx context.Context) ([]*domain.Inspection, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Inspection), args.Error(1)
}

func (m *MockComplianceRepository) Insurances(ctx context.Context) ([]*domain.InsurancePolicy, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.InsurancePolicy), args.Error(1)
}

func (m *MockComplianceRepository) Taxes(ctx context.Context) ([]*domain.VehicleTax, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.VehicleTax), args.Error(1)
}

func (m *MockComplianceRepository) Fines(ctx context.Context) ([]*domain.Fine, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Fine), args.Error(1)
}

func (m *MockComplianceRepository) Authorizations(ctx context.Context) ([]*domain.UrbanAuthorization, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.UrbanAuthorization), args.Error(1)
}

func (m *MockComplianceRepository) RentingContracts(ctx context.Context) ([]*domain.RentingContract, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.RentingContract), args.Error(1)
}

type MockPasswordService struct {
	mock.Mock
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordService) Compare(hashedPassword, password string) error {
	args := m.Called(hashedPassword, password)
	return args.Error(0)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(claims outbound.SessionClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(token string) (*outbound.SessionClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.SessionClaims), args.Error(1)
}

func (m *MockTokenService) Lifetime() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

type MockLoginThrottle struct {
	mock.Mock
}

func (m *MockLoginThrottle) Allow(ctx context.Context, scope, ip string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, scope, ip, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoginThrottle) RecordFailure(ctx context.Context, ip string) error {
	args := m.Called(ctx, ip)
	return args.Error(0)
}

func (m *MockLoginThrottle) IsBlocked(ctx context.Context, ip string) (bool, error) {
	args := m.Called(ctx, ip)
	return args.Bool(0), args.Error(1)
}
