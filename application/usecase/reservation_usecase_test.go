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
	"github.com/joestar02/fleetdesk/infrastructure/security/permission"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func hour(h int) time.Time {
	return time.Date(2025, 3, 2, h, 0, 0, 0, time.UTC)
}

func i64(v int64) *int64 { return &v }

type reservationFixture struct {
	uc           *ReservationUseCase
	reservations *MockReservationRepository
	vehicles     *MockVehicleRepository
	drivers      *MockDriverRepository
	rec          *memRecorder
}

func newReservationFixture() *reservationFixture {
	rec := &memRecorder{}
	clk := clock.Fixed{Instant: testNow}
	reservations := new(MockReservationRepository)
	vehicles := new(MockVehicleRepository)
	drivers := new(MockDriverRepository)
	resolver := permission.NewResolver(rec, clk, nil)
	return &reservationFixture{
		uc:           NewReservationUseCase(reservations, vehicles, drivers, resolver, rec, clk),
		reservations: reservations,
		vehicles:     vehicles,
		drivers:      drivers,
		rec:          rec,
	}
}

func managerIdentity() domain.Identity {
	return domain.Identity{ActorID: 1, Username: "manager", Role: domain.RoleFleetManager, OrgUnitID: i64(10)}
}

func driverIdentity() domain.Identity {
	return domain.Identity{ActorID: 2, Username: "driver", Role: domain.RoleDriver, OrgUnitID: i64(10), DriverID: i64(5)}
}

func validRequest() inbound.CreateReservationRequest {
	return inbound.CreateReservationRequest{
		VehicleID: 3,
		DriverID:  5,
		Start:     hour(9),
		End:       hour(11),
		Purpose:   "client visit",
	}
}

func TestCreateReservationSuccess(t *testing.T) {
	f := newReservationFixture()
	f.vehicles.On("FindByID", mock.Anything, int64(3)).Return(&domain.Vehicle{ID: 3, OrgUnitID: i64(10)}, nil)
	f.drivers.On("FindByID", mock.Anything, int64(5)).Return(&domain.Driver{ID: 5, OrgUnitID: i64(10)}, nil)
	f.reservations.On("FindConflicting", mock.Anything, int64(3), hour(9), hour(11), int64(0)).Return(nil, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := f.uc.Create(context.Background(), managerIdentity(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationPending, r.Status)
	assert.False(t, r.Forced)
	assert.Equal(t, int64(10), r.OrgUnitID)

	created := f.rec.byOperation(domain.AuditDataOperation)
	require.Len(t, created, 1)
	assert.Equal(t, "reservation", created[0].Resource)
}

func TestCreateReservationConfirmedFlag(t *testing.T) {
	f := newReservationFixture()
	f.vehicles.On("FindByID", mock.Anything, int64(3)).Return(&domain.Vehicle{ID: 3, OrgUnitID: i64(10)}, nil)
	f.drivers.On("FindByID", mock.Anything, int64(5)).Return(&domain.Driver{ID: 5}, nil)
	f.reservations.On("FindConflicting", mock.Anything, int64(3), hour(9), hour(11), int64(0)).Return(nil, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.Confirmed = true
	r, err := f.uc.Create(context.Background(), managerIdentity(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationConfirmed, r.Status)
}

func TestCreateReservationConflict(t *testing.T) {
	f := newReservationFixture()
	f.vehicles.On("FindByID", mock.Anything, int64(3)).Return(&domain.Vehicle{ID: 3, OrgUnitID: i64(10)}, nil)
	f.drivers.On("FindByID", mock.Anything, int64(5)).Return(&domain.Driver{ID: 5}, nil)
	f.reservations.On("FindConflicting", mock.Anything, int64(3), hour(9), hour(11), int64(0)).
		Return(&domain.Reservation{ID: 42}, nil)

	_, err := f.uc.Create(context.Background(), managerIdentity(), validRequest())
	require.Error(t, err)

	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domain.KindConflict, appErr.Kind)
	assert.Equal(t, int64(42), appErr.ConflictID)
	f.reservations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReservationInvalidInterval(t *testing.T) {
	f := newReservationFixture()

	req := validRequest()
	req.End = req.Start
	_, err := f.uc.Create(context.Background(), managerIdentity(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	req = validRequest()
	req.Purpose = "  "
	_, err = f.uc.Create(context.Background(), managerIdentity(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestDriverCreatesOnlyForSelf(t *testing.T) {
	f := newReservationFixture()

	req := validRequest()
	req.DriverID = 99
	_, err := f.uc.Create(context.Background(), driverIdentity(), req)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestDriverCreatesForSelf(t *testing.T) {
	f := newReservationFixture()
	f.vehicles.On("FindByID", mock.Anything, int64(3)).Return(&domain.Vehicle{ID: 3, OrgUnitID: i64(10)}, nil)
	f.drivers.On("FindByID", mock.Anything, int64(5)).Return(&domain.Driver{ID: 5}, nil)
	f.reservations.On("FindConflicting", mock.Anything, int64(3), hour(9), hour(11), int64(0)).Return(nil, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.uc.Create(context.Background(), driverIdentity(), validRequest())
	assert.NoError(t, err)
}

func TestCreateReservationOutsideOrgUnit(t *testing.T) {
	f := newReservationFixture()
	f.vehicles.On("FindByID", mock.Anything, int64(3)).Return(&domain.Vehicle{ID: 3, OrgUnitID: i64(99)}, nil)

	_, err := f.uc.Create(context.Background(), managerIdentity(), validRequest())
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	// the rejection must be visible in the trail, not just the response
	checks := f.rec.byOperation(domain.AuditPermissionCheck)
	require.NotEmpty(t, checks)
	denial := checks[len(checks)-1]
	assert.Equal(t, false, denial.Details["access_granted"])
	assert.Equal(t, "organization_scope", denial.Details["permission_required"])
}

func TestViewerCannotCreate(t *testing.T) {
	f := newReservationFixture()
	viewer := domain.Identity{ActorID: 9, Role: domain.RoleViewer, OrgUnitID: i64(10)}

	_, err := f.uc.Create(context.Background(), viewer, validRequest())
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestForceCreateSkipsOverlapCheck(t *testing.T) {
	f := newReservationFixture()
	f.vehicles.On("FindByID", mock.Anything, int64(3)).Return(&domain.Vehicle{ID: 3, OrgUnitID: i64(10)}, nil)
	f.drivers.On("FindByID", mock.Anything, int64(5)).Return(&domain.Driver{ID: 5}, nil)
	f.reservations.On("Create", mock.Anything, mock.Anything).Return(nil)

	r, err := f.uc.ForceCreate(context.Background(), managerIdentity(), validRequest())
	require.NoError(t, err)
	assert.True(t, r.Forced)
	f.reservations.AssertNotCalled(t, "FindConflicting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	created := f.rec.byOperation(domain.AuditDataOperation)
	require.Len(t, created, 1)
	newValues := created[0].Details["new_values"].(map[string]interface{})
	assert.Equal(t, true, newValues["forced"])
}

func TestForceCreateRequiresElevatedRole(t *testing.T) {
	f := newReservationFixture()

	_, err := f.uc.ForceCreate(context.Background(), driverIdentity(), validRequest())
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestUpdateExcludesSelfFromOverlapCheck(t *testing.T) {
	f := newReservationFixture()
	existing := &domain.Reservation{
		ID: 7, VehicleID: 3, DriverID: 5, OrgUnitID: 10,
		Start: hour(9), End: hour(11), Status: domain.ReservationPending, Purpose: "client visit",
	}
	f.reservations.On("FindByID", mock.Anything, int64(7)).Return(existing, nil)
	f.reservations.On("FindConflicting", mock.Anything, int64(3), hour(9), hour(12), int64(7)).Return(nil, nil)
	f.reservations.On("Update", mock.Anything, mock.Anything).Return(nil)

	end := hour(12)
	r, err := f.uc.Update(context.Background(), managerIdentity(), 7, inbound.UpdateReservationRequest{End: &end})
	require.NoError(t, err)
	assert.Equal(t, hour(12), r.End)
	assert.Equal(t, testNow, r.UpdatedAt)
}

func TestUpdateCancelledRejected(t *testing.T) {
	f := newReservationFixture()
	existing := &domain.Reservation{
		ID: 7, VehicleID: 3, OrgUnitID: 10,
		Start: hour(9), End: hour(11), Status: domain.ReservationCancelled, Purpose: "x",
	}
	f.reservations.On("FindByID", mock.Anything, int64(7)).Return(existing, nil)

	end := hour(12)
	_, err := f.uc.Update(context.Background(), managerIdentity(), 7, inbound.UpdateReservationRequest{End: &end})
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalidTransition, domain.KindOf(err))
}

func TestCompleteGoesThroughMileageTransaction(t *testing.T) {
	f := newReservationFixture()
	startMileage := 12000
	existing := &domain.Reservation{
		ID: 7, VehicleID: 3, DriverID: 5, OrgUnitID: 10,
		Start: hour(9), End: hour(11), Status: domain.ReservationInProgress,
		Purpose: "x", ActualStartMileage: &startMileage,
	}
	f.reservations.On("FindByID", mock.Anything, int64(7)).Return(existing, nil)
	f.reservations.On("CompleteWithMileage", mock.Anything, mock.Anything).Return(nil)

	r, err := f.uc.Complete(context.Background(), managerIdentity(), 7, 12150, "")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCompleted, r.Status)
	f.reservations.AssertCalled(t, "CompleteWithMileage", mock.Anything, mock.Anything)
	f.reservations.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCancelRecordsActor(t *testing.T) {
	f := newReservationFixture()
	existing := &domain.Reservation{
		ID: 7, VehicleID: 3, DriverID: 5, OrgUnitID: 10,
		Start: hour(9), End: hour(11), Status: domain.ReservationConfirmed, Purpose: "x",
	}
	f.reservations.On("FindByID", mock.Anything, int64(7)).Return(existing, nil)
	f.reservations.On("Update", mock.Anything, mock.Anything).Return(nil)

	r, err := f.uc.Cancel(context.Background(), managerIdentity(), 7, "no longer needed")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, r.Status)
	assert.Equal(t, testNow, r.UpdatedAt)

	events := f.rec.byOperation(domain.AuditDataOperation)
	require.Len(t, events, 1)
	newValues := events[0].Details["new_values"].(map[string]interface{})
	assert.Equal(t, int64(1), newValues["cancelled_by"])
}

func TestDriverListIsScopedToSelf(t *testing.T) {
	f := newReservationFixture()
	f.reservations.On("List", mock.Anything, mock.MatchedBy(func(filter outbound.ReservationFilter) bool {
		return filter.DriverID != nil && *filter.DriverID == 5 && filter.Page == 1 && filter.PerPage == 20
	})).Return([]*domain.Reservation{}, 0, nil)

	_, _, err := f.uc.List(context.Background(), driverIdentity(), outbound.ReservationFilter{})
	require.NoError(t, err)
	f.reservations.AssertExpectations(t)
}

func TestDriverGetOthersReservationForbidden(t *testing.T) {
	f := newReservationFixture()
	other := &domain.Reservation{ID: 7, VehicleID: 3, DriverID: 77, OrgUnitID: 10, Status: domain.ReservationConfirmed}
	f.reservations.On("FindByID", mock.Anything, int64(7)).Return(other, nil)

	_, err := f.uc.Get(context.Background(), driverIdentity(), 7)
	require.Error(t, err)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}
