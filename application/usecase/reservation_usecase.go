package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
	"github.com/joestar02/fleetdesk/infrastructure/security/permission"
	"github.com/joestar02/fleetdesk/infrastructure/security/scope"
)

var _ inbound.ReservationUseCase = (*ReservationUseCase)(nil)

// ReservationUseCase owns the reservation lifecycle: overlap-checked
// creation, the forced-override path, edits and status transitions.
type ReservationUseCase struct {
	reservations outbound.ReservationRepository
	vehicles     outbound.VehicleRepository
	drivers      outbound.DriverRepository
	resolver     *permission.Resolver
	rec          audit.Recorder
	clock        clock.Clock
}

func NewReservationUseCase(
	reservations outbound.ReservationRepository,
	vehicles outbound.VehicleRepository,
	drivers outbound.DriverRepository,
	resolver *permission.Resolver,
	rec audit.Recorder,
	clk clock.Clock,
) *ReservationUseCase {
	return &ReservationUseCase{
		reservations: reservations,
		vehicles:     vehicles,
		drivers:      drivers,
		resolver:     resolver,
		rec:          rec,
		clock:        clk,
	}
}

// Create runs the full guarded path: permission, driver ownership, scope,
// interval validation, overlap check, persistence, audit.
func (uc *ReservationUseCase) Create(ctx context.Context, id domain.Identity, req inbound.CreateReservationRequest) (*domain.Reservation, error) {
	if err := uc.resolver.Require(ctx, id, permission.ReservationCreate); err != nil {
		return nil, err
	}
	if id.Role == domain.RoleDriver {
		if id.DriverID == nil || *id.DriverID != req.DriverID {
			return nil, domain.ErrForbidden("drivers may only reserve for themselves")
		}
	}
	if err := uc.validateInterval(req.Start, req.End, req.Purpose); err != nil {
		return nil, err
	}

	vehicle, err := uc.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, domain.ErrNotFound("vehicle", req.VehicleID)
	}
	if err := scope.Require(ctx, uc.rec, id, vehicle); err != nil {
		return nil, err
	}
	if _, err := uc.drivers.FindByID(ctx, req.DriverID); err != nil {
		return nil, domain.ErrNotFound("driver", req.DriverID)
	}

	if conflict, err := uc.reservations.FindConflicting(ctx, req.VehicleID, req.Start, req.End, 0); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, domain.ErrReservationConflict(conflict.ID)
	}

	reservation := uc.build(id, vehicle, req, false)
	if err := uc.reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}
	audit.DataOperation(ctx, uc.rec, "create", "reservation", itoa(reservation.ID), nil, reservationValues(reservation))
	return reservation, nil
}

// ForceCreate bypasses the overlap check. Only admins and fleet managers may
// take this path; the audit trail records forced=true.
func (uc *ReservationUseCase) ForceCreate(ctx context.Context, id domain.Identity, req inbound.CreateReservationRequest) (*domain.Reservation, error) {
	if err := uc.resolver.RequireRole(ctx, id, domain.RoleAdmin, domain.RoleFleetManager); err != nil {
		return nil, err
	}
	if err := uc.validateInterval(req.Start, req.End, req.Purpose); err != nil {
		return nil, err
	}

	vehicle, err := uc.vehicles.FindByID(ctx, req.VehicleID)
	if err != nil {
		return nil, domain.ErrNotFound("vehicle", req.VehicleID)
	}
	if _, err := uc.drivers.FindByID(ctx, req.DriverID); err != nil {
		return nil, domain.ErrNotFound("driver", req.DriverID)
	}

	reservation := uc.build(id, vehicle, req, true)
	if err := uc.reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}
	values := reservationValues(reservation)
	values["forced"] = true
	audit.DataOperation(ctx, uc.rec, "create", "reservation", itoa(reservation.ID), nil, values)
	return reservation, nil
}

// Update re-runs the overlap check against the edited interval, excluding
// the reservation itself. Cancelled reservations may not be edited.
func (uc *ReservationUseCase) Update(ctx context.Context, id domain.Identity, reservationID int64, req inbound.UpdateReservationRequest) (*domain.Reservation, error) {
	if err := uc.resolver.Require(ctx, id, permission.ReservationEdit); err != nil {
		return nil, err
	}
	reservation, err := uc.load(ctx, id, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status == domain.ReservationCancelled {
		return nil, domain.ErrAlreadyCancelled(reservation.ID)
	}

	old := reservationValues(reservation)

	if req.VehicleID != nil {
		reservation.VehicleID = *req.VehicleID
	}
	if req.DriverID != nil {
		reservation.DriverID = *req.DriverID
	}
	if req.Start != nil {
		reservation.Start = *req.Start
	}
	if req.End != nil {
		reservation.End = *req.End
	}
	if req.Purpose != nil {
		reservation.Purpose = *req.Purpose
	}
	if req.Destination != nil {
		reservation.Destination = *req.Destination
	}
	if req.Notes != nil {
		reservation.Notes = *req.Notes
	}
	if err := uc.validateInterval(reservation.Start, reservation.End, reservation.Purpose); err != nil {
		return nil, err
	}

	if conflict, err := uc.reservations.FindConflicting(ctx, reservation.VehicleID, reservation.Start, reservation.End, reservation.ID); err != nil {
		return nil, err
	} else if conflict != nil {
		return nil, domain.ErrReservationConflict(conflict.ID)
	}

	reservation.UpdatedAt = uc.clock.Now()
	if err := uc.reservations.Update(ctx, reservation); err != nil {
		return nil, err
	}
	audit.DataOperation(ctx, uc.rec, "update", "reservation", itoa(reservation.ID), old, reservationValues(reservation))
	return reservation, nil
}

// Get applies the scope guard and, for driver actors, the self-only rule.
func (uc *ReservationUseCase) Get(ctx context.Context, id domain.Identity, reservationID int64) (*domain.Reservation, error) {
	if err := uc.resolver.Require(ctx, id, permission.ReservationView); err != nil {
		return nil, err
	}
	return uc.load(ctx, id, reservationID)
}

// List applies filters and pagination. Driver actors are always narrowed to
// their own reservations before pagination.
func (uc *ReservationUseCase) List(ctx context.Context, id domain.Identity, filter outbound.ReservationFilter) ([]*domain.Reservation, int, error) {
	if err := uc.resolver.Require(ctx, id, permission.ReservationView); err != nil {
		return nil, 0, err
	}
	if id.Role == domain.RoleDriver {
		if id.DriverID == nil {
			return nil, 0, domain.ErrForbidden("driver account has no driver profile")
		}
		filter.DriverID = id.DriverID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}
	return uc.reservations.List(ctx, filter)
}

// Confirm moves pending to confirmed.
func (uc *ReservationUseCase) Confirm(ctx context.Context, id domain.Identity, reservationID int64) (*domain.Reservation, error) {
	return uc.transition(ctx, id, reservationID, permission.ReservationEdit, "confirm", func(r *domain.Reservation) error {
		return r.Confirm()
	})
}

// Start records the pickup with the departure mileage.
func (uc *ReservationUseCase) Start(ctx context.Context, id domain.Identity, reservationID int64, mileage int) (*domain.Reservation, error) {
	if mileage < 0 {
		return nil, domain.ErrValidation("actual_start_mileage", "mileage must not be negative")
	}
	return uc.transition(ctx, id, reservationID, permission.ReservationEdit, "start", func(r *domain.Reservation) error {
		return r.StartUse(mileage, uc.clock.Now())
	})
}

// Complete records the return and advances the vehicle mileage in the same
// transaction as the status change.
func (uc *ReservationUseCase) Complete(ctx context.Context, id domain.Identity, reservationID int64, mileage int, notes string) (*domain.Reservation, error) {
	if err := uc.resolver.Require(ctx, id, permission.ReservationEdit); err != nil {
		return nil, err
	}
	if mileage < 0 {
		return nil, domain.ErrValidation("actual_end_mileage", "mileage must not be negative")
	}
	reservation, err := uc.load(ctx, id, reservationID)
	if err != nil {
		return nil, err
	}
	old := reservationValues(reservation)
	if err := reservation.CompleteUse(mileage, notes, uc.clock.Now()); err != nil {
		return nil, err
	}
	reservation.UpdatedAt = uc.clock.Now()
	if err := uc.reservations.CompleteWithMileage(ctx, reservation); err != nil {
		return nil, err
	}
	audit.DataOperation(ctx, uc.rec, "complete", "reservation", itoa(reservation.ID), old, reservationValues(reservation))
	return reservation, nil
}

// Cancel requires a reason and records the acting actor.
func (uc *ReservationUseCase) Cancel(ctx context.Context, id domain.Identity, reservationID int64, reason string) (*domain.Reservation, error) {
	if err := uc.resolver.Require(ctx, id, permission.ReservationCancel); err != nil {
		return nil, err
	}
	reservation, err := uc.load(ctx, id, reservationID)
	if err != nil {
		return nil, err
	}
	old := reservationValues(reservation)
	if err := reservation.Cancel(reason, uc.clock.Now()); err != nil {
		return nil, err
	}
	reservation.UpdatedAt = uc.clock.Now()
	if err := uc.reservations.Update(ctx, reservation); err != nil {
		return nil, err
	}
	values := reservationValues(reservation)
	values["cancelled_by"] = id.ActorID
	audit.DataOperation(ctx, uc.rec, "cancel", "reservation", itoa(reservation.ID), old, values)
	return reservation, nil
}

func (uc *ReservationUseCase) transition(ctx context.Context, id domain.Identity, reservationID int64, perm, action string, apply func(*domain.Reservation) error) (*domain.Reservation, error) {
	if err := uc.resolver.Require(ctx, id, perm); err != nil {
		return nil, err
	}
	reservation, err := uc.load(ctx, id, reservationID)
	if err != nil {
		return nil, err
	}
	old := reservationValues(reservation)
	if err := apply(reservation); err != nil {
		return nil, err
	}
	reservation.UpdatedAt = uc.clock.Now()
	if err := uc.reservations.Update(ctx, reservation); err != nil {
		return nil, err
	}
	audit.DataOperation(ctx, uc.rec, action, "reservation", itoa(reservation.ID), old, reservationValues(reservation))
	return reservation, nil
}

// load fetches the reservation and applies scope plus the driver self rule.
func (uc *ReservationUseCase) load(ctx context.Context, id domain.Identity, reservationID int64) (*domain.Reservation, error) {
	reservation, err := uc.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, domain.ErrNotFound("reservation", reservationID)
	}
	if err := scope.Require(ctx, uc.rec, id, reservation); err != nil {
		return nil, err
	}
	if id.Role == domain.RoleDriver {
		if id.DriverID == nil || *id.DriverID != reservation.DriverID {
			return nil, domain.ErrForbidden("drivers may only access their own reservations")
		}
	}
	return reservation, nil
}

func (uc *ReservationUseCase) validateInterval(start, end time.Time, purpose string) error {
	if start.IsZero() || end.IsZero() {
		return domain.ErrValidation("interval", "start and end are required")
	}
	if !end.After(start) {
		return domain.ErrValidation("end", "end must be after start")
	}
	if strings.TrimSpace(purpose) == "" {
		return domain.ErrValidation("purpose", "purpose is required")
	}
	return nil
}

func (uc *ReservationUseCase) build(id domain.Identity, vehicle *domain.Vehicle, req inbound.CreateReservationRequest, forced bool) *domain.Reservation {
	status := domain.ReservationPending
	if req.Confirmed {
		status = domain.ReservationConfirmed
	}
	orgUnit := int64(0)
	if vehicle.OrgUnitID != nil {
		orgUnit = *vehicle.OrgUnitID
	} else if id.OrgUnitID != nil {
		orgUnit = *id.OrgUnitID
	}
	now := uc.clock.Now()
	return &domain.Reservation{
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		ActorID:     id.ActorID,
		OrgUnitID:   orgUnit,
		Start:       req.Start,
		End:         req.End,
		Status:      status,
		Purpose:     req.Purpose,
		Destination: req.Destination,
		Notes:       req.Notes,
		Forced:      forced,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func reservationValues(r *domain.Reservation) map[string]interface{} {
	values := map[string]interface{}{
		"vehicle_id": r.VehicleID,
		"driver_id":  r.DriverID,
		"start":      r.Start,
		"end":        r.End,
		"status":     string(r.Status),
		"purpose":    r.Purpose,
	}
	if r.Destination != "" {
		values["destination"] = r.Destination
	}
	if r.ActualStartMileage != nil {
		values["actual_start_mileage"] = *r.ActualStartMileage
	}
	if r.ActualEndMileage != nil {
		values["actual_end_mileage"] = *r.ActualEndMileage
	}
	if r.CancellationReason != "" {
		values["cancellation_reason"] = r.CancellationReason
	}
	return values
}
