package inbound

import (
	"context"
	"time"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
)

// CreateReservationRequest carries the planned interval. Confirmed selects
// the initial status: the browser flow creates reservations as confirmed
// while API clients create them as pending.
type CreateReservationRequest struct {
	VehicleID   int64
	DriverID    int64
	Start       time.Time
	End         time.Time
	Purpose     string
	Destination string
	Notes       string
	Confirmed   bool
}

// UpdateReservationRequest rebinds the planned interval; nil fields keep the
// stored value.
type UpdateReservationRequest struct {
	VehicleID   *int64
	DriverID    *int64
	Start       *time.Time
	End         *time.Time
	Purpose     *string
	Destination *string
	Notes       *string
}

type ReservationUseCase interface {
	Create(ctx context.Context, id domain.Identity, req CreateReservationRequest) (*domain.Reservation, error)
	ForceCreate(ctx context.Context, id domain.Identity, req CreateReservationRequest) (*domain.Reservation, error)
	Update(ctx context.Context, id domain.Identity, reservationID int64, req UpdateReservationRequest) (*domain.Reservation, error)
	Get(ctx context.Context, id domain.Identity, reservationID int64) (*domain.Reservation, error)
	List(ctx context.Context, id domain.Identity, filter outbound.ReservationFilter) ([]*domain.Reservation, int, error)
	Confirm(ctx context.Context, id domain.Identity, reservationID int64) (*domain.Reservation, error)
	Start(ctx context.Context, id domain.Identity, reservationID int64, mileage int) (*domain.Reservation, error)
	Complete(ctx context.Context, id domain.Identity, reservationID int64, mileage int, notes string) (*domain.Reservation, error)
	Cancel(ctx context.Context, id domain.Identity, reservationID int64, reason string) (*domain.Reservation, error)
}
