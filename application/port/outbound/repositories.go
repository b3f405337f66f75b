package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/joestar02/fleetdesk/domain"
)

var (
	ErrActorNotFound       = errors.New("actor not found")
	ErrVehicleNotFound     = errors.New("vehicle not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrOrgUnitNotFound     = errors.New("organization unit not found")
)

type ActorRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Actor, error)
	// FindByLogin matches username or email, case-insensitively.
	FindByLogin(ctx context.Context, login string) (*domain.Actor, error)
	Create(ctx context.Context, actor *domain.Actor) error
	UpdateLastLogin(ctx context.Context, id int64, when time.Time) error
	// RolePermissionOverrides loads the persisted permission table, keyed by
	// role. An empty map means the static defaults apply unchanged.
	RolePermissionOverrides(ctx context.Context) (map[domain.Role][]string, error)
}

type VehicleRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

type DriverRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Driver, error)
	FindByUserID(ctx context.Context, userID int64) (*domain.Driver, error)
}

type OrganizationRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.OrganizationUnit, error)
}

// ReservationFilter narrows the reservation list; zero page values default to
// the first page of twenty.
type ReservationFilter struct {
	VehicleID *int64
	DriverID  *int64
	Status    *domain.ReservationStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PerPage   int
}

type ReservationRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Reservation, error)
	// FindConflicting returns the first non-cancelled reservation on the
	// vehicle whose half-open interval overlaps [start, end), excluding
	// excludeID when non-zero. Nil means no conflict.
	FindConflicting(ctx context.Context, vehicleID int64, start, end time.Time, excludeID int64) (*domain.Reservation, error)
	// Create persists the reservation; a database exclusion-constraint
	// violation surfaces as a Conflict error.
	Create(ctx context.Context, r *domain.Reservation) error
	Update(ctx context.Context, r *domain.Reservation) error
	// CompleteWithMileage persists the completed reservation and advances
	// the vehicle's mileage (monotonic) in the same transaction.
	CompleteWithMileage(ctx context.Context, r *domain.Reservation) error
	List(ctx context.Context, filter ReservationFilter) ([]*domain.Reservation, int, error)
}

type ComplianceRepository interface {
	Inspections(ctx context.Context) ([]*domain.Inspection, error)
	Insurances(ctx context.Context) ([]*domain.InsurancePolicy, error)
	Taxes(ctx context.Context) ([]*domain.VehicleTax, error)
	Fines(ctx context.Context) ([]*domain.Fine, error)
	Authorizations(ctx context.Context) ([]*domain.UrbanAuthorization, error)
	RentingContracts(ctx context.Context) ([]*domain.RentingContract, error)
}
