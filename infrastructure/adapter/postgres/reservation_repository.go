package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
)

type ReservationRepositoryAdapter struct {
	db *audit.DB
}

func NewReservationRepositoryAdapter(db *audit.DB) outbound.ReservationRepository {
	return &ReservationRepositoryAdapter{db: db}
}

const reservationColumns = `
	id, vehicle_id, driver_id, actor_id, organization_unit_id,
	start_time, end_time, status, purpose, destination, notes, forced,
	actual_start, actual_end, actual_start_mileage, actual_end_mileage,
	cancellation_reason, cancelled_at, created_at, updated_at
`

func (r *ReservationRepositoryAdapter) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to find reservation by id: %w", err)
	}
	return reservation, nil
}

// FindConflicting applies the half-open overlap predicate: an existing
// reservation conflicts when it starts before the candidate ends and ends
// after the candidate starts. Cancelled reservations never conflict.
func (r *ReservationRepositoryAdapter) FindConflicting(ctx context.Context, vehicleID int64, start, end time.Time, excludeID int64) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE vehicle_id = $1
		  AND status != 'cancelled'
		  AND start_time < $3
		  AND end_time > $2
	`
	args := []interface{}{vehicleID, start, end}
	if excludeID != 0 {
		query += ` AND id != $4`
		args = append(args, excludeID)
	}
	query += ` ORDER BY start_time LIMIT 1`

	reservation, err := scanReservation(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check for conflicting reservations: %w", err)
	}
	return reservation, nil
}

func (r *ReservationRepositoryAdapter) Create(ctx context.Context, reservation *domain.Reservation) error {
	query := `
		INSERT INTO reservations (vehicle_id, driver_id, actor_id, organization_unit_id,
			start_time, end_time, status, purpose, destination, notes, forced, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		reservation.VehicleID,
		reservation.DriverID,
		reservation.ActorID,
		reservation.OrgUnitID,
		reservation.Start,
		reservation.End,
		string(reservation.Status),
		reservation.Purpose,
		reservation.Destination,
		reservation.Notes,
		reservation.Forced,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	).Scan(&reservation.ID)
	if err != nil {
		if isExclusionViolation(err) {
			return domain.ErrReservationConflict(0)
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepositoryAdapter) Update(ctx context.Context, reservation *domain.Reservation) error {
	res, err := r.db.ExecContext(ctx, updateReservationSQL, reservationUpdateArgs(reservation)...)
	if err != nil {
		if isExclusionViolation(err) {
			return domain.ErrReservationConflict(0)
		}
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return outbound.ErrReservationNotFound
	}
	return nil
}

// CompleteWithMileage writes the completed reservation and advances the
// vehicle odometer in one transaction. GREATEST keeps the mileage monotonic
// when a stale reading comes in.
func (r *ReservationRepositoryAdapter) CompleteWithMileage(ctx context.Context, reservation *domain.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, updateReservationSQL, reservationUpdateArgs(reservation)...); err != nil {
		return fmt.Errorf("failed to complete reservation: %w", err)
	}
	if reservation.ActualEndMileage != nil {
		mileageSQL := `
			UPDATE vehicles
			SET current_mileage = GREATEST(current_mileage, $2), updated_at = $3
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, mileageSQL, reservation.VehicleID, *reservation.ActualEndMileage, reservation.UpdatedAt); err != nil {
			return fmt.Errorf("failed to advance vehicle mileage: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation completion: %w", err)
	}
	return nil
}

func (r *ReservationRepositoryAdapter) List(ctx context.Context, filter outbound.ReservationFilter) ([]*domain.Reservation, int, error) {
	where, args := reservationFilterClauses(filter)

	countQuery := `SELECT COUNT(*) FROM reservations` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM reservations%s ORDER BY start_time DESC LIMIT $%d OFFSET $%d`,
		reservationColumns, where, len(args)+1, len(args)+2)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		reservation, err := scanReservationRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate reservations: %w", err)
	}
	return reservations, total, nil
}

const updateReservationSQL = `
	UPDATE reservations
	SET vehicle_id = $2, driver_id = $3, start_time = $4, end_time = $5,
		status = $6, purpose = $7, destination = $8, notes = $9,
		actual_start = $10, actual_end = $11,
		actual_start_mileage = $12, actual_end_mileage = $13,
		cancellation_reason = $14, cancelled_at = $15, updated_at = $16
	WHERE id = $1
`

func reservationUpdateArgs(r *domain.Reservation) []interface{} {
	return []interface{}{
		r.ID,
		r.VehicleID,
		r.DriverID,
		r.Start,
		r.End,
		string(r.Status),
		r.Purpose,
		r.Destination,
		r.Notes,
		r.ActualStart,
		r.ActualEnd,
		r.ActualStartMileage,
		r.ActualEndMileage,
		r.CancellationReason,
		r.CancelledAt,
		r.UpdatedAt,
	}
}

func reservationFilterClauses(filter outbound.ReservationFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	next := func() int { return len(args) + 1 }

	if filter.VehicleID != nil {
		clauses = append(clauses, fmt.Sprintf("vehicle_id = $%d", next()))
		args = append(args, *filter.VehicleID)
	}
	if filter.DriverID != nil {
		clauses = append(clauses, fmt.Sprintf("driver_id = $%d", next()))
		args = append(args, *filter.DriverID)
	}
	if filter.Status != nil {
		clauses = append(clauses, fmt.Sprintf("status = $%d", next()))
		args = append(args, string(*filter.Status))
	}
	if filter.DateFrom != nil {
		clauses = append(clauses, fmt.Sprintf("end_time > $%d", next()))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		clauses = append(clauses, fmt.Sprintf("start_time < $%d", next()))
		args = append(args, *filter.DateTo)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row *sql.Row) (*domain.Reservation, error) {
	return scanReservationFrom(row)
}

func scanReservationRows(rows *sql.Rows) (*domain.Reservation, error) {
	return scanReservationFrom(rows)
}

func scanReservationFrom(s rowScanner) (*domain.Reservation, error) {
	var r domain.Reservation
	var status string
	var destination, notes, cancellationReason sql.NullString
	err := s.Scan(
		&r.ID,
		&r.VehicleID,
		&r.DriverID,
		&r.ActorID,
		&r.OrgUnitID,
		&r.Start,
		&r.End,
		&status,
		&r.Purpose,
		&destination,
		&notes,
		&r.Forced,
		&r.ActualStart,
		&r.ActualEnd,
		&r.ActualStartMileage,
		&r.ActualEndMileage,
		&cancellationReason,
		&r.CancelledAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = domain.ReservationStatus(status)
	r.Destination = destination.String
	r.Notes = notes.String
	r.CancellationReason = cancellationReason.String
	return &r, nil
}
