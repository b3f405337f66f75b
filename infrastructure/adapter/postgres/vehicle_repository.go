package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
)

type VehicleRepositoryAdapter struct {
	db *audit.DB
}

func NewVehicleRepositoryAdapter(db *audit.DB) outbound.VehicleRepository {
	return &VehicleRepositoryAdapter{db: db}
}

func (r *VehicleRepositoryAdapter) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query := `
		SELECT id, license_plate, make, model, year, vin, status,
			organization_unit_id, current_mileage, is_active, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`
	var v domain.Vehicle
	var status string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.LicensePlate,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.VIN,
		&status,
		&v.OrgUnitID,
		&v.CurrentMileage,
		&v.IsActive,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to find vehicle by id: %w", err)
	}
	v.Status = domain.VehicleStatus(status)
	return &v, nil
}
