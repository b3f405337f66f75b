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

type DriverRepositoryAdapter struct {
	db *audit.DB
}

func NewDriverRepositoryAdapter(db *audit.DB) outbound.DriverRepository {
	return &DriverRepositoryAdapter{db: db}
}

const driverColumns = `
	id, first_name, last_name, document_number, license_number, license_expiry,
	driver_type, status, organization_unit_id, user_id, is_active, created_at, updated_at
`

func (r *DriverRepositoryAdapter) FindByID(ctx context.Context, id int64) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *DriverRepositoryAdapter) FindByUserID(ctx context.Context, userID int64) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE user_id = $1`
	return r.findOne(ctx, query, userID)
}

func (r *DriverRepositoryAdapter) findOne(ctx context.Context, query string, arg interface{}) (*domain.Driver, error) {
	var d domain.Driver
	var driverType, status string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&d.ID,
		&d.FirstName,
		&d.LastName,
		&d.DocumentNumber,
		&d.LicenseNumber,
		&d.LicenseExpiry,
		&driverType,
		&status,
		&d.OrgUnitID,
		&d.UserID,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrDriverNotFound
		}
		return nil, fmt.Errorf("failed to find driver: %w", err)
	}
	d.Type = domain.DriverType(driverType)
	d.Status = domain.DriverStatus(status)
	return &d, nil
}
