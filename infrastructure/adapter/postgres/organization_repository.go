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

type OrganizationRepositoryAdapter struct {
	db *audit.DB
}

func NewOrganizationRepositoryAdapter(db *audit.DB) outbound.OrganizationRepository {
	return &OrganizationRepositoryAdapter{db: db}
}

func (r *OrganizationRepositoryAdapter) FindByID(ctx context.Context, id int64) (*domain.OrganizationUnit, error) {
	query := `
		SELECT id, code, name, description, parent_id, manager_name,
			contact_email, is_active, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	var u domain.OrganizationUnit
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID,
		&u.Code,
		&u.Name,
		&u.Description,
		&u.ParentID,
		&u.ManagerName,
		&u.ContactEmail,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrOrgUnitNotFound
		}
		return nil, fmt.Errorf("failed to find organization unit: %w", err)
	}
	return &u, nil
}
