package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
)

type ActorRepositoryAdapter struct {
	db *audit.DB
}

func NewActorRepositoryAdapter(db *audit.DB) outbound.ActorRepository {
	return &ActorRepositoryAdapter{db: db}
}

const actorColumns = `
	id, username, email, hashed_password, first_name, last_name, role,
	is_active, is_superuser, organization_unit_id, driver_id, last_login,
	created_at, updated_at
`

func (r *ActorRepositoryAdapter) FindByID(ctx context.Context, id int64) (*domain.Actor, error) {
	query := `SELECT ` + actorColumns + ` FROM users WHERE id = $1`
	actor, err := scanActor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrActorNotFound
		}
		return nil, fmt.Errorf("failed to find actor by id: %w", err)
	}
	return actor, nil
}

func (r *ActorRepositoryAdapter) FindByLogin(ctx context.Context, login string) (*domain.Actor, error) {
	if login == "" {
		return nil, outbound.ErrActorNotFound
	}
	query := `SELECT ` + actorColumns + ` FROM users WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1) LIMIT 1`
	actor, err := scanActor(r.db.QueryRowContext(ctx, query, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrActorNotFound
		}
		return nil, fmt.Errorf("failed to find actor by login: %w", err)
	}
	return actor, nil
}

func (r *ActorRepositoryAdapter) Create(ctx context.Context, actor *domain.Actor) error {
	if actor == nil {
		return fmt.Errorf("actor cannot be nil")
	}
	query := `
		INSERT INTO users (username, email, hashed_password, first_name, last_name, role,
			is_active, is_superuser, organization_unit_id, driver_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		actor.Username,
		actor.Email,
		actor.HashedPassword,
		actor.FirstName,
		actor.LastName,
		string(actor.Role),
		actor.IsActive,
		actor.IsSuperuser,
		actor.OrgUnitID,
		actor.DriverID,
		actor.CreatedAt,
		actor.UpdatedAt,
	).Scan(&actor.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewAppError(domain.KindConflict, "Username or email already in use", "", err)
		}
		return fmt.Errorf("failed to create actor: %w", err)
	}
	return nil
}

func (r *ActorRepositoryAdapter) UpdateLastLogin(ctx context.Context, id int64, when time.Time) error {
	query := `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, when)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return outbound.ErrActorNotFound
	}
	return nil
}

func (r *ActorRepositoryAdapter) RolePermissionOverrides(ctx context.Context) (map[domain.Role][]string, error) {
	query := `SELECT role, permission FROM role_permissions ORDER BY role, permission`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load permission overrides: %w", err)
	}
	defer rows.Close()

	overrides := map[domain.Role][]string{}
	for rows.Next() {
		var role, perm string
		if err := rows.Scan(&role, &perm); err != nil {
			return nil, fmt.Errorf("failed to scan permission override: %w", err)
		}
		overrides[domain.Role(role)] = append(overrides[domain.Role(role)], perm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate permission overrides: %w", err)
	}
	return overrides, nil
}

func scanActor(row *sql.Row) (*domain.Actor, error) {
	var actor domain.Actor
	var role string
	err := row.Scan(
		&actor.ID,
		&actor.Username,
		&actor.Email,
		&actor.HashedPassword,
		&actor.FirstName,
		&actor.LastName,
		&role,
		&actor.IsActive,
		&actor.IsSuperuser,
		&actor.OrgUnitID,
		&actor.DriverID,
		&actor.LastLogin,
		&actor.CreatedAt,
		&actor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	actor.Role = domain.Role(role)
	return &actor, nil
}
