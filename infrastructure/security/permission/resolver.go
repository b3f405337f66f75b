package permission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
)

// Resolver answers permission and role questions for an identity. The table
// is built once from the static defaults plus any persisted overrides and is
// read-only afterwards.
type Resolver struct {
	rec   audit.Recorder
	clock clock.Clock
	table map[domain.Role]map[string]struct{}
}

// NewResolver merges the static table with persisted per-role overrides.
// An override replaces the static set for that role entirely.
func NewResolver(rec audit.Recorder, clk clock.Clock, overrides map[domain.Role][]string) *Resolver {
	table := make(map[domain.Role]map[string]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		table[role] = toSet(perms)
	}
	for role, perms := range overrides {
		table[role] = toSet(perms)
	}
	return &Resolver{rec: rec, clock: clk, table: table}
}

func toSet(perms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// May answers the raw permission question without auditing.
func (r *Resolver) May(id domain.Identity, perm string) bool {
	if id.IsSuperuser {
		return true
	}
	_, ok := r.table[id.Role][perm]
	return ok
}

// Require fails with Unauthorized when no actor is present and Forbidden
// when the actor lacks the permission. Every call emits a permission_check
// audit event with the outcome and its duration.
func (r *Resolver) Require(ctx context.Context, id domain.Identity, perm string) error {
	start := r.clock.Now()

	if !id.Authenticated() {
		audit.PermissionCheck(ctx, r.rec, perm, false, r.sinceMS(start), "not_authenticated")
		return domain.ErrUnauthorized("no authenticated actor")
	}
	if id.IsSuperuser {
		audit.PermissionCheck(ctx, r.rec, perm, true, r.sinceMS(start), "superuser_access")
		return nil
	}
	if _, ok := r.table[id.Role][perm]; !ok {
		audit.PermissionCheck(ctx, r.rec, perm, false, r.sinceMS(start), "insufficient_permissions")
		return domain.ErrForbidden(fmt.Sprintf("permission %s required", perm))
	}
	audit.PermissionCheck(ctx, r.rec, perm, true, r.sinceMS(start), "")
	return nil
}

// RequireRole is the role-set analogue of Require.
func (r *Resolver) RequireRole(ctx context.Context, id domain.Identity, roles ...domain.Role) error {
	start := r.clock.Now()
	label := "role:" + joinRoles(roles)

	if !id.Authenticated() {
		audit.PermissionCheck(ctx, r.rec, label, false, r.sinceMS(start), "not_authenticated")
		return domain.ErrUnauthorized("no authenticated actor")
	}
	if id.IsSuperuser {
		audit.PermissionCheck(ctx, r.rec, label, true, r.sinceMS(start), "superuser_access")
		return nil
	}
	for _, role := range roles {
		if id.Role == role {
			audit.PermissionCheck(ctx, r.rec, label, true, r.sinceMS(start), "role_match")
			return nil
		}
	}
	audit.PermissionCheck(ctx, r.rec, label, false, r.sinceMS(start), "insufficient_role")
	return domain.ErrForbidden(fmt.Sprintf("one of roles %s required", joinRoles(roles)))
}

func (r *Resolver) sinceMS(start time.Time) float64 {
	return float64(r.clock.Now().Sub(start).Microseconds()) / 1000.0
}

func joinRoles(roles []domain.Role) string {
	parts := make([]string, len(roles))
	for i, role := range roles {
		parts[i] = string(role)
	}
	return strings.Join(parts, ",")
}
