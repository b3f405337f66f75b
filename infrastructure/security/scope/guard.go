package scope

import (
	"context"

	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
)

// Decision is the outcome of an organization-scope check.
type Decision int

const (
	Allow Decision = iota
	Deny
	NotFound
)

// Evaluate applies the containment rule: admins bypass, otherwise the
// resource's owning unit must equal the actor's unit exactly. Organizations
// form a tree but access does not propagate to descendants.
func Evaluate(id domain.Identity, resource domain.OrgScoped) Decision {
	if resource == nil {
		return NotFound
	}
	if id.IsAdmin() {
		return Allow
	}
	resourceOrg, ok := resource.OwningOrgUnit()
	if !ok {
		return Deny
	}
	if id.OrgUnitID == nil {
		return Deny
	}
	if resourceOrg == *id.OrgUnitID {
		return Allow
	}
	return Deny
}

// Require converts the decision into the error the handler chain surfaces.
// It runs after the permission check and before business logic. Denials
// leave a permission_check entry so scope rejections show up in the trail.
func Require(ctx context.Context, rec audit.Recorder, id domain.Identity, resource domain.OrgScoped) error {
	switch Evaluate(id, resource) {
	case Allow:
		return nil
	case NotFound:
		return domain.NewAppError(domain.KindNotFound, "Resource not found", "", nil)
	default:
		audit.PermissionCheck(ctx, rec, "organization_scope", false, 0, "resource outside actor organization unit")
		return domain.ErrForbidden("resource outside your organization unit")
	}
}
