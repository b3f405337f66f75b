package usecase

import (
	"context"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
	"github.com/joestar02/fleetdesk/infrastructure/security/permission"
	"github.com/joestar02/fleetdesk/infrastructure/security/scope"
)

var _ inbound.OrganizationUseCase = (*OrganizationUseCase)(nil)

// OrganizationUseCase exposes read access to organization units.
type OrganizationUseCase struct {
	organizations outbound.OrganizationRepository
	resolver      *permission.Resolver
	rec           audit.Recorder
}

func NewOrganizationUseCase(organizations outbound.OrganizationRepository, resolver *permission.Resolver, rec audit.Recorder) *OrganizationUseCase {
	return &OrganizationUseCase{organizations: organizations, resolver: resolver, rec: rec}
}

// Get returns one unit. Non-admin actors only see their own unit; the tree
// does not grant parents access to children.
func (uc *OrganizationUseCase) Get(ctx context.Context, id domain.Identity, orgUnitID int64) (*domain.OrganizationUnit, error) {
	if err := uc.resolver.Require(ctx, id, permission.OrganizationView); err != nil {
		return nil, err
	}
	unit, err := uc.organizations.FindByID(ctx, orgUnitID)
	if err != nil {
		return nil, domain.ErrNotFound("organization unit", orgUnitID)
	}
	if err := scope.Require(ctx, uc.rec, id, unit); err != nil {
		return nil, err
	}
	return unit, nil
}
