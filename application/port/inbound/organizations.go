package inbound

import (
	"context"

	"github.com/joestar02/fleetdesk/domain"
)

type OrganizationUseCase interface {
	Get(ctx context.Context, id domain.Identity, orgUnitID int64) (*domain.OrganizationUnit, error)
}
