package inbound

import (
	"context"

	"github.com/joestar02/fleetdesk/domain"
)

type ComplianceUseCase interface {
	Dashboard(ctx context.Context, id domain.Identity) (*domain.Dashboard, error)
}
