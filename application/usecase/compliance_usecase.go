package usecase

import (
	"context"
	"time"

	"github.com/joestar02/fleetdesk/application/port/inbound"
	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
	"github.com/joestar02/fleetdesk/infrastructure/security/permission"
)

var _ inbound.ComplianceUseCase = (*ComplianceUseCase)(nil)

// ComplianceUseCase builds the expiry dashboard across all tracked
// obligation families.
type ComplianceUseCase struct {
	records  outbound.ComplianceRepository
	resolver *permission.Resolver
	clock    clock.Clock
}

func NewComplianceUseCase(records outbound.ComplianceRepository, resolver *permission.Resolver, clk clock.Clock) *ComplianceUseCase {
	return &ComplianceUseCase{records: records, resolver: resolver, clock: clk}
}

// Dashboard counts expired, expiring-soon and payment-pending records per
// kind, as of the server's current day.
func (uc *ComplianceUseCase) Dashboard(ctx context.Context, id domain.Identity) (*domain.Dashboard, error) {
	if err := uc.resolver.Require(ctx, id, permission.ReportView); err != nil {
		return nil, err
	}
	today := uc.clock.Now()
	dash := &domain.Dashboard{
		Today: today,
		Kinds: map[domain.ComplianceKind]domain.KindStats{},
	}

	inspections, err := uc.records.Inspections(ctx)
	if err != nil {
		return nil, err
	}
	dash.Kinds[domain.ComplianceInspection] = tally(asRecords(inspections), today)

	insurances, err := uc.records.Insurances(ctx)
	if err != nil {
		return nil, err
	}
	stats := tally(asRecords(insurances), today)
	for _, p := range insurances {
		if p.PaymentStatus == domain.PaymentPending {
			stats.PendingAmount += p.PremiumAmount
		}
	}
	dash.Kinds[domain.ComplianceInsurance] = stats

	taxes, err := uc.records.Taxes(ctx)
	if err != nil {
		return nil, err
	}
	stats = tally(asRecords(taxes), today)
	for _, t := range taxes {
		if t.PaymentStatus == domain.PaymentPending {
			stats.PendingAmount += t.Amount
		}
	}
	dash.Kinds[domain.ComplianceTax] = stats

	fines, err := uc.records.Fines(ctx)
	if err != nil {
		return nil, err
	}
	stats = tally(asRecords(fines), today)
	for _, f := range fines {
		if f.PaymentStatus == domain.PaymentPending {
			stats.PendingAmount += f.Amount
		}
	}
	dash.Kinds[domain.ComplianceFine] = stats

	authorizations, err := uc.records.Authorizations(ctx)
	if err != nil {
		return nil, err
	}
	dash.Kinds[domain.ComplianceAuthorization] = tally(asRecords(authorizations), today)

	contracts, err := uc.records.RentingContracts(ctx)
	if err != nil {
		return nil, err
	}
	dash.Kinds[domain.ComplianceRenting] = tally(asRecords(contracts), today)

	return dash, nil
}

func tally(records []domain.ComplianceRecord, today time.Time) domain.KindStats {
	var stats domain.KindStats
	for _, r := range records {
		if domain.IsExpired(r, today) {
			stats.Expired++
		}
		if domain.IsExpiringSoon(r, today) {
			stats.ExpiringSoon++
		}
		if domain.IsOverdue(r, today) {
			stats.Overdue++
		}
		if r.HasPayment() && r.Payment() == domain.PaymentPending {
			stats.PendingPayment++
		}
	}
	return stats
}

func asRecords[T domain.ComplianceRecord](items []T) []domain.ComplianceRecord {
	records := make([]domain.ComplianceRecord, len(items))
	for i, item := range items {
		records[i] = item
	}
	return records
}
