package postgres

import (
	"context"
	"fmt"

	"github.com/joestar02/fleetdesk/application/port/outbound"
	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/audit"
)

type ComplianceRepositoryAdapter struct {
	db *audit.DB
}

func NewComplianceRepositoryAdapter(db *audit.DB) outbound.ComplianceRepository {
	return &ComplianceRepositoryAdapter{db: db}
}

func (r *ComplianceRepositoryAdapter) Inspections(ctx context.Context) ([]*domain.Inspection, error) {
	query := `
		SELECT id, vehicle_id, inspection_date, expiry_date, result,
			COALESCE(inspection_center, ''), COALESCE(alert_window_days, 0)
		FROM inspections
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	defer rows.Close()

	var items []*domain.Inspection
	for rows.Next() {
		var i domain.Inspection
		if err := rows.Scan(&i.ID, &i.VehicleID, &i.InspectionDate, &i.ExpiryDate, &i.Result, &i.Center, &i.AlertDays); err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		items = append(items, &i)
	}
	return items, rows.Err()
}

func (r *ComplianceRepositoryAdapter) Insurances(ctx context.Context) ([]*domain.InsurancePolicy, error) {
	query := `
		SELECT id, vehicle_id, insurance_company, policy_number, premium_amount,
			start_date, end_date, payment_status, COALESCE(alert_window_days, 0)
		FROM insurance_policies
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list insurance policies: %w", err)
	}
	defer rows.Close()

	var items []*domain.InsurancePolicy
	for rows.Next() {
		var p domain.InsurancePolicy
		var payment string
		if err := rows.Scan(&p.ID, &p.VehicleID, &p.Company, &p.PolicyNumber, &p.PremiumAmount, &p.StartDate, &p.EndDate, &payment, &p.AlertDays); err != nil {
			return nil, fmt.Errorf("failed to scan insurance policy: %w", err)
		}
		p.PaymentStatus = domain.PaymentStatus(payment)
		items = append(items, &p)
	}
	return items, rows.Err()
}

func (r *ComplianceRepositoryAdapter) Taxes(ctx context.Context) ([]*domain.VehicleTax, error) {
	query := `
		SELECT id, vehicle_id, tax_year, amount, due_date, payment_status,
			COALESCE(alert_window_days, 0)
		FROM vehicle_taxes
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicle taxes: %w", err)
	}
	defer rows.Close()

	var items []*domain.VehicleTax
	for rows.Next() {
		var t domain.VehicleTax
		var payment string
		if err := rows.Scan(&t.ID, &t.VehicleID, &t.TaxYear, &t.Amount, &t.DueDate, &payment, &t.AlertDays); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle tax: %w", err)
		}
		t.PaymentStatus = domain.PaymentStatus(payment)
		items = append(items, &t)
	}
	return items, rows.Err()
}

func (r *ComplianceRepositoryAdapter) Fines(ctx context.Context) ([]*domain.Fine, error) {
	query := `
		SELECT id, vehicle_id, driver_id, fine_number, amount, payment_deadline,
			payment_status, COALESCE(alert_window_days, 0)
		FROM fines
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list fines: %w", err)
	}
	defer rows.Close()

	var items []*domain.Fine
	for rows.Next() {
		var f domain.Fine
		var payment string
		if err := rows.Scan(&f.ID, &f.VehicleID, &f.DriverID, &f.FineNumber, &f.Amount, &f.PaymentDeadline, &payment, &f.AlertDays); err != nil {
			return nil, fmt.Errorf("failed to scan fine: %w", err)
		}
		f.PaymentStatus = domain.PaymentStatus(payment)
		items = append(items, &f)
	}
	return items, rows.Err()
}

func (r *ComplianceRepositoryAdapter) Authorizations(ctx context.Context) ([]*domain.UrbanAuthorization, error) {
	query := `
		SELECT id, vehicle_id, authorization_number, COALESCE(zone_description, ''),
			start_date, end_date, COALESCE(alert_window_days, 0)
		FROM urban_authorizations
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list urban authorizations: %w", err)
	}
	defer rows.Close()

	var items []*domain.UrbanAuthorization
	for rows.Next() {
		var a domain.UrbanAuthorization
		if err := rows.Scan(&a.ID, &a.VehicleID, &a.AuthorizationNumber, &a.Zone, &a.StartDate, &a.EndDate, &a.AlertDays); err != nil {
			return nil, fmt.Errorf("failed to scan urban authorization: %w", err)
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *ComplianceRepositoryAdapter) RentingContracts(ctx context.Context) ([]*domain.RentingContract, error) {
	query := `
		SELECT id, vehicle_id, contract_number, company_name, monthly_cost,
			start_date, end_date, COALESCE(alert_window_days, 0)
		FROM renting_contracts
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list renting contracts: %w", err)
	}
	defer rows.Close()

	var items []*domain.RentingContract
	for rows.Next() {
		var c domain.RentingContract
		if err := rows.Scan(&c.ID, &c.VehicleID, &c.ContractNumber, &c.CompanyName, &c.MonthlyCost, &c.StartDate, &c.EndDate, &c.AlertDays); err != nil {
			return nil, fmt.Errorf("failed to scan renting contract: %w", err)
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
