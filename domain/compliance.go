package domain

import "time"

// ComplianceKind identifies one of the tracked obligation families.
type ComplianceKind string

const (
	ComplianceInspection    ComplianceKind = "inspection"
	ComplianceInsurance     ComplianceKind = "insurance"
	ComplianceTax           ComplianceKind = "tax"
	ComplianceFine          ComplianceKind = "fine"
	ComplianceAuthorization ComplianceKind = "authorization"
	ComplianceRenting       ComplianceKind = "renting"
)

// PaymentStatus is shared by taxes, fines and insurance policies; the source
// system uses the same string values across all three.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentOverdue  PaymentStatus = "overdue"
	PaymentExempted PaymentStatus = "exempted"
)

// Default alert windows in days, per kind. Individual records may override.
const (
	AlertWindowInspection    = 30
	AlertWindowInsurance     = 30
	AlertWindowTax           = 15
	AlertWindowAuthorization = 30
	AlertWindowRenting       = 30
)

// ComplianceRecord is the uniform view the expiry predicates operate on.
// EffectiveEnd is the expiry date, due date or validity end of the record;
// records without a payment obligation report HasPayment() == false.
type ComplianceRecord interface {
	Kind() ComplianceKind
	EffectiveEnd() time.Time
	AlertWindowDays() int
	HasPayment() bool
	Payment() PaymentStatus
}

// IsExpiringSoon reports whether the record ends within its alert window,
// counted from today inclusive. For payable records only pending ones alert.
func IsExpiringSoon(r ComplianceRecord, today time.Time) bool {
	if r.HasPayment() && r.Payment() != PaymentPending {
		return false
	}
	days := daysUntil(r.EffectiveEnd(), today)
	return days >= 0 && days <= r.AlertWindowDays()
}

// IsOverdue reports whether the record's effective end has passed and, where
// a payment applies, that payment is still pending.
func IsOverdue(r ComplianceRecord, today time.Time) bool {
	if r.HasPayment() && r.Payment() != PaymentPending {
		return false
	}
	return truncateDay(r.EffectiveEnd()).Before(truncateDay(today))
}

// IsExpired reports whether the effective end has passed, regardless of any
// payment status.
func IsExpired(r ComplianceRecord, today time.Time) bool {
	return truncateDay(r.EffectiveEnd()).Before(truncateDay(today))
}

func daysUntil(end, today time.Time) int {
	return int(truncateDay(end).Sub(truncateDay(today)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Inspection is a periodic technical inspection record (ITV).
type Inspection struct {
	ID             int64     `json:"id"`
	VehicleID      int64     `json:"vehicle_id"`
	InspectionDate time.Time `json:"inspection_date"`
	ExpiryDate     time.Time `json:"expiry_date"`
	Result         string    `json:"result"`
	Center         string    `json:"inspection_center,omitempty"`
	AlertDays      int       `json:"alert_window_days"`
}

func (i *Inspection) Kind() ComplianceKind     { return ComplianceInspection }
func (i *Inspection) EffectiveEnd() time.Time  { return i.ExpiryDate }
func (i *Inspection) HasPayment() bool         { return false }
func (i *Inspection) Payment() PaymentStatus   { return "" }
func (i *Inspection) AlertWindowDays() int {
	if i.AlertDays > 0 {
		return i.AlertDays
	}
	return AlertWindowInspection
}

// InsurancePolicy covers a vehicle between StartDate and EndDate.
type InsurancePolicy struct {
	ID            int64         `json:"id"`
	VehicleID     int64         `json:"vehicle_id"`
	Company       string        `json:"insurance_company"`
	PolicyNumber  string        `json:"policy_number"`
	PremiumAmount float64       `json:"premium_amount"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	AlertDays     int           `json:"alert_window_days"`
}

func (p *InsurancePolicy) Kind() ComplianceKind    { return ComplianceInsurance }
func (p *InsurancePolicy) EffectiveEnd() time.Time { return p.EndDate }
func (p *InsurancePolicy) HasPayment() bool        { return true }
func (p *InsurancePolicy) Payment() PaymentStatus  { return p.PaymentStatus }
func (p *InsurancePolicy) AlertWindowDays() int {
	if p.AlertDays > 0 {
		return p.AlertDays
	}
	return AlertWindowInsurance
}

// VehicleTax is a yearly circulation tax with a due date.
type VehicleTax struct {
	ID            int64         `json:"id"`
	VehicleID     int64         `json:"vehicle_id"`
	TaxYear       int           `json:"tax_year"`
	Amount        float64       `json:"amount"`
	DueDate       time.Time     `json:"due_date"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	AlertDays     int           `json:"alert_window_days"`
}

func (t *VehicleTax) Kind() ComplianceKind    { return ComplianceTax }
func (t *VehicleTax) EffectiveEnd() time.Time { return t.DueDate }
func (t *VehicleTax) HasPayment() bool        { return true }
func (t *VehicleTax) Payment() PaymentStatus  { return t.PaymentStatus }
func (t *VehicleTax) AlertWindowDays() int {
	if t.AlertDays > 0 {
		return t.AlertDays
	}
	return AlertWindowTax
}

// Fine uses its payment deadline as the effective end; there is no default
// alert window beyond the deadline itself.
type Fine struct {
	ID              int64         `json:"id"`
	VehicleID       int64         `json:"vehicle_id"`
	DriverID        *int64        `json:"driver_id,omitempty"`
	FineNumber      string        `json:"fine_number"`
	Amount          float64       `json:"amount"`
	PaymentDeadline time.Time     `json:"payment_deadline"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	AlertDays       int           `json:"alert_window_days"`
}

func (f *Fine) Kind() ComplianceKind    { return ComplianceFine }
func (f *Fine) EffectiveEnd() time.Time { return f.PaymentDeadline }
func (f *Fine) HasPayment() bool        { return true }
func (f *Fine) Payment() PaymentStatus  { return f.PaymentStatus }
func (f *Fine) AlertWindowDays() int {
	if f.AlertDays > 0 {
		return f.AlertDays
	}
	return AlertWindowTax
}

// UrbanAuthorization permits access to a restricted urban zone (ZBE/LEZ).
type UrbanAuthorization struct {
	ID                  int64     `json:"id"`
	VehicleID           int64     `json:"vehicle_id"`
	AuthorizationNumber string    `json:"authorization_number"`
	Zone                string    `json:"zone_description,omitempty"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	AlertDays           int       `json:"alert_window_days"`
}

func (a *UrbanAuthorization) Kind() ComplianceKind    { return ComplianceAuthorization }
func (a *UrbanAuthorization) EffectiveEnd() time.Time { return a.EndDate }
func (a *UrbanAuthorization) HasPayment() bool        { return false }
func (a *UrbanAuthorization) Payment() PaymentStatus  { return "" }
func (a *UrbanAuthorization) AlertWindowDays() int {
	if a.AlertDays > 0 {
		return a.AlertDays
	}
	return AlertWindowAuthorization
}

// RentingContract binds a rented vehicle to its provider until EndDate.
type RentingContract struct {
	ID             int64     `json:"id"`
	VehicleID      int64     `json:"vehicle_id"`
	ContractNumber string    `json:"contract_number"`
	CompanyName    string    `json:"company_name"`
	MonthlyCost    float64   `json:"monthly_cost"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	AlertDays      int       `json:"alert_window_days"`
}

func (c *RentingContract) Kind() ComplianceKind    { return ComplianceRenting }
func (c *RentingContract) EffectiveEnd() time.Time { return c.EndDate }
func (c *RentingContract) HasPayment() bool        { return false }
func (c *RentingContract) Payment() PaymentStatus  { return "" }
func (c *RentingContract) AlertWindowDays() int {
	if c.AlertDays > 0 {
		return c.AlertDays
	}
	return AlertWindowRenting
}

// KindStats is the per-kind slice of the compliance dashboard.
type KindStats struct {
	Expired        int     `json:"expired"`
	ExpiringSoon   int     `json:"expiring_soon"`
	PendingPayment int     `json:"pending_payment"`
	Overdue        int     `json:"overdue"`
	PendingAmount  float64 `json:"pending_amount,omitempty"`
}

// Dashboard aggregates the current compliance snapshot per kind.
type Dashboard struct {
	Today time.Time                    `json:"today"`
	Kinds map[ComplianceKind]KindStats `json:"kinds"`
}
