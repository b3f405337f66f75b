package domain

import "time"

type DriverStatus string

const (
	DriverActive    DriverStatus = "active"
	DriverInactive  DriverStatus = "inactive"
	DriverSuspended DriverStatus = "suspended"
)

type DriverType string

const (
	DriverOfficial   DriverType = "official"
	DriverAuthorized DriverType = "authorized"
)

// Driver is a person allowed to use fleet vehicles. At most one Actor links
// to a Driver (UserID is unique when set).
type Driver struct {
	ID             int64        `json:"id"`
	FirstName      string       `json:"first_name"`
	LastName       string       `json:"last_name"`
	DocumentNumber string       `json:"document_number"`
	LicenseNumber  string       `json:"license_number"`
	LicenseExpiry  time.Time    `json:"license_expiry"`
	Type           DriverType   `json:"driver_type"`
	Status         DriverStatus `json:"status"`
	OrgUnitID      *int64       `json:"organization_unit_id,omitempty"`
	UserID         *int64       `json:"user_id,omitempty"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (d *Driver) OwningOrgUnit() (int64, bool) {
	if d.OrgUnitID == nil {
		return 0, false
	}
	return *d.OrgUnitID, true
}
