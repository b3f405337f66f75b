package domain

import "time"

type VehicleStatus string

const (
	VehicleAvailable    VehicleStatus = "available"
	VehicleInUse        VehicleStatus = "in_use"
	VehicleMaintenance  VehicleStatus = "maintenance"
	VehicleOutOfService VehicleStatus = "out_of_service"
)

// Vehicle is a fleet vehicle. An empty VIN is stored as absent so multiple
// VIN-less vehicles can coexist under the partial unique index.
type Vehicle struct {
	ID             int64         `json:"id"`
	LicensePlate   string        `json:"license_plate"`
	Make           string        `json:"make"`
	Model          string        `json:"model"`
	Year           int           `json:"year"`
	VIN            *string       `json:"vin,omitempty"`
	Status         VehicleStatus `json:"status"`
	OrgUnitID      *int64        `json:"organization_unit_id,omitempty"`
	CurrentMileage int           `json:"current_mileage"`
	IsActive       bool          `json:"is_active"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (v *Vehicle) OwningOrgUnit() (int64, bool) {
	if v.OrgUnitID == nil {
		return 0, false
	}
	return *v.OrgUnitID, true
}
