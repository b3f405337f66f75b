package domain

import "time"

// Role determines the permission set an actor receives.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleFleetManager      Role = "fleet_manager"
	RoleOperationsManager Role = "operations_manager"
	RoleDriver            Role = "driver"
	RoleViewer            Role = "viewer"
)

// Actor is an authenticated account. Username and email are unique
// case-insensitively. Inactive actors fail every authentication attempt.
type Actor struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Role           Role       `json:"role"`
	IsActive       bool       `json:"is_active"`
	IsSuperuser    bool       `json:"is_superuser"`
	OrgUnitID      *int64     `json:"organization_unit_id,omitempty"`
	DriverID       *int64     `json:"driver_id,omitempty"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FullName falls back to the username when no name fields are set.
func (a *Actor) FullName() string {
	if a.FirstName != "" && a.LastName != "" {
		return a.FirstName + " " + a.LastName
	}
	return a.Username
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFleetManager, RoleOperationsManager, RoleDriver, RoleViewer:
		return true
	}
	return false
}
