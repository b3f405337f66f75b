package domain

import "time"

// OrganizationUnit is a node in the tenant's organizational tree. Units form
// a tree via ParentID; soft-deletion goes through IsActive.
type OrganizationUnit struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ParentID     *int64    `json:"parent_id,omitempty"`
	ManagerName  string    `json:"manager_name,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrgScoped is implemented by every organization-scoped entity. The scope
// guard consumes this instead of walking related attributes.
type OrgScoped interface {
	// OwningOrgUnit returns the id of the owning organization unit and
	// whether one could be resolved.
	OwningOrgUnit() (int64, bool)
}

func (u *OrganizationUnit) OwningOrgUnit() (int64, bool) {
	return u.ID, true
}
