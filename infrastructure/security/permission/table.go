package permission

import "github.com/joestar02/fleetdesk/domain"

// Permission strings follow the resource:action form.
const (
	VehicleView   = "vehicle:view"
	VehicleCreate = "vehicle:create"
	VehicleEdit   = "vehicle:edit"
	VehicleDelete = "vehicle:delete"

	ReservationView   = "reservation:view"
	ReservationCreate = "reservation:create"
	ReservationEdit   = "reservation:edit"
	ReservationCancel = "reservation:cancel"

	DriverView   = "driver:view"
	DriverCreate = "driver:create"
	DriverEdit   = "driver:edit"

	AssignmentView   = "assignment:view"
	AssignmentCreate = "assignment:create"
	AssignmentEdit   = "assignment:edit"

	MaintenanceView   = "maintenance:view"
	MaintenanceCreate = "maintenance:create"
	MaintenanceEdit   = "maintenance:edit"

	ProviderView   = "provider:view"
	ProviderCreate = "provider:create"
	ProviderEdit   = "provider:edit"

	OrganizationView   = "organization:view"
	OrganizationCreate = "organization:create"
	OrganizationEdit   = "organization:edit"

	UserView   = "user:view"
	UserCreate = "user:create"
	UserEdit   = "user:edit"

	ReportView   = "report:view"
	ReportCreate = "report:create"
)

// All enumerates every known permission; Admin receives the full set.
var All = []string{
	VehicleView, VehicleCreate, VehicleEdit, VehicleDelete,
	ReservationView, ReservationCreate, ReservationEdit, ReservationCancel,
	DriverView, DriverCreate, DriverEdit,
	AssignmentView, AssignmentCreate, AssignmentEdit,
	MaintenanceView, MaintenanceCreate, MaintenanceEdit,
	ProviderView, ProviderCreate, ProviderEdit,
	OrganizationView, OrganizationCreate, OrganizationEdit,
	UserView, UserCreate, UserEdit,
	ReportView, ReportCreate,
}

// rolePermissions is the static role table. Fleet managers hold every fleet
// permission but cannot manage users; operations managers additionally lose
// vehicle deletion and organization mutations.
var rolePermissions = map[domain.Role][]string{
	domain.RoleAdmin: All,

	domain.RoleFleetManager: {
		VehicleView, VehicleCreate, VehicleEdit, VehicleDelete,
		ReservationView, ReservationCreate, ReservationEdit, ReservationCancel,
		DriverView, DriverCreate, DriverEdit,
		AssignmentView, AssignmentCreate, AssignmentEdit,
		MaintenanceView, MaintenanceCreate, MaintenanceEdit,
		ProviderView, ProviderCreate, ProviderEdit,
		OrganizationView, OrganizationCreate, OrganizationEdit,
		ReportView, ReportCreate,
	},

	domain.RoleOperationsManager: {
		VehicleView, VehicleCreate, VehicleEdit,
		ReservationView, ReservationCreate, ReservationEdit, ReservationCancel,
		DriverView, DriverCreate, DriverEdit,
		AssignmentView, AssignmentCreate, AssignmentEdit,
		MaintenanceView, MaintenanceCreate, MaintenanceEdit,
		ProviderView, ProviderCreate, ProviderEdit,
		OrganizationView,
		ReportView, ReportCreate,
	},

	domain.RoleDriver: {
		VehicleView,
		ReservationView, ReservationCreate,
		AssignmentView,
		MaintenanceView,
	},

	domain.RoleViewer: {
		VehicleView,
		ReservationView,
		DriverView,
		AssignmentView,
		MaintenanceView,
		ProviderView,
		OrganizationView,
		ReportView,
	},
}
