package types

import "github.com/samber/lo"

// Role drives which actions the console offers a user. It mirrors the UI
// gating helpers; data access is enforced by row level security in the
// database, not here.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleFrontDesk  Role = "front_desk"
	RoleTechnician Role = "technician"
	RoleViewer     Role = "viewer"
)

var Roles = []Role{RoleAdmin, RoleFrontDesk, RoleTechnician, RoleViewer}

// ParseRole falls back to viewer for unknown values.
func ParseRole(s string) Role {
	r := Role(s)
	if lo.Contains(Roles, r) {
		return r
	}
	return RoleViewer
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// CanManageBilling covers clients, subscriptions and invoices.
func (r Role) CanManageBilling() bool {
	return r == RoleAdmin || r == RoleFrontDesk
}

// CanManageInventory covers devices and providers.
func (r Role) CanManageInventory() bool {
	return r == RoleAdmin || r == RoleTechnician
}

func (r Role) CanImport() bool {
	return r == RoleAdmin
}

func (r Role) CanViewRevenue() bool {
	return r == RoleAdmin || r == RoleFrontDesk
}
