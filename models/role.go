package models

// Role is the kind of account a profile holds. A profile has exactly one role for its lifetime.
type Role string

const (
	RoleCook     Role = "cook"
	RoleCustomer Role = "customer"
	RoleDelivery Role = "delivery"
)

// Roles lists every valid role
var Roles = []Role{RoleCook, RoleCustomer, RoleDelivery}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCook, RoleCustomer, RoleDelivery:
		return true
	}
	return false
}
