package model

import "strings"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleConductor Role = "CONDUCTOR"
	RoleDriver    Role = "DRIVER"
	RolePassenger Role = "PASSENGER"
)

// ParseRole normalizes a role string. Spring authorities carry a ROLE_
// prefix which is stripped. Unknown roles map to the empty Role, which
// grants nothing.
func ParseRole(raw string) Role {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "ROLE_")
	switch Role(value) {
	case RoleAdmin, RoleConductor, RoleDriver, RolePassenger:
		return Role(value)
	}
	return ""
}

// CanManageSeats reports whether the role has full access to the seat grid.
func (r Role) CanManageSeats() bool {
	return r == RoleAdmin || r == RoleConductor
}

// IsReadOnly reports whether the role may only look at the seat grid.
func (r Role) IsReadOnly() bool {
	return r == RoleDriver
}
