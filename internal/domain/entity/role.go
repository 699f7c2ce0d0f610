// Package entity contains the core business objects of the project.
package entity

import "strings"

// Role represents the permission tier attached to an account and embedded in its tokens.
type Role string

const (
	// RoleUser indicates a regular account.
	RoleUser Role = "USER"
	// RoleAdmin indicates an administrative account.
	RoleAdmin Role = "ADMIN"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Satisfies reports whether an identity holding r meets a route's role requirement.
// An empty requirement is met by any valid role. ADMIN meets a USER requirement,
// never the reverse.
func (r Role) Satisfies(required Role) bool {
	if !r.IsValid() {
		return false
	}

	switch required {
	case "":
		return true
	case RoleUser:
		return r == RoleUser || r == RoleAdmin
	default:
		return r == required
	}
}

// CanBypassOwnership reports whether the role may mutate resources it does not own.
func CanBypassOwnership(r Role) bool {
	return r == RoleAdmin
}

// ParseRole converts a case-insensitive string into a Role.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))

	return role, role.IsValid()
}
