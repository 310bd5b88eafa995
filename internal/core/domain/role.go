package domain

import "strings"

// Role is the platform role carried by every user and identity.
type Role string

const (
	RoleAdmin             Role = "ADMIN"
	RoleSolutionsEngineer Role = "SOLUTIONS_ENGINEER"
	RoleClientUser        Role = "CLIENT_USER"
)

// ParseRole converts a stored or transmitted role string into a Role.
// Matching is case-insensitive; unknown values return ErrInvalidRole.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSolutionsEngineer:
		return RoleSolutionsEngineer, nil
	case RoleClientUser:
		return RoleClientUser, nil
	}
	return "", ErrInvalidRole
}

func (r Role) String() string { return string(r) }

// RoleSet is an explicit allow-list of roles. There is no inheritance
// between roles: a route that admits ADMIN and SOLUTIONS_ENGINEER must list both.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports whether r is in the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// String renders the set in a stable order for error messages.
func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for _, r := range []Role{RoleAdmin, RoleSolutionsEngineer, RoleClientUser} {
		if s.Contains(r) {
			names = append(names, string(r))
		}
	}
	return strings.Join(names, " or ")
}
