package domain

import (
	"slices"
	"strings"
	"time"
)

// Profile is the role-specific payload of a User. Exactly one of
// AdminProfile, SolutionsEngineerProfile or ClientUserProfile.
type Profile interface {
	Role() Role
	profile()
}

// AdminProfile carries no role-specific fields.
type AdminProfile struct{}

func (AdminProfile) Role() Role { return RoleAdmin }
func (AdminProfile) profile()   {}

// SolutionsEngineerProfile lists the tenants an engineer is assigned to.
// The first entry is conventionally the lead assignment.
type SolutionsEngineerProfile struct {
	AssignedTenantIDs []string
}

func (SolutionsEngineerProfile) Role() Role { return RoleSolutionsEngineer }
func (SolutionsEngineerProfile) profile()   {}

// IsAssignedTo reports whether tenantID is in the engineer's assignment set.
func (p SolutionsEngineerProfile) IsAssignedTo(tenantID string) bool {
	return slices.Contains(p.AssignedTenantIDs, tenantID)
}

// ClientUserProfile binds a client user to exactly one owning tenant.
type ClientUserProfile struct {
	TenantID         string
	IsOrgAdmin       bool
	HasBillingAccess bool
}

func (ClientUserProfile) Role() Role { return RoleClientUser }
func (ClientUserProfile) profile()   {}

// User models a persisted account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string // empty: the account signs in through an external identity provider
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role returns the role implied by the user's profile.
func (u *User) Role() Role {
	if u == nil || u.Profile == nil {
		return ""
	}
	return u.Profile.Role()
}

// SolutionsEngineer returns the engineer payload when the user holds that role.
func (u *User) SolutionsEngineer() (SolutionsEngineerProfile, bool) {
	if u == nil {
		return SolutionsEngineerProfile{}, false
	}
	p, ok := u.Profile.(SolutionsEngineerProfile)
	return p, ok
}

// ClientUser returns the client payload when the user holds that role.
func (u *User) ClientUser() (ClientUserProfile, bool) {
	if u == nil {
		return ClientUserProfile{}, false
	}
	p, ok := u.Profile.(ClientUserProfile)
	return p, ok
}

// HasPassword reports whether the account can use password login.
func (u *User) HasPassword() bool { return u.PasswordHash != "" }

// Identity projects the user into a request identity.
func (u *User) Identity() (*Identity, error) {
	var tenantID string
	if cu, ok := u.ClientUser(); ok {
		tenantID = cu.TenantID
	}
	return NewIdentity(u.ID, u.Role(), u.Email, tenantID)
}

// NormalizeEmail lower-cases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
