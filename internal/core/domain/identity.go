package domain

// Identity is the resolved caller for one request. It is never persisted:
// it is a projection of a User plus the credential channel that supplied it.
type Identity struct {
	ID       string
	Role     Role
	Email    string
	TenantID string // set only for RoleClientUser
}

// NewIdentity validates the role/tenant invariant: TenantID is set if and
// only if the role is RoleClientUser.
func NewIdentity(id string, role Role, email, tenantID string) (*Identity, error) {
	if id == "" {
		return nil, ErrInvalidIdentity
	}
	switch role {
	case RoleClientUser:
		if tenantID == "" {
			return nil, ErrInvalidIdentity
		}
	case RoleAdmin, RoleSolutionsEngineer:
		if tenantID != "" {
			return nil, ErrInvalidIdentity
		}
	default:
		return nil, ErrInvalidRole
	}
	return &Identity{ID: id, Role: role, Email: email, TenantID: tenantID}, nil
}

// Decision is the output of the role authority.
type Decision struct {
	Allowed bool
	Reason  DenialReason
}

// DenialReason classifies why a decision was negative.
type DenialReason string

const (
	DenialNone            DenialReason = ""
	DenialUnauthenticated DenialReason = "unauthenticated"
	DenialForbidden       DenialReason = "forbidden"
)
