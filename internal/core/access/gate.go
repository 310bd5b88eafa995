package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/pkg/metrics"
)

const (
	scopeTenant      = "tenant scope"
	scopeTenantAdmin = "tenant user-management scope"
)

// UserReader is the subset of the user repository the gate needs.
type UserReader interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Gate enforces per-tenant scoping on top of role checks.
type Gate struct {
	users UserReader
}

// NewGate returns a Gate that loads caller records from users.
func NewGate(users UserReader) *Gate {
	return &Gate{users: users}
}

// CanAccessTenant reports whether identity may read records scoped to tenantID.
// Admins are always allowed, including for tenants that do not exist.
func (g *Gate) CanAccessTenant(ctx context.Context, identity *domain.Identity, tenantID string) (bool, error) {
	if identity == nil || tenantID == "" {
		return false, nil
	}
	switch identity.Role {
	case domain.RoleAdmin:
		return true, nil
	case domain.RoleSolutionsEngineer:
		u, err := g.load(ctx, identity.ID)
		if err != nil || u == nil {
			return false, err
		}
		se, ok := u.SolutionsEngineer()
		return ok && se.IsAssignedTo(tenantID), nil
	case domain.RoleClientUser:
		return identity.TenantID == tenantID, nil
	}
	return false, nil
}

// CanManageTenantUsers reports whether identity may create or delete the
// client users of tenantID. Client users additionally need the org-admin flag,
// which is read from the stored record rather than the identity.
func (g *Gate) CanManageTenantUsers(ctx context.Context, identity *domain.Identity, tenantID string) (bool, error) {
	if identity == nil || tenantID == "" {
		return false, nil
	}
	switch identity.Role {
	case domain.RoleAdmin:
		return true, nil
	case domain.RoleSolutionsEngineer:
		return g.CanAccessTenant(ctx, identity, tenantID)
	case domain.RoleClientUser:
		if identity.TenantID != tenantID {
			return false, nil
		}
		u, err := g.load(ctx, identity.ID)
		if err != nil || u == nil {
			return false, err
		}
		cu, ok := u.ClientUser()
		return ok && cu.TenantID == tenantID && cu.IsOrgAdmin, nil
	}
	return false, nil
}

// RequireTenantAccess is CanAccessTenant as an error: ErrUnauthenticated for
// a nil identity, a ForbiddenError when out of scope.
func (g *Gate) RequireTenantAccess(ctx context.Context, identity *domain.Identity, tenantID string) error {
	return g.require(ctx, identity, tenantID, scopeTenant, g.CanAccessTenant)
}

// RequireTenantUserManagement is CanManageTenantUsers as an error.
func (g *Gate) RequireTenantUserManagement(ctx context.Context, identity *domain.Identity, tenantID string) error {
	return g.require(ctx, identity, tenantID, scopeTenantAdmin, g.CanManageTenantUsers)
}

func (g *Gate) require(
	ctx context.Context,
	identity *domain.Identity,
	tenantID, scope string,
	check func(context.Context, *domain.Identity, string) (bool, error),
) error {
	if identity == nil {
		metrics.AccessDenialsTotal.WithLabelValues(string(domain.DenialUnauthenticated)).Inc()
		return domain.ErrUnauthenticated
	}
	ok, err := check(ctx, identity, tenantID)
	if err != nil {
		return fmt.Errorf("tenant gate: %w", err)
	}
	if !ok {
		metrics.AccessDenialsTotal.WithLabelValues(string(domain.DenialForbidden)).Inc()
		return domain.Forbidden(scope)
	}
	return nil
}

// load returns the caller's record, or nil when it no longer exists.
func (g *Gate) load(ctx context.Context, userID string) (*domain.User, error) {
	u, err := g.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load caller: %w", err)
	}
	return u, nil
}
