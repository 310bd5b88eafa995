package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/client-portal/internal/api/middleware"
	"github.com/99minutos/client-portal/internal/core/domain"
)

// TenantGate performs the record-level tenant checks that run after the
// route's role check.
type TenantGate interface {
	RequireTenantAccess(ctx context.Context, identity *domain.Identity, tenantID string) error
	RequireTenantUserManagement(ctx context.Context, identity *domain.Identity, tenantID string) error
}

// ctxIdentity extracts the identity injected by the Authenticate middleware.
// A missing identity means the route was wired without it; fail closed.
func ctxIdentity(c echo.Context) (*domain.Identity, error) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}
	return identity, nil
}
