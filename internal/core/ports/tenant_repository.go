package ports

import (
	"context"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// TenantFilter narrows List. A nil IDs slice means no restriction; an empty
// non-nil slice matches nothing.
type TenantFilter struct {
	IDs []string
}

// TenantRepository defines persistence operations for tenants.
type TenantRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context, filter TenantFilter) ([]*domain.Tenant, error)
	Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error)
	Delete(ctx context.Context, id string) error
	AddAssignedEngineer(ctx context.Context, tenantID, engineerID string) error
	RemoveAssignedEngineer(ctx context.Context, tenantID, engineerID string) error
}
