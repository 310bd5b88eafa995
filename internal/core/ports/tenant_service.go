package ports

import (
	"context"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// CreateTenantInput carries the fields needed to open a client account.
type CreateTenantInput struct {
	Name           string
	SubscriptionID string
	CreditBalance  int64
	PipelineStage  domain.PipelineStage
}

// DeleteTenantResult reports how many client users the cascade removed.
type DeleteTenantResult struct {
	DeletedUserCount int
}

// TenantService defines use-case operations for tenants.
type TenantService interface {
	// ListTenants returns the tenants visible to the identity: all for ADMIN,
	// the assignment set for SOLUTIONS_ENGINEER, the owning tenant for CLIENT_USER.
	ListTenants(ctx context.Context, identity *domain.Identity) ([]*domain.Tenant, error)
	GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error)
	CreateTenant(ctx context.Context, acting *domain.Identity, input CreateTenantInput) (*domain.Tenant, error)
	DeleteTenant(ctx context.Context, acting *domain.Identity, tenantID string) (*DeleteTenantResult, error)
	AssignEngineer(ctx context.Context, acting *domain.Identity, tenantID, engineerID string) error
	UnassignEngineer(ctx context.Context, acting *domain.Identity, tenantID, engineerID string) error
}
