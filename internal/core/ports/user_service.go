package ports

import (
	"context"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// CreateUserInput carries a new account. TenantID, IsOrgAdmin and
// HasBillingAccess apply only to RoleClientUser.
type CreateUserInput struct {
	Email            string
	Name             string
	Password         string // optional; empty means external identity provider
	Role             domain.Role
	TenantID         string
	IsOrgAdmin       bool
	HasBillingAccess bool
}

// UserService defines use-case operations for user accounts.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	ListTenantUsers(ctx context.Context, tenantID string) ([]*domain.User, error)
	// DeleteTenantUser removes a client user that belongs to tenantID. A user
	// of another tenant is reported as ErrUserNotFound.
	DeleteTenantUser(ctx context.Context, acting *domain.Identity, tenantID, userID string) error
}
