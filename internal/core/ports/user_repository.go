package ports

import (
	"context"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	// ListClientUsers returns every CLIENT_USER owned by tenantID.
	ListClientUsers(ctx context.Context, tenantID string) ([]*domain.User, error)
	// AddAssignedTenant and RemoveAssignedTenant are idempotent set operations on a
	// SOLUTIONS_ENGINEER's assignment set. They return ErrUserNotFound when no
	// engineer with that id exists.
	AddAssignedTenant(ctx context.Context, engineerID, tenantID string) error
	RemoveAssignedTenant(ctx context.Context, engineerID, tenantID string) error
}
