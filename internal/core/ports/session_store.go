package ports

import (
	"context"
	"time"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// SessionStore is the legacy server-side session mechanism.
type SessionStore interface {
	// Get returns the projection for sessionID, or ErrUnauthenticated when the
	// session does not exist or has expired.
	Get(ctx context.Context, sessionID string) (*domain.SessionProjection, error)
	Create(ctx context.Context, projection *domain.SessionProjection, ttl time.Duration) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionRevoker ends every legacy session of a user.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) error
}
