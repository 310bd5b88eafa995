package ports

import (
	"context"
	"time"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// LoginResult carries the signed session token issued at login.
// LegacySessionID is set only when legacy sessions are still being issued.
type LoginResult struct {
	Token           string
	ExpiresAt       time.Time
	LegacySessionID string
	User            *domain.User
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Logout revokes the legacy session when one is present. Primary session
	// tokens are stateless and are cleared by the transport layer.
	Logout(ctx context.Context, legacySessionID string) error
}
