package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

// TokenIssuer signs primary session tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, time.Time, error)
}

// AuthService implements password login and logout.
type AuthService struct {
	users     ports.UserRepository
	tokens    TokenIssuer
	sessions  ports.SessionStore
	legacyTTL time.Duration
	log       zerolog.Logger
}

// NewAuthService returns an AuthService. When legacyTTL is positive every
// login also opens a legacy session with that lifetime.
func NewAuthService(
	users ports.UserRepository,
	tokens TokenIssuer,
	sessions ports.SessionStore,
	legacyTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		sessions:  sessions,
		legacyTTL: legacyTTL,
		log:       log,
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !user.HasPassword() {
		s.log.Debug().Str("user_id", user.ID).Msg("password login attempted for external identity account")
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	res := &ports.LoginResult{Token: token, ExpiresAt: exp, User: user}

	if s.legacyTTL > 0 && s.sessions != nil {
		proj := &domain.SessionProjection{
			UserID:    user.ID,
			Email:     user.Email,
			Role:      string(user.Role()),
			CreatedAt: time.Now().UTC(),
		}
		if cu, ok := user.ClientUser(); ok {
			proj.TenantID = cu.TenantID
		}
		sid, err := s.sessions.Create(ctx, proj, s.legacyTTL)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to open legacy session")
		} else {
			res.LegacySessionID = sid
		}
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role())).Msg("user logged in")
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context, legacySessionID string) error {
	if legacySessionID == "" || s.sessions == nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, legacySessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
