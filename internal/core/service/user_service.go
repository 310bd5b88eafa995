package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
)

type userService struct {
	users    ports.UserRepository
	tenants  ports.TenantRepository
	audit    ports.AuditRepository
	sessions ports.SessionRevoker
	log      zerolog.Logger
}

// NewUserService returns a UserService implementation. sessions may be nil
// when no legacy session store is configured.
func NewUserService(
	users ports.UserRepository,
	tenants ports.TenantRepository,
	audit ports.AuditRepository,
	sessions ports.SessionRevoker,
	log zerolog.Logger,
) ports.UserService {
	return &userService{users: users, tenants: tenants, audit: audit, sessions: sessions, log: log}
}

func (s *userService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	var profile domain.Profile
	switch in.Role {
	case domain.RoleAdmin:
		profile = domain.AdminProfile{}
	case domain.RoleSolutionsEngineer:
		profile = domain.SolutionsEngineerProfile{}
	case domain.RoleClientUser:
		if in.TenantID == "" {
			return nil, fmt.Errorf("%w: client users need a tenant", domain.ErrInvalidInput)
		}
		if _, err := s.tenants.FindByID(ctx, in.TenantID); err != nil {
			return nil, err
		}
		profile = domain.ClientUserProfile{
			TenantID:         in.TenantID,
			IsOrgAdmin:       in.IsOrgAdmin,
			HasBillingAccess: in.HasBillingAccess,
		}
	default:
		return nil, domain.ErrInvalidRole
	}
	if in.Role != domain.RoleClientUser && in.TenantID != "" {
		return nil, fmt.Errorf("%w: only client users belong to a tenant", domain.ErrInvalidInput)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		Name:         in.Name,
		PasswordHash: hash,
		Profile:      profile,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(in.Role)).Str("tenant_id", in.TenantID).Msg("user created")
	return created, nil
}

func (s *userService) ListTenantUsers(ctx context.Context, tenantID string) ([]*domain.User, error) {
	if _, err := s.tenants.FindByID(ctx, tenantID); err != nil {
		return nil, err
	}
	users, err := s.users.ListClientUsers(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list tenant users: %w", err)
	}
	return users, nil
}

func (s *userService) DeleteTenantUser(ctx context.Context, acting *domain.Identity, tenantID, userID string) error {
	if acting == nil {
		return domain.ErrUnauthenticated
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	// another tenant's user is reported as missing, not forbidden
	if cu, ok := u.ClientUser(); !ok || cu.TenantID != tenantID {
		return domain.ErrUserNotFound
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	revokeSessions(ctx, s.sessions, s.log, userID)

	// Single-document delete: the audit entry is best effort.
	if err := s.audit.Record(ctx, &domain.AuditEntry{
		Action:     domain.AuditUserDeleted,
		ActorID:    acting.ID,
		TenantID:   tenantID,
		SubjectID:  userID,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to record audit entry")
	}

	s.log.Info().Str("user_id", userID).Str("tenant_id", tenantID).Str("actor_id", acting.ID).Msg("tenant user deleted")
	return nil
}

// revokeSessions ends the legacy sessions of deleted users. Failures are
// logged only; the credential resolver re-reads client users on every
// request, so a leftover session no longer resolves.
func revokeSessions(ctx context.Context, sessions ports.SessionRevoker, log zerolog.Logger, userIDs ...string) {
	if sessions == nil {
		return
	}
	for _, id := range userIDs {
		if err := sessions.RevokeUser(ctx, id); err != nil {
			log.Warn().Err(err).Str("user_id", id).Msg("failed to revoke legacy sessions")
		}
	}
}
