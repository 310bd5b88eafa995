package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/client-portal/internal/core/access"
	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
	"github.com/99minutos/client-portal/internal/pkg/metrics"
)

var adminOnly = domain.NewRoleSet(domain.RoleAdmin)

type tenantService struct {
	tenants  ports.TenantRepository
	users    ports.UserRepository
	audit    ports.AuditRepository
	tx       ports.TxRunner
	sessions ports.SessionRevoker
	log      zerolog.Logger
	now      func() time.Time
}

// NewTenantService returns a TenantService implementation. sessions may be
// nil when no legacy session store is configured.
func NewTenantService(
	tenants ports.TenantRepository,
	users ports.UserRepository,
	audit ports.AuditRepository,
	tx ports.TxRunner,
	sessions ports.SessionRevoker,
	log zerolog.Logger,
) ports.TenantService {
	return &tenantService{
		tenants:  tenants,
		users:    users,
		audit:    audit,
		tx:       tx,
		sessions: sessions,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *tenantService) ListTenants(ctx context.Context, identity *domain.Identity) ([]*domain.Tenant, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	var filter ports.TenantFilter
	switch identity.Role {
	case domain.RoleAdmin:
		// unfiltered
	case domain.RoleSolutionsEngineer:
		u, err := s.users.FindByID(ctx, identity.ID)
		if errors.Is(err, domain.ErrUserNotFound) {
			// a removed engineer is assigned nowhere
			return []*domain.Tenant{}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
		se, _ := u.SolutionsEngineer()
		filter.IDs = append([]string{}, se.AssignedTenantIDs...)
	case domain.RoleClientUser:
		filter.IDs = []string{identity.TenantID}
	default:
		return nil, domain.Forbidden("a platform role")
	}

	tenants, err := s.tenants.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

func (s *tenantService) GetTenant(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return s.tenants.FindByID(ctx, tenantID)
}

func (s *tenantService) CreateTenant(ctx context.Context, acting *domain.Identity, in ports.CreateTenantInput) (*domain.Tenant, error) {
	if err := access.Authorize(acting, adminOnly); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	stage := in.PipelineStage
	if stage == "" {
		stage = domain.PipelineDiscovery
	}

	now := s.now()
	created, err := s.tenants.Create(ctx, &domain.Tenant{
		Name:           name,
		SubscriptionID: in.SubscriptionID,
		CreditBalance:  in.CreditBalance,
		PipelineStage:  stage,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("tenant_id", created.ID).Str("actor_id", acting.ID).Msg("tenant created")
	return created, nil
}

// DeleteTenant removes a tenant, every client user it owns and its engineer
// links as one transaction. Nothing is changed unless every step succeeds.
func (s *tenantService) DeleteTenant(ctx context.Context, acting *domain.Identity, tenantID string) (*ports.DeleteTenantResult, error) {
	if err := access.Authorize(acting, adminOnly); err != nil {
		return nil, err
	}

	var deletedIDs []string
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		deletedIDs = deletedIDs[:0]

		tenant, err := s.tenants.FindByID(ctx, tenantID)
		if err != nil {
			return err
		}

		users, err := s.users.ListClientUsers(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("list client users: %w", err)
		}
		now := s.now()
		for _, u := range users {
			if err := s.users.Delete(ctx, u.ID); err != nil {
				return fmt.Errorf("delete client user %s: %w", u.ID, err)
			}
			if err := s.audit.Record(ctx, &domain.AuditEntry{
				Action:     domain.AuditUserDeleted,
				ActorID:    acting.ID,
				TenantID:   tenantID,
				SubjectID:  u.ID,
				OccurredAt: now,
			}); err != nil {
				return fmt.Errorf("audit user deletion %s: %w", u.ID, err)
			}
			deletedIDs = append(deletedIDs, u.ID)
		}

		for _, engineerID := range tenant.AssignedEngineerIDs {
			err := s.users.RemoveAssignedTenant(ctx, engineerID, tenantID)
			if errors.Is(err, domain.ErrUserNotFound) {
				s.log.Warn().Str("tenant_id", tenantID).Str("user_id", engineerID).
					Msg("assigned engineer no longer exists, skipping unlink")
				continue
			}
			if err != nil {
				return fmt.Errorf("unlink engineer %s: %w", engineerID, err)
			}
		}

		if err := s.tenants.Delete(ctx, tenantID); err != nil {
			return fmt.Errorf("delete tenant record: %w", err)
		}
		if err := s.audit.Record(ctx, &domain.AuditEntry{
			Action:     domain.AuditTenantDeleted,
			ActorID:    acting.ID,
			TenantID:   tenantID,
			SubjectID:  tenantID,
			OccurredAt: now,
		}); err != nil {
			return fmt.Errorf("audit tenant deletion: %w", err)
		}
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrTenantNotFound):
		metrics.TenantDeletionsTotal.WithLabelValues("not_found").Inc()
		return nil, err
	case err != nil:
		metrics.TenantDeletionsTotal.WithLabelValues("aborted").Inc()
		s.log.Error().Err(err).Str("tenant_id", tenantID).Str("actor_id", acting.ID).Msg("tenant deletion aborted")
		return nil, fmt.Errorf("%w: delete tenant %s: %w", domain.ErrTransactionFailed, tenantID, err)
	}

	revokeSessions(ctx, s.sessions, s.log, deletedIDs...)

	deleted := len(deletedIDs)
	metrics.TenantDeletionsTotal.WithLabelValues("committed").Inc()
	metrics.CascadeDeletedUsersTotal.Add(float64(deleted))
	s.log.Info().
		Str("tenant_id", tenantID).
		Str("actor_id", acting.ID).
		Int("deleted_users", deleted).
		Msg("tenant deleted")

	return &ports.DeleteTenantResult{DeletedUserCount: deleted}, nil
}

// AssignEngineer links a solutions engineer and a tenant on both sides.
func (s *tenantService) AssignEngineer(ctx context.Context, acting *domain.Identity, tenantID, engineerID string) error {
	if err := access.Authorize(acting, adminOnly); err != nil {
		return err
	}
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.loadLinkEnds(ctx, tenantID, engineerID); err != nil {
			return err
		}
		if err := s.tenants.AddAssignedEngineer(ctx, tenantID, engineerID); err != nil {
			return fmt.Errorf("assign engineer: %w", err)
		}
		if err := s.users.AddAssignedTenant(ctx, engineerID, tenantID); err != nil {
			return fmt.Errorf("assign engineer: %w", err)
		}
		return s.audit.Record(ctx, &domain.AuditEntry{
			Action:     domain.AuditEngineerLinked,
			ActorID:    acting.ID,
			TenantID:   tenantID,
			SubjectID:  engineerID,
			OccurredAt: s.now(),
		})
	})
}

// UnassignEngineer removes the link on both sides. Removing a link that does
// not exist is not an error.
func (s *tenantService) UnassignEngineer(ctx context.Context, acting *domain.Identity, tenantID, engineerID string) error {
	if err := access.Authorize(acting, adminOnly); err != nil {
		return err
	}
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.loadLinkEnds(ctx, tenantID, engineerID); err != nil {
			return err
		}
		if err := s.tenants.RemoveAssignedEngineer(ctx, tenantID, engineerID); err != nil {
			return fmt.Errorf("unassign engineer: %w", err)
		}
		if err := s.users.RemoveAssignedTenant(ctx, engineerID, tenantID); err != nil {
			return fmt.Errorf("unassign engineer: %w", err)
		}
		return s.audit.Record(ctx, &domain.AuditEntry{
			Action:     domain.AuditEngineerRemoved,
			ActorID:    acting.ID,
			TenantID:   tenantID,
			SubjectID:  engineerID,
			OccurredAt: s.now(),
		})
	})
}

func (s *tenantService) loadLinkEnds(ctx context.Context, tenantID, engineerID string) error {
	if _, err := s.tenants.FindByID(ctx, tenantID); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, engineerID)
	if err != nil {
		return err
	}
	if _, ok := u.SolutionsEngineer(); !ok {
		return fmt.Errorf("%w: user %s is not a solutions engineer", domain.ErrInvalidInput, engineerID)
	}
	return nil
}
