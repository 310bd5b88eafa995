package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/core/ports"
	"github.com/99minutos/client-portal/internal/pkg/metrics"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type usageService struct {
	tenants ports.TenantRepository
	usage   ports.UsageRepository
	dedup   DedupChecker
	log     zerolog.Logger
	now     func() time.Time
}

// NewUsageService returns a UsageService implementation.
func NewUsageService(
	tenants ports.TenantRepository,
	usage ports.UsageRepository,
	dedup DedupChecker,
	log zerolog.Logger,
) ports.UsageService {
	return &usageService{
		tenants: tenants,
		usage:   usage,
		dedup:   dedup,
		log:     log,
		now:     time.Now,
	}
}

// Process deduplicates and persists a single usage event.
func (s *usageService) Process(ctx context.Context, in ports.UsageEventInput) error {
	// 1. Idempotency check: duplicates are skipped silently.
	isDup, err := s.dedup.IsDuplicate(ctx, in.EventID)
	if err != nil {
		s.log.Warn().Err(err).Str("event_id", in.EventID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.UsageEventsDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Str("event_id", in.EventID).Msg("duplicate usage event skipped")
		return nil
	}
	metrics.UsageEventsDedupTotal.WithLabelValues("miss").Inc()

	// 2. The tenant must exist; events for deleted tenants are dropped.
	if _, err := s.tenants.FindByID(ctx, in.TenantID); err != nil {
		if errors.Is(err, domain.ErrTenantNotFound) {
			metrics.UsageEventsErrorsTotal.WithLabelValues("tenant_not_found").Inc()
		}
		return fmt.Errorf("process usage event: %w", err)
	}

	// 3. Mark before writing so a redelivery during the insert is skipped.
	if err := s.dedup.Mark(ctx, in.EventID); err != nil {
		s.log.Warn().Err(err).Str("event_id", in.EventID).Msg("failed to set dedup key")
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}
	if err := s.usage.Insert(ctx, &domain.UsageEvent{
		EventID:   in.EventID,
		TenantID:  in.TenantID,
		Metric:    in.Metric,
		Quantity:  in.Quantity,
		Timestamp: ts.UTC(),
		Source:    in.Source,
	}); err != nil {
		metrics.UsageEventsErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("process usage event: insert: %w", err)
	}

	metrics.UsageEventsProcessedTotal.WithLabelValues(in.Metric).Inc()
	s.log.Info().
		Str("event_id", in.EventID).
		Str("tenant_id", in.TenantID).
		Str("metric", in.Metric).
		Int64("quantity", in.Quantity).
		Msg("usage event processed")

	return nil
}

// Summary aggregates a tenant's usage per metric. A zero from selects the
// current billing month.
func (s *usageService) Summary(ctx context.Context, tenantID string, from, to time.Time) (*ports.UsageSummary, error) {
	if from.IsZero() {
		from, to = domain.BillingWindow(s.now())
	} else if to.IsZero() {
		_, to = domain.BillingWindow(from)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: window end must be after its start", domain.ErrInvalidInput)
	}

	if _, err := s.tenants.FindByID(ctx, tenantID); err != nil {
		return nil, err
	}
	totals, err := s.usage.Summarize(ctx, tenantID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("usage summary: %w", err)
	}
	return &ports.UsageSummary{TenantID: tenantID, From: from.UTC(), To: to.UTC(), Totals: totals}, nil
}
