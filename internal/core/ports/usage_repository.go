package ports

import (
	"context"
	"time"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// UsageRepository persists usage events and aggregates them per metric.
type UsageRepository interface {
	Insert(ctx context.Context, event *domain.UsageEvent) error
	Summarize(ctx context.Context, tenantID string, from, to time.Time) ([]domain.UsageTotal, error)
}
