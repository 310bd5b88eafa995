package ports

import (
	"context"
	"time"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// UsageEventInput is the DTO passed from the ingestion endpoint to UsageService.
type UsageEventInput struct {
	EventID   string
	TenantID  string
	Metric    string
	Quantity  int64
	Timestamp time.Time
	Source    string
}

// UsageSummary is the per-metric usage of one tenant over a window.
type UsageSummary struct {
	TenantID string
	From     time.Time
	To       time.Time
	Totals   []domain.UsageTotal
}

// UsageService processes ingested usage events and reports totals.
type UsageService interface {
	Process(ctx context.Context, event UsageEventInput) error
	Summary(ctx context.Context, tenantID string, from, to time.Time) (*UsageSummary, error)
}
