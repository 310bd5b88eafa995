package ports

import (
	"context"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// AuditRepository appends audit entries.
type AuditRepository interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}
