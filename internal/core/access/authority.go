package access

import (
	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/pkg/metrics"
)

// IsAllowed reports whether identity holds one of the allowed roles.
// A nil identity is never allowed.
func IsAllowed(identity *domain.Identity, allowed domain.RoleSet) bool {
	return identity != nil && allowed.Contains(identity.Role)
}

// Decide is IsAllowed with the denial classified.
func Decide(identity *domain.Identity, allowed domain.RoleSet) domain.Decision {
	switch {
	case identity == nil:
		return domain.Decision{Reason: domain.DenialUnauthenticated}
	case !allowed.Contains(identity.Role):
		return domain.Decision{Reason: domain.DenialForbidden}
	}
	return domain.Decision{Allowed: true}
}

// Authorize converts a decision into ErrUnauthenticated or a ForbiddenError
// naming the required roles. It returns nil when the identity is allowed.
func Authorize(identity *domain.Identity, allowed domain.RoleSet) error {
	d := Decide(identity, allowed)
	switch d.Reason {
	case domain.DenialUnauthenticated:
		metrics.AccessDenialsTotal.WithLabelValues(string(d.Reason)).Inc()
		return domain.ErrUnauthenticated
	case domain.DenialForbidden:
		metrics.AccessDenialsTotal.WithLabelValues(string(d.Reason)).Inc()
		return domain.Forbidden("role " + allowed.String())
	}
	return nil
}
