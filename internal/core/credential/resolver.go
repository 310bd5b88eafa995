// Package credential turns request credentials into a domain.Identity.
//
// Channels are tried in the order given to NewResolver; the first one that
// yields an identity wins. A channel whose material is missing, malformed or
// expired is skipped without surfacing an error, so only a request that no
// channel accepts ends up unauthenticated.
package credential

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/pkg/metrics"
)

// Resolver walks an ordered list of strategies.
type Resolver struct {
	strategies []Strategy
	log        zerolog.Logger
}

func NewResolver(log zerolog.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, log: log}
}

// Resolve returns the caller's identity, or nil when no channel resolves.
func (r *Resolver) Resolve(req *http.Request) *domain.Identity {
	ctx := req.Context()
	for _, s := range r.strategies {
		identity, err := s.Resolve(ctx, req)
		if err == nil && identity != nil {
			metrics.CredentialResolutionsTotal.WithLabelValues(s.Channel()).Inc()
			return identity
		}
		if err != nil && !errors.Is(err, ErrNoCredential) {
			r.log.Debug().Err(err).Str("channel", s.Channel()).Msg("credential rejected, trying next channel")
		}
	}
	metrics.CredentialResolutionsTotal.WithLabelValues(ChannelNone).Inc()
	return nil
}
