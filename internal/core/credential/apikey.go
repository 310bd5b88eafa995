package credential

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/99minutos/client-portal/internal/core/domain"
	"github.com/99minutos/client-portal/internal/pkg/metrics"
)

const (
	HeaderAPIKey = "X-API-Key"
	QueryAPIKey  = "api_key"
)

// Denial stops a request at the API key gate.
type Denial struct {
	Status  int
	Message string
	Err     error
}

func (d *Denial) Error() string { return d.Message }
func (d *Denial) Unwrap() error { return d.Err }

// APIKeyGate guards machine-to-machine endpoints with one shared static key.
type APIKeyGate struct {
	key        []byte
	allowQuery bool
	log        zerolog.Logger
}

// NewAPIKeyGate builds a gate for key. When allowQuery is false the
// deprecated api_key query parameter is ignored.
func NewAPIKeyGate(key string, allowQuery bool, log zerolog.Logger) *APIKeyGate {
	return &APIKeyGate{key: []byte(key), allowQuery: allowQuery, log: log}
}

// Authenticate returns nil when the request carries the configured key.
// It holds no state between calls.
func (g *APIKeyGate) Authenticate(r *http.Request) *Denial {
	presented, transport := g.extract(r)
	if presented == "" {
		metrics.APIKeyChecksTotal.WithLabelValues("missing", transport).Inc()
		return &Denial{
			Status:  http.StatusUnauthorized,
			Message: "api key required: send it in the " + HeaderAPIKey + " header",
			Err:     domain.ErrAPIKeyRequired,
		}
	}

	if transport == "query" {
		g.log.Warn().
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Msg("api key supplied via deprecated query parameter, use the " + HeaderAPIKey + " header")
	}

	if len(g.key) == 0 || subtle.ConstantTimeCompare([]byte(presented), g.key) != 1 {
		metrics.APIKeyChecksTotal.WithLabelValues("invalid", transport).Inc()
		return &Denial{
			Status:  http.StatusUnauthorized,
			Message: "invalid api key: send a valid key in the " + HeaderAPIKey + " header",
			Err:     domain.ErrInvalidAPIKey,
		}
	}

	metrics.APIKeyChecksTotal.WithLabelValues("ok", transport).Inc()
	return nil
}

// ViaQuery reports whether the key for r would be taken from the query string.
func (g *APIKeyGate) ViaQuery(r *http.Request) bool {
	_, transport := g.extract(r)
	return transport == "query"
}

func (g *APIKeyGate) extract(r *http.Request) (string, string) {
	if v := r.Header.Get(HeaderAPIKey); v != "" {
		return v, "header"
	}
	if g.allowQuery {
		if v := r.URL.Query().Get(QueryAPIKey); v != "" {
			return v, "query"
		}
	}
	return "", "none"
}
