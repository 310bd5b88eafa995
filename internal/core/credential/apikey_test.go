package credential

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/client-portal/internal/core/domain"
)

func TestAPIKeyGate_Header(t *testing.T) {
	gate := NewAPIKeyGate("k-123", true, zerolog.Nop())
	r := httptest.NewRequest(http.MethodPost, "/v1/ingest/usage", nil)
	r.Header.Set(HeaderAPIKey, "k-123")

	assert.Nil(t, gate.Authenticate(r))
	assert.Nil(t, gate.Authenticate(r), "a valid key stays valid on repeat calls")
	assert.False(t, gate.ViaQuery(r))
}

func TestAPIKeyGate_Missing(t *testing.T) {
	gate := NewAPIKeyGate("k-123", true, zerolog.Nop())
	d := gate.Authenticate(httptest.NewRequest(http.MethodPost, "/v1/ingest/usage", nil))

	require.NotNil(t, d)
	assert.Equal(t, http.StatusUnauthorized, d.Status)
	assert.ErrorIs(t, d, domain.ErrAPIKeyRequired)
	assert.Contains(t, d.Message, HeaderAPIKey)
}

func TestAPIKeyGate_Mismatch(t *testing.T) {
	gate := NewAPIKeyGate("k-123", true, zerolog.Nop())
	r := httptest.NewRequest(http.MethodPost, "/v1/ingest/usage", nil)
	r.Header.Set(HeaderAPIKey, "k-124")

	d := gate.Authenticate(r)
	require.NotNil(t, d)
	assert.Equal(t, http.StatusUnauthorized, d.Status)
	assert.ErrorIs(t, d, domain.ErrInvalidAPIKey)
}

func TestAPIKeyGate_QueryParameter(t *testing.T) {
	gate := NewAPIKeyGate("k-123", true, zerolog.Nop())
	r := httptest.NewRequest(http.MethodPost, "/v1/ingest/usage?api_key=k-123", nil)

	assert.Nil(t, gate.Authenticate(r))
	assert.True(t, gate.ViaQuery(r))
}

func TestAPIKeyGate_HeaderPreferredOverQuery(t *testing.T) {
	gate := NewAPIKeyGate("k-123", true, zerolog.Nop())
	r := httptest.NewRequest(http.MethodPost, "/v1/ingest/usage?api_key=k-123", nil)
	r.Header.Set(HeaderAPIKey, "wrong")

	d := gate.Authenticate(r)
	require.NotNil(t, d)
	assert.ErrorIs(t, d, domain.ErrInvalidAPIKey)
}

func TestAPIKeyGate_QueryDisabled(t *testing.T) {
	gate := NewAPIKeyGate("k-123", false, zerolog.Nop())
	r := httptest.NewRequest(http.MethodPost, "/v1/ingest/usage?api_key=k-123", nil)

	d := gate.Authenticate(r)
	require.NotNil(t, d)
	assert.ErrorIs(t, d, domain.ErrAPIKeyRequired)
}

func TestAPIKeyGate_EmptyConfiguredKeyNeverMatches(t *testing.T) {
	gate := NewAPIKeyGate("", true, zerolog.Nop())
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set(HeaderAPIKey, "anything")

	assert.NotNil(t, gate.Authenticate(r))
}
