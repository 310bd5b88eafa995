package credential

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/client-portal/internal/core/domain"
)

func TestTokenCodec_IssueAndParse(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)
	user := &domain.User{ID: "u1", Email: "a@example.com", Profile: domain.AdminProfile{}}

	raw, exp, err := codec.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := codec.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "a@example.com", claims.Email)
}

func TestTokenCodec_RejectsExpired(t *testing.T) {
	codec := NewTokenCodec("secret", time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	codec.now = func() time.Time { return issuedAt }
	raw, _, err := codec.Issue(&domain.User{ID: "u1", Profile: domain.AdminProfile{}})
	require.NoError(t, err)

	codec.now = time.Now
	_, err = codec.Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenCodec_RejectsWrongSecret(t *testing.T) {
	raw, _, err := NewTokenCodec("one", time.Hour).Issue(&domain.User{ID: "u1", Profile: domain.AdminProfile{}})
	require.NoError(t, err)

	_, err = NewTokenCodec("two", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	claims := SessionClaims{
		UserID:           "u1",
		Role:             "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenCodec("secret", time.Hour).Parse(raw)
	assert.Error(t, err)
}

func TestTokenCodec_RequiresExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{UserID: "u1", Role: "ADMIN"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenCodec("secret", time.Hour).Parse(raw)
	assert.Error(t, err)
}

func TestTokenCodec_RejectsGarbage(t *testing.T) {
	_, err := NewTokenCodec("secret", time.Hour).Parse("not-a-token")
	assert.Error(t, err)
}
