package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/client-portal/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

var errMissingSubject = errors.New("session token has no user_id")

// SessionClaims is the payload of the primary session token. Role-specific
// fields such as the owning tenant are deliberately absent: they are read
// from the user record on every request.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec returns a codec for the given signing secret. A non-positive
// ttl falls back to 24h.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for user and returns it with its expiry.
func (c *TokenCodec) Issue(user *domain.User) (string, time.Time, error) {
	now := c.now().UTC()
	exp := now.Add(c.ttl)
	claims := SessionClaims{
		UserID: user.ID,
		Role:   string(user.Role()),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature, algorithm and expiry and returns the claims.
func (c *TokenCodec) Parse(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if claims.UserID == "" {
		return nil, errMissingSubject
	}
	return claims, nil
}
