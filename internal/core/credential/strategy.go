package credential

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// Channel names, also used as metric label values.
const (
	ChannelSessionToken  = "session_token"
	ChannelLegacySession = "legacy_session"
	ChannelNone          = "none"
)

// ErrNoCredential means the request carries nothing for this channel.
var ErrNoCredential = errors.New("no credential for channel")

// Strategy resolves an identity from one credential channel. It returns
// ErrNoCredential when the request has no material for the channel and any
// other error when the material is present but unusable.
type Strategy interface {
	Channel() string
	Resolve(ctx context.Context, r *http.Request) (*domain.Identity, error)
}

// UserLookup loads the stored user behind a credential.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// SessionLookup reads legacy sessions.
type SessionLookup interface {
	Get(ctx context.Context, sessionID string) (*domain.SessionProjection, error)
}

// SessionTokenStrategy reads the signed token from the primary session cookie.
type SessionTokenStrategy struct {
	cookie string
	codec  *TokenCodec
	users  UserLookup
}

func NewSessionTokenStrategy(cookie string, codec *TokenCodec, users UserLookup) *SessionTokenStrategy {
	return &SessionTokenStrategy{cookie: cookie, codec: codec, users: users}
}

func (s *SessionTokenStrategy) Channel() string { return ChannelSessionToken }

func (s *SessionTokenStrategy) Resolve(ctx context.Context, r *http.Request) (*domain.Identity, error) {
	raw := cookieValue(r, s.cookie)
	if raw == "" {
		return nil, ErrNoCredential
	}

	claims, err := s.codec.Parse(raw)
	if err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("session token role: %w", err)
	}

	var tenantID string
	if role == domain.RoleClientUser {
		if tenantID, err = clientTenant(ctx, s.users, claims.UserID); err != nil {
			return nil, err
		}
	}

	return domain.NewIdentity(claims.UserID, role, claims.Email, tenantID)
}

// LegacySessionStrategy reads a session id cookie and looks it up in the
// legacy session store. The tenant stored in the session is ignored for
// client users; it is reloaded from the user store on every request.
type LegacySessionStrategy struct {
	cookie   string
	sessions SessionLookup
	users    UserLookup
}

func NewLegacySessionStrategy(cookie string, sessions SessionLookup, users UserLookup) *LegacySessionStrategy {
	return &LegacySessionStrategy{cookie: cookie, sessions: sessions, users: users}
}

func (s *LegacySessionStrategy) Channel() string { return ChannelLegacySession }

func (s *LegacySessionStrategy) Resolve(ctx context.Context, r *http.Request) (*domain.Identity, error) {
	sid := cookieValue(r, s.cookie)
	if sid == "" {
		return nil, ErrNoCredential
	}

	proj, err := s.sessions.Get(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("legacy session: %w", err)
	}
	role, err := domain.ParseRole(proj.Role)
	if err != nil {
		return nil, fmt.Errorf("legacy session role: %w", err)
	}

	var tenantID string
	if role == domain.RoleClientUser {
		if tenantID, err = clientTenant(ctx, s.users, proj.UserID); err != nil {
			return nil, err
		}
	}
	return domain.NewIdentity(proj.UserID, role, proj.Email, tenantID)
}

// clientTenant returns the current tenant of a client user. Tenant linkage
// can change after a credential is issued, and a deleted user must not
// resolve.
func clientTenant(ctx context.Context, users UserLookup, userID string) (string, error) {
	u, err := users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load client user: %w", err)
	}
	cu, ok := u.ClientUser()
	if !ok {
		return "", fmt.Errorf("user %s is no longer a client user: %w", userID, domain.ErrInvalidIdentity)
	}
	return cu.TenantID, nil
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
