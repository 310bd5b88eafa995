package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/client-portal/internal/core/domain"
)

const (
	sessionKeyPrefix   = "session:"
	userSessionsPrefix = "user_sessions:"
)

// SessionStore keeps legacy server-side sessions as JSON values with a TTL.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Get returns the stored projection, or domain.ErrUnauthenticated when the
// session is unknown or expired.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.SessionProjection, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var proj domain.SessionProjection
	if err := json.Unmarshal(raw, &proj); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &proj, nil
}

// Create stores proj under a new random session id and returns the id.
func (s *SessionStore) Create(ctx context.Context, proj *domain.SessionProjection, ttl time.Duration) (string, error) {
	raw, err := json.Marshal(proj)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	sid := uuid.NewString()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKeyPrefix+sid, raw, ttl)
		if proj.UserID != "" {
			// the index lives as long as the newest session
			index := userSessionsPrefix + proj.UserID
			pipe.SAdd(ctx, index, sid)
			if ttl > 0 {
				pipe.Expire(ctx, index, ttl)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return sid, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RevokeUser deletes every session created for userID.
func (s *SessionStore) RevokeUser(ctx context.Context, userID string) error {
	index := userSessionsPrefix + userID
	sids, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(sids)+1)
	for _, sid := range sids {
		keys = append(keys, sessionKeyPrefix+sid)
	}
	keys = append(keys, index)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke user sessions: %w", err)
	}
	return nil
}
