package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/sensorwatch-backend/internal/auth"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const revokedBeforePrefix = "session:revoked_before:"

// SessionStore narrows the stateless-token staleness window: it remembers,
// per user, the instant before which issued access tokens are no longer
// accepted. A nil store (no Redis configured) accepts every verified token.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionStore keeps revocation markers for ttl, which must be at least
// the access-token lifetime.
func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if rdb == nil {
		return nil
	}
	return &SessionStore{rdb: rdb, ttl: ttl + time.Minute}
}

// RevokeUser invalidates every token of userID issued before at. Token iat
// has whole-second precision, so the marker is at rounded up to the next
// second: a token from earlier in the same second is revoked too.
func (s *SessionStore) RevokeUser(ctx context.Context, userID uuid.UUID, at time.Time) error {
	if s == nil {
		return nil
	}
	if err := s.rdb.Set(ctx, revokedBeforePrefix+userID.String(), revocationMarker(at), s.ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// IsRevoked reports whether p's token predates its user's revocation marker.
func (s *SessionStore) IsRevoked(ctx context.Context, p *auth.Principal) (bool, error) {
	if s == nil || p == nil {
		return false, nil
	}
	val, err := s.rdb.Get(ctx, revokedBeforePrefix+p.ID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read revocation: %w", err)
	}
	before, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation: %w", err)
	}
	return p.IssuedAt.Unix() < before, nil
}

func revocationMarker(at time.Time) int64 {
	sec := at.Unix()
	if at.Nanosecond() > 0 {
		sec++
	}
	return sec
}
