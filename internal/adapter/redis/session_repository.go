package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/nitinmogalapalli/stackify/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// Key schema:
//   session:{tokenHash}: JSON-encoded domain.Session, TTL = time until expiry

func sessionKey(tokenHash string) string {
	return "session:" + tokenHash
}

// SessionRepo implements domain.SessionRepository on Redis. The TTL mirrors
// the session's absolute expiry, so expired sessions vanish from the store
// without a sweeper.
type SessionRepo struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

func NewSessionRepo(rdb *goredis.Client, clock clockwork.Clock) *SessionRepo {
	return &SessionRepo{rdb: rdb, clock: clock}
}

func (r *SessionRepo) Create(ctx context.Context, tokenHash string, session *domain.Session) error {
	return r.write(ctx, tokenHash, session)
}

func (r *SessionRepo) Update(ctx context.Context, tokenHash string, session *domain.Session) error {
	return r.write(ctx, tokenHash, session)
}

func (r *SessionRepo) write(ctx context.Context, tokenHash string, session *domain.Session) error {
	ttl := session.ExpiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return fmt.Errorf("session expiry must be in the future")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.rdb.Set(ctx, sessionKey(tokenHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns (nil, nil) when the token hash is unknown or the entry has
// expired out of the store.
func (r *SessionRepo) Get(ctx context.Context, tokenHash string) (*domain.Session, error) {
	val, err := r.rdb.Get(ctx, sessionKey(tokenHash)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	if err := r.rdb.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
