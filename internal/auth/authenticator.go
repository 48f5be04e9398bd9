// Package auth resolves a presented session token into a verified caller
// identity, backed by the session trust store with a short-lived positive
// outcome cache.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nitinmogalapalli/stackify/internal/domain"
	"github.com/nitinmogalapalli/stackify/internal/metrics"
	apperrors "github.com/nitinmogalapalli/stackify/internal/platform/errors"
)

type Authenticator struct {
	sessions domain.SessionRepository
	users    domain.UserRepository
	hasher   *TokenHasher
	cache    *outcomeCache
	clock    clockwork.Clock
}

func NewAuthenticator(sessions domain.SessionRepository, users domain.UserRepository, hasher *TokenHasher, cacheTTL time.Duration, clock clockwork.Clock) *Authenticator {
	return &Authenticator{
		sessions: sessions,
		users:    users,
		hasher:   hasher,
		cache:    newOutcomeCache(cacheTTL, clock),
		clock:    clock,
	}
}

// Authenticate resolves a session token into an identity outcome. An empty,
// unknown, or expired token yields the anonymous identity, never an error;
// errors are reserved for trust-store failures. A cached positive outcome
// is still checked against the session's absolute expiry, so a session is
// treated as absent from the moment it expires even if the cache window
// has not elapsed.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Anonymous, nil
	}

	tokenHash := a.hasher.Hash(token)

	if identity, ok := a.cache.get(tokenHash); ok {
		if identity.Session.Expired(a.clock.Now()) {
			a.cache.invalidate(tokenHash)
			return domain.Anonymous, nil
		}
		metrics.SessionCacheHits.Inc()
		return identity, nil
	}
	metrics.SessionCacheMisses.Inc()

	session, err := a.sessions.Get(ctx, tokenHash)
	if err != nil {
		return domain.Anonymous, apperrors.FromStore("failed to look up session", err)
	}
	if session == nil || session.Expired(a.clock.Now()) {
		return domain.Anonymous, nil
	}

	user, err := a.users.GetByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Session references a user that no longer exists (wiped DB).
		return domain.Anonymous, nil
	}
	if err != nil {
		return domain.Anonymous, apperrors.FromStore("failed to load session user", err)
	}

	identity := domain.Identity{User: user, Session: session}
	a.cache.set(tokenHash, identity)
	return identity, nil
}

// Invalidate drops the cached outcome for a token. Called on sign-out and
// refresh so revocation and expiry changes are observed immediately.
func (a *Authenticator) Invalidate(token string) {
	a.cache.invalidate(a.hasher.Hash(token))
}

// StartCacheEviction launches periodic eviction of expired cache entries.
// Returns a stop function.
func (a *Authenticator) StartCacheEviction(interval time.Duration) func() {
	return a.cache.startEvictionTimer(interval)
}
