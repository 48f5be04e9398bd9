// Package app implements the gateway's business operations: the identity
// lifecycle (sign-up, sign-in, sign-out, refresh) and the todo procedures.
// All session mutations are synchronous relative to their caller: a session
// is never observable before the store write that created it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nitinmogalapalli/stackify/internal/auth"
	"github.com/nitinmogalapalli/stackify/internal/domain"
	"github.com/nitinmogalapalli/stackify/internal/metrics"
	apperrors "github.com/nitinmogalapalli/stackify/internal/platform/errors"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	users    domain.UserRepository
	todos    domain.TodoRepository
	sessions domain.SessionRepository
	authn    *auth.Authenticator
	hasher   *auth.TokenHasher
	clock    clockwork.Clock

	sessionMaxAge time.Duration
	autoSignIn    bool
}

func NewService(
	users domain.UserRepository,
	todos domain.TodoRepository,
	sessions domain.SessionRepository,
	authn *auth.Authenticator,
	hasher *auth.TokenHasher,
	clock clockwork.Clock,
	sessionMaxAge time.Duration,
	autoSignIn bool,
) *Service {
	return &Service{
		users:         users,
		todos:         todos,
		sessions:      sessions,
		authn:         authn,
		hasher:        hasher,
		clock:         clock,
		sessionMaxAge: sessionMaxAge,
		autoSignIn:    autoSignIn,
	}
}

// IssuedSession pairs a stored session with the raw token handed to the
// client. The raw token exists only here and in the response.
type IssuedSession struct {
	Token   string
	Session *domain.Session
}

// --- Identity lifecycle ---

// SignUp creates a user with a hashed credential. When auto sign-in is
// enabled it also issues a session, so the client is logged in immediately.
func (s *Service) SignUp(ctx context.Context, email, name, password string) (*domain.User, *IssuedSession, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, apperrors.InternalError("failed to hash password", err)
	}

	user, err := s.users.Create(ctx, email, name, string(passwordHash))
	if errors.Is(err, domain.ErrEmailTaken) {
		return nil, nil, apperrors.ConflictError("email already registered")
	}
	if err != nil {
		return nil, nil, apperrors.FromStore("failed to create user", err)
	}

	slog.InfoContext(ctx, "User signed up", "user_id", user.ID)

	if !s.autoSignIn {
		return user, nil, nil
	}

	issued, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, issued, nil
}

// SignIn verifies the credential and issues a session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.User, *IssuedSession, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Burn a comparison anyway so timing does not reveal email existence.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, nil, apperrors.InvalidCredentialsError()
	}
	if err != nil {
		return nil, nil, apperrors.FromStore("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.InvalidCredentialsError()
	}

	issued, err := s.issueSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.RecordAuthEvent(ctx, user.ID, domain.AuthEventSignIn); err != nil {
		slog.ErrorContext(ctx, "Failed to record sign-in event", "user_id", user.ID, "error", err)
	}

	slog.InfoContext(ctx, "User signed in", "user_id", user.ID, "session_id", issued.Session.ID)
	return user, issued, nil
}

// SignOut revokes the session behind the token and drops its cached outcome
// so the revocation is observed by the very next request.
func (s *Service) SignOut(ctx context.Context, token string) error {
	tokenHash := s.hasher.Hash(token)

	session, err := s.sessions.Get(ctx, tokenHash)
	if err != nil {
		return apperrors.FromStore("failed to load session", err)
	}

	if err := s.sessions.Delete(ctx, tokenHash); err != nil {
		return apperrors.FromStore("failed to revoke session", err)
	}
	s.authn.Invalidate(token)
	metrics.SessionsRevoked.Inc()

	if session != nil {
		if err := s.users.RecordAuthEvent(ctx, session.UserID, domain.AuthEventSignOut); err != nil {
			slog.ErrorContext(ctx, "Failed to record sign-out event", "user_id", session.UserID, "error", err)
		}
		slog.InfoContext(ctx, "User signed out", "user_id", session.UserID, "session_id", session.ID)
	}
	return nil
}

// Refresh slides the session's expiry forward by the configured max age and
// invalidates the cached outcome so the new expiry is observed immediately.
func (s *Service) Refresh(ctx context.Context, token string) (*IssuedSession, error) {
	tokenHash := s.hasher.Hash(token)

	session, err := s.sessions.Get(ctx, tokenHash)
	if err != nil {
		return nil, apperrors.FromStore("failed to load session", err)
	}
	if session == nil || session.Expired(s.clock.Now()) {
		return nil, apperrors.UnauthorizedError("session expired")
	}

	session.ExpiresAt = s.clock.Now().Add(s.sessionMaxAge)
	if err := s.sessions.Update(ctx, tokenHash, session); err != nil {
		return nil, apperrors.FromStore("failed to refresh session", err)
	}
	s.authn.Invalidate(token)

	if err := s.users.RecordAuthEvent(ctx, session.UserID, domain.AuthEventRefresh); err != nil {
		slog.ErrorContext(ctx, "Failed to record refresh event", "user_id", session.UserID, "error", err)
	}

	return &IssuedSession{Token: token, Session: session}, nil
}

func (s *Service) issueSession(ctx context.Context, userID uuid.UUID) (*IssuedSession, error) {
	token, err := auth.NewToken()
	if err != nil {
		return nil, apperrors.InternalError("failed to generate session token", err)
	}

	now := s.clock.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionMaxAge),
	}

	if err := s.sessions.Create(ctx, s.hasher.Hash(token), session); err != nil {
		return nil, apperrors.FromStore("failed to store session", err)
	}
	metrics.SessionsCreated.Inc()

	return &IssuedSession{Token: token, Session: session}, nil
}

// dummyHash is a bcrypt hash of an unguessable value, compared against when
// the email is unknown to keep sign-in timing uniform.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("stackify-dummy-credential"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("failed to generate dummy hash: %v", err))
	}
	return h
}()

// --- Todo operations ---

func (s *Service) GetTodos(ctx context.Context) ([]domain.Todo, error) {
	todos, err := s.todos.GetAll(ctx)
	if err != nil {
		return nil, apperrors.FromStore("failed to list todos", err)
	}
	return todos, nil
}

func (s *Service) CreateTodo(ctx context.Context, text string) (*domain.Todo, error) {
	todo, err := s.todos.Create(ctx, text)
	if err != nil {
		return nil, apperrors.FromStore("failed to create todo", err)
	}
	return todo, nil
}

func (s *Service) ToggleTodo(ctx context.Context, id int64, completed bool) (*domain.Todo, error) {
	todo, err := s.todos.SetCompleted(ctx, id, completed)
	if errors.Is(err, domain.ErrTodoNotFound) {
		return nil, apperrors.NotFoundError("todo not found")
	}
	if err != nil {
		return nil, apperrors.FromStore("failed to toggle todo", err)
	}
	return todo, nil
}

func (s *Service) DeleteTodo(ctx context.Context, id int64) error {
	err := s.todos.Delete(ctx, id)
	if errors.Is(err, domain.ErrTodoNotFound) {
		return apperrors.NotFoundError("todo not found")
	}
	if err != nil {
		return apperrors.FromStore("failed to delete todo", err)
	}
	return nil
}
