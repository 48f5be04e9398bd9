package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nitinmogalapalli/stackify/internal/app"
	"github.com/nitinmogalapalli/stackify/internal/auth"
	"github.com/nitinmogalapalli/stackify/internal/domain"
	"github.com/nitinmogalapalli/stackify/internal/platform/config"
	"github.com/nitinmogalapalli/stackify/internal/procedures"
	"github.com/nitinmogalapalli/stackify/internal/rpc"
	"github.com/stretchr/testify/require"
)

const (
	testWebOrigin    = "https://app.stackify.dev"
	testNativeOrigin = "stackify://"
)

type memUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (m *memUserRepo) Create(_ context.Context, email, name, hash string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}
	u := &domain.User{ID: uuid.New(), Email: email, Name: name, PasswordHash: hash}
	m.users[u.ID] = u
	return u, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepo) RecordAuthEvent(_ context.Context, _ uuid.UUID, _ string) error {
	return nil
}

type memSessionRepo struct {
	sessions map[string]*domain.Session
}

func (m *memSessionRepo) Create(_ context.Context, tokenHash string, s *domain.Session) error {
	m.sessions[tokenHash] = s
	return nil
}

func (m *memSessionRepo) Get(_ context.Context, tokenHash string) (*domain.Session, error) {
	return m.sessions[tokenHash], nil
}

func (m *memSessionRepo) Update(_ context.Context, tokenHash string, s *domain.Session) error {
	m.sessions[tokenHash] = s
	return nil
}

func (m *memSessionRepo) Delete(_ context.Context, tokenHash string) error {
	delete(m.sessions, tokenHash)
	return nil
}

type memTodoRepo struct {
	todos  map[int64]*domain.Todo
	nextID int64
}

func (m *memTodoRepo) GetAll(_ context.Context) ([]domain.Todo, error) {
	all := make([]domain.Todo, 0, len(m.todos))
	for id := int64(1); id < m.nextID; id++ {
		if t, ok := m.todos[id]; ok {
			all = append(all, *t)
		}
	}
	return all, nil
}

func (m *memTodoRepo) Create(_ context.Context, text string) (*domain.Todo, error) {
	t := &domain.Todo{ID: m.nextID, Text: text}
	m.todos[t.ID] = t
	m.nextID++
	return t, nil
}

func (m *memTodoRepo) SetCompleted(_ context.Context, id int64, completed bool) (*domain.Todo, error) {
	t, ok := m.todos[id]
	if !ok {
		return nil, domain.ErrTodoNotFound
	}
	t.Completed = completed
	return t, nil
}

func (m *memTodoRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.todos[id]; !ok {
		return domain.ErrTodoNotFound
	}
	delete(m.todos, id)
	return nil
}

type serverFixture struct {
	server *Server
	clock  *clockwork.FakeClock
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	cfg := &config.Config{
		AppEnv:          "test",
		Port:            "0",
		CORSOrigin:      testWebOrigin,
		NativeOrigins:   []string{testNativeOrigin, "exp://"},
		SessionSecret:   "test-secret-of-at-least-32-characters!!",
		SessionMaxAge:   168 * time.Hour,
		SessionCacheTTL: time.Minute,
		AutoSignIn:      true,
	}

	clock := clockwork.NewFakeClock()
	users := &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
	sessions := &memSessionRepo{sessions: make(map[string]*domain.Session)}
	todos := &memTodoRepo{todos: make(map[int64]*domain.Todo), nextID: 1}

	hasher := auth.NewTokenHasher(cfg.SessionSecret)
	authn := auth.NewAuthenticator(sessions, users, hasher, cfg.SessionCacheTTL, clock)
	svc := app.NewService(users, todos, sessions, authn, hasher, clock, cfg.SessionMaxAge, cfg.AutoSignIn)
	dispatcher := rpc.NewDispatcher(procedures.NewRegistry())

	healthChecks := []HealthCheck{
		{Name: "always_ok", Check: func(context.Context) error { return nil }},
	}

	return &serverFixture{
		server: NewServer(cfg, svc, authn, dispatcher, healthChecks),
		clock:  clock,
	}
}

func (f *serverFixture) do(method, target, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for name, values := range header {
		for _, v := range values {
			req.Header.Set(name, v)
		}
	}

	rec := httptest.NewRecorder()
	f.server.echo.ServeHTTP(rec, req)
	return rec
}

// signUp registers a user through the HTTP surface and returns the raw
// session token from the response body.
func (f *serverFixture) signUp(t *testing.T, email string) string {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/auth/sign-up",
		`{"email":"`+email+`","name":"Dev","password":"hunter2hunter2"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Session.Token)
	return resp.Session.Token
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}
