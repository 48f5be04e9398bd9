package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCookie(t *testing.T, rec interface{ Result() *http.Response }, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignUp_SetsSessionCookie(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/sign-up",
		`{"email":"dev@example.com","name":"Dev","password":"hunter2hunter2"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dev@example.com", resp.User.Email)
	require.NotEmpty(t, resp.Session.Token)

	cookie := findCookie(t, rec, sessionCookieName)
	require.NotNil(t, cookie)
	assert.Equal(t, resp.Session.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)

	// The credential hash never appears in the response.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignUp_ValidationFailures(t *testing.T) {
	f := newServerFixture(t)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"invalid email", `{"email":"not-an-email","name":"Dev","password":"hunter2hunter2"}`, "email"},
		{"missing name", `{"email":"dev@example.com","password":"hunter2hunter2"}`, "name"},
		{"short password", `{"email":"dev@example.com","name":"Dev","password":"short"}`, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/api/auth/sign-up", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Kind   string            `json:"kind"`
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "validation", resp.Kind)
			assert.Contains(t, resp.Fields, tt.field)
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newServerFixture(t)
	f.signUp(t, "dev@example.com")

	rec := f.do(http.MethodPost, "/api/auth/sign-up",
		`{"email":"dev@example.com","name":"Other","password":"hunter2hunter2"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"conflict"`)
}

func TestSignIn_Success(t *testing.T) {
	f := newServerFixture(t)
	f.signUp(t, "dev@example.com")

	rec := f.do(http.MethodPost, "/api/auth/sign-in",
		`{"email":"dev@example.com","password":"hunter2hunter2"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, findCookie(t, rec, sessionCookieName))
}

func TestSignIn_BadCredentials(t *testing.T) {
	f := newServerFixture(t)
	f.signUp(t, "dev@example.com")

	wrongPassword := f.do(http.MethodPost, "/api/auth/sign-in",
		`{"email":"dev@example.com","password":"wrong-password"}`, nil)
	unknownEmail := f.do(http.MethodPost, "/api/auth/sign-in",
		`{"email":"nobody@example.com","password":"hunter2hunter2"}`, nil)

	// Unknown email and wrong password answer identically.
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Contains(t, wrongPassword.Body.String(), "invalid email or password")
}

func TestSignOut_RevokesSession(t *testing.T) {
	f := newServerFixture(t)
	token := f.signUp(t, "dev@example.com")

	rec := f.do(http.MethodPost, "/api/auth/sign-out", "", bearer(token))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	cookie := findCookie(t, rec, sessionCookieName)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge)

	// The revoked token no longer resolves to an identity.
	rec = f.do(http.MethodGet, "/api/auth/session", "", bearer(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String()[:4])
}

func TestSignOut_WithoutToken(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/sign-out", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRefresh_SlidesExpiry(t *testing.T) {
	f := newServerFixture(t)
	token := f.signUp(t, "dev@example.com")

	f.clock.Advance(24 * time.Hour)

	rec := f.do(http.MethodPost, "/api/auth/refresh", "", bearer(token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, findCookie(t, rec, sessionCookieName))
}

func TestRefresh_WithoutToken(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(http.MethodPost, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetSession_Authenticated(t *testing.T) {
	f := newServerFixture(t)
	token := f.signUp(t, "dev@example.com")

	rec := f.do(http.MethodGet, "/api/auth/session", "", bearer(token))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "dev@example.com", resp.User.Email)
}

func TestGetSession_ViaCookie(t *testing.T) {
	f := newServerFixture(t)
	token := f.signUp(t, "dev@example.com")

	rec := f.do(http.MethodGet, "/api/auth/session", "",
		http.Header{"Cookie": []string{sessionCookieName + "=" + token}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dev@example.com")
}

func TestGetSession_Anonymous(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(http.MethodGet, "/api/auth/session", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String()[:4])
}
