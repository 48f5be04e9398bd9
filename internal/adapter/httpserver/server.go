// Package httpserver is the gateway's HTTP surface: origin policy
// enforcement, the auth endpoint router, and the procedure dispatch
// endpoints.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nitinmogalapalli/stackify/internal/app"
	"github.com/nitinmogalapalli/stackify/internal/auth"
	"github.com/nitinmogalapalli/stackify/internal/domain"
	"github.com/nitinmogalapalli/stackify/internal/origin"
	"github.com/nitinmogalapalli/stackify/internal/platform/config"
	"github.com/nitinmogalapalli/stackify/internal/rpc"
)

// sessionCookieName is the cookie carrying the raw session token. Native
// clients present the same token via Authorization: Bearer instead.
const sessionCookieName = "stackify_session"

type Server struct {
	echo   *echo.Echo
	config *config.Config
	policy *origin.Policy

	svc        *app.Service
	authn      *auth.Authenticator
	dispatcher *rpc.Dispatcher

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, svc *app.Service, authn *auth.Authenticator, dispatcher *rpc.Dispatcher, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		policy:       origin.NewPolicy(cfg.TrustedOrigins()),
		svc:          svc,
		authn:        authn,
		dispatcher:   dispatcher,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// extractToken pulls the session token from either transport: the bearer
// header (native clients) or the session cookie (browsers). Both carry the
// same opaque token and are accepted uniformly.
func extractToken(req *http.Request) string {
	if h := req.Header.Get(echo.HeaderAuthorization); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return token
		}
	}
	if cookie, err := req.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// resolveIdentity builds the caller identity for one request. Absence of a
// token or an invalid/expired session yields the anonymous identity, not an
// error; errors indicate trust-store failures.
func (s *Server) resolveIdentity(c echo.Context) (domain.Identity, error) {
	token := extractToken(c.Request())
	return s.authn.Authenticate(c.Request().Context(), token)
}

// setSessionCookie issues the session cookie: HTTP-only, secure, SameSite
// None so the web client can call across origins, optionally scoped to a
// parent domain for cross-subdomain sharing.
func (s *Server) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.config.CookieDomain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
