package httpserver

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nitinmogalapalli/stackify/internal/app"
	"github.com/nitinmogalapalli/stackify/internal/domain"
	apperrors "github.com/nitinmogalapalli/stackify/internal/platform/errors"
)

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=8"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userPayload is the wire shape of a user. The credential hash never
// leaves the server.
type userPayload struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// sessionPayload carries the raw token for native clients; browsers get the
// same token via the session cookie.
type sessionPayload struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type authResponse struct {
	User    userPayload     `json:"user"`
	Session *sessionPayload `json:"session,omitempty"`
}

func toUserPayload(user *domain.User) userPayload {
	return userPayload{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}

func toSessionPayload(issued *app.IssuedSession) *sessionPayload {
	if issued == nil {
		return nil
	}
	return &sessionPayload{
		Token:     issued.Token,
		ExpiresAt: issued.Session.ExpiresAt,
	}
}

func (s *Server) handleSignUp(c echo.Context) error {
	var req signUpRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	user, issued, err := s.svc.SignUp(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return err
	}

	if issued != nil {
		s.setSessionCookie(c, issued.Token, issued.Session.ExpiresAt)
	}
	return c.JSON(http.StatusCreated, authResponse{
		User:    toUserPayload(user),
		Session: toSessionPayload(issued),
	})
}

func (s *Server) handleSignIn(c echo.Context) error {
	var req signInRequest
	if err := s.bindAndValidate(c, &req); err != nil {
		return err
	}

	user, issued, err := s.svc.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	s.setSessionCookie(c, issued.Token, issued.Session.ExpiresAt)
	return c.JSON(http.StatusOK, authResponse{
		User:    toUserPayload(user),
		Session: toSessionPayload(issued),
	})
}

// handleSignOut revokes whatever session the request carries. Revoking
// without a token is a no-op, not an error; the cookie is cleared either way.
func (s *Server) handleSignOut(c echo.Context) error {
	token := extractToken(c.Request())
	if token != "" {
		if err := s.svc.SignOut(c.Request().Context(), token); err != nil {
			return err
		}
	}
	s.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRefresh(c echo.Context) error {
	token := extractToken(c.Request())
	if token == "" {
		return apperrors.UnauthorizedError("no session token")
	}

	issued, err := s.svc.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}

	s.setSessionCookie(c, issued.Token, issued.Session.ExpiresAt)
	return c.JSON(http.StatusOK, map[string]any{
		"session": toSessionPayload(issued),
	})
}

// handleGetSession reports the caller's identity. Anonymous callers get a
// JSON null body, not an error, mirroring the procedure-side treatment of
// missing sessions.
func (s *Server) handleGetSession(c echo.Context) error {
	identity, err := s.resolveIdentity(c)
	if err != nil {
		return err
	}

	if !identity.Authenticated() {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user": toUserPayload(identity.User),
		"session": map[string]any{
			"expiresAt": identity.Session.ExpiresAt,
		},
	})
}

var payloadValidator = newPayloadValidator()

func newPayloadValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Server) bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return apperrors.ValidationError("malformed request body")
	}

	if err := payloadValidator.Struct(req); err != nil {
		verr := apperrors.ValidationError("invalid request")
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				verr.WithField(fe.Field(), payloadFieldDetail(fe))
			}
		}
		return verr
	}
	return nil
}

func payloadFieldDetail(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag() + " constraint"
	}
}
