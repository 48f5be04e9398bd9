package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nitinmogalapalli/stackify/internal/metrics"
	"github.com/nitinmogalapalli/stackify/internal/platform/correlation"
	apperrors "github.com/nitinmogalapalli/stackify/internal/platform/errors"
)

func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// originPolicyMiddleware enforces the cross-origin policy on every request.
// Trusted origins get the credential-sharing headers echoed back; untrusted
// origins get none, and the browser blocks the response on its side. The
// request itself still proceeds (same-origin and non-browser clients carry
// no Origin header at all). Preflight requests are answered immediately with
// 204 and never reach downstream components.
func (s *Server) originPolicyMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqOrigin := c.Request().Header.Get(echo.HeaderOrigin)
			decision := s.policy.Decide(reqOrigin)

			header := c.Response().Header()
			header.Add(echo.HeaderVary, echo.HeaderOrigin)

			if decision.AllowOrigin != "" {
				header.Set(echo.HeaderAccessControlAllowOrigin, decision.AllowOrigin)
				header.Set(echo.HeaderAccessControlAllowCredentials, "true")
				header.Set(echo.HeaderAccessControlAllowMethods, decision.AllowMethods)
				header.Set(echo.HeaderAccessControlAllowHeaders, decision.AllowHeaders)
			} else if reqOrigin != "" {
				metrics.OriginRejections.Inc()
			}

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}

// errorHandlingMiddleware converts structured errors returned by handlers
// into JSON responses. Echo's own HTTP errors (404 on unknown routes etc.)
// pass through unchanged.
func errorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			structuredErr := apperrors.AsStructuredError(err)
			metrics.HTTPErrorsTotal.WithLabelValues(string(structuredErr.Kind)).Inc()
			logError(c, structuredErr)

			if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
				return fmt.Errorf("failed to write error response: %w", err)
			}
			return nil
		}
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	ctx := c.Request().Context()
	attrs := []any{
		"kind", err.Kind,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	switch err.Kind {
	case apperrors.KindValidation, apperrors.KindNotFound, apperrors.KindInvalidCredentials:
		slog.InfoContext(ctx, "Request rejected", attrs...)
	case apperrors.KindUnauthorized:
		slog.InfoContext(ctx, "Unauthorized request", attrs...)
	case apperrors.KindConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	default:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Request failed", attrs...)
	}
}
