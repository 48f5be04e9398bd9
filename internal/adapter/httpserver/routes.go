package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(correlationMiddleware)
	s.echo.Use(requestLoggerMiddleware())
	s.echo.Use(s.originPolicyMiddleware())
	s.echo.Use(errorHandlingMiddleware())

	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	authGroup := s.echo.Group("/api/auth")
	authGroup.POST("/sign-up", s.handleSignUp)
	authGroup.POST("/sign-in", s.handleSignIn)
	authGroup.POST("/sign-out", s.handleSignOut)
	authGroup.POST("/refresh", s.handleRefresh)
	authGroup.GET("/session", s.handleGetSession)

	s.echo.POST("/trpc/:path", s.handleProcedureCall)
	s.echo.GET("/trpc/:path", s.handleProcedureQuery)

	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func requestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request handled", attrs...)
			return nil
		},
	})
}
