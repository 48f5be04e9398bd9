package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/nitinmogalapalli/stackify/internal/adapter/httpserver"
	"github.com/nitinmogalapalli/stackify/internal/adapter/postgres"
	"github.com/nitinmogalapalli/stackify/internal/adapter/redis"
	"github.com/nitinmogalapalli/stackify/internal/app"
	"github.com/nitinmogalapalli/stackify/internal/auth"
	"github.com/nitinmogalapalli/stackify/internal/platform/config"
	"github.com/nitinmogalapalli/stackify/internal/platform/logging"
	"github.com/nitinmogalapalli/stackify/internal/procedures"
	"github.com/nitinmogalapalli/stackify/internal/rpc"
	goredis "github.com/redis/go-redis/v9"
)

const cacheEvictionInterval = 1 * time.Minute

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *httpserver.Server, stopEviction func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		stopEviction()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	userRepo := postgres.NewUserRepo(pool)
	todoRepo := postgres.NewTodoRepo(pool)
	sessionRepo := redis.NewSessionRepo(redisClient, clock)

	hasher := auth.NewTokenHasher(cfg.SessionSecret)
	authn := auth.NewAuthenticator(sessionRepo, userRepo, hasher, cfg.SessionCacheTTL, clock)
	stopEviction := authn.StartCacheEviction(cacheEvictionInterval)

	appSvc := app.NewService(
		userRepo,
		todoRepo,
		sessionRepo,
		authn,
		hasher,
		clock,
		cfg.SessionMaxAge,
		cfg.AutoSignIn,
	)

	registry := procedures.NewRegistry()
	dispatcher := rpc.NewDispatcher(registry)
	slog.Info("Procedures registered", "paths", registry.Paths())

	healthChecks := []httpserver.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	}

	srv := httpserver.NewServer(cfg, appSvc, authn, dispatcher, healthChecks)

	done := runGracefulShutdown(srv, stopEviction)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
