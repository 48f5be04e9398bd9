package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("CORS_ORIGIN", "https://app.example.com")
	t.Setenv("SESSION_SECRET", "test-session-secret-of-at-least-32-chars")
}

func TestLoad_AllRequiredVarsSet(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, "https://app.example.com", cfg.CORSOrigin)
	assert.Equal(t, 168*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 60*time.Second, cfg.SessionCacheTTL)
	assert.True(t, cfg.AutoSignIn)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		skipEnv string
		wantErr string
	}{
		{"missing DATABASE_URL", "DATABASE_URL", "DATABASE_URL is required"},
		{"missing REDIS_URL", "REDIS_URL", "REDIS_URL is required"},
		{"missing CORS_ORIGIN", "CORS_ORIGIN", "CORS_ORIGIN is required"},
		{"missing SESSION_SECRET", "SESSION_SECRET", "SESSION_SECRET is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.skipEnv, "")

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestLoad_ShortSessionSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET must be at least 32 characters")
}

func TestLoad_CacheTTLAboveMaxAge(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_MAX_AGE", "30s")
	t.Setenv("SESSION_CACHE_TTL", "60s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_CACHE_TTL")
}

func TestTrustedOrigins_IncludesNativeSchemes(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	origins := cfg.TrustedOrigins()
	assert.Contains(t, origins, "https://app.example.com")
	assert.Contains(t, origins, "stackify://")
	assert.Contains(t, origins, "exp://")
}

func TestLoad_NativeOriginsOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("NATIVE_ORIGINS", "myapp://")

	cfg, err := Load()
	require.NoError(t, err)

	origins := cfg.TrustedOrigins()
	assert.Contains(t, origins, "myapp://")
	assert.NotContains(t, origins, "exp://")
}
