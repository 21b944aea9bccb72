package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL())
	require.Equal(t, 14*24*time.Hour, cfg.Auth.RefreshTTL())
	require.Greater(t, cfg.Auth.RefreshTTL(), cfg.Auth.AccessTTL())
}

func TestLoadRejectsRefreshNotLongerThanAccess(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "60")
	t.Setenv("AUTH_REFRESH_TOKEN_TTL_MINUTES", "60")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "must exceed")
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
}

func TestAppConfigHelpers(t *testing.T) {
	app := AppConfig{Host: "127.0.0.1", Port: "9000", RequestTimeoutSeconds: 0}
	require.Equal(t, "127.0.0.1:9000", app.Addr())
	require.Zero(t, app.RequestTimeout())

	app.RequestTimeoutSeconds = 5
	require.Equal(t, 5*time.Second, app.RequestTimeout())

	require.Zero(t, RedisConfig{}.UserCacheTTL())
	require.Equal(t, time.Minute, RedisConfig{UserCacheTTLSec: 60}.UserCacheTTL())
}
