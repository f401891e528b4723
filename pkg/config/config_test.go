package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 4, cfg.Resolver.Workers)
	assert.Equal(t, "0 0 1 1 *", cfg.Rollover.Schedule)
	assert.Equal(t, int64(2*1024*1024), cfg.Import.MaxFileSizeBytes)
	assert.Equal(t, 24*time.Hour, cfg.Auth.Expiration)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")
	t.Setenv("ICS_UID_DOMAIN", "cal.example.com")
	t.Setenv("AUTH_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageRedis, cfg.Storage.Driver)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Auth.Expiration)
	assert.Equal(t, "cal.example.com", cfg.ICS.UIDDomain)
	assert.True(t, cfg.Auth.Enabled)
}
