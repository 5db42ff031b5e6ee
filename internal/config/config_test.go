package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/vision")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(604800000), cfg.JWTTTL.Milliseconds())
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, time.Hour, cfg.DBConnMaxLifetime)
	assert.Equal(t, 10*time.Minute, cfg.DBConnMaxIdleTime)
	assert.Equal(t, 100, cfg.RateLimitRPM)
	assert.Equal(t, 10, cfg.AuthRateLimitRPM)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/vision")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/vision")
	t.Setenv("JWT_TTL", "24h")
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_CONN_MAX_LIFETIME", "45m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "9999", cfg.ServerPort)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 45*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 2*time.Minute, cfg.DBConnMaxIdleTime)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/vision")
	t.Setenv("JWT_TTL", "not-a-duration")
	t.Setenv("RATE_LIMIT_RPM", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 100, cfg.RateLimitRPM)
}
