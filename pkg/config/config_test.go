package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almoxarifado-api/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.App.Store)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.Engine.LockTimeout)
	assert.Equal(t, 3, cfg.Engine.RetryAttempts)
	assert.Equal(t, 6, cfg.Retention.AuditMonths)
	assert.Equal(t, 5, cfg.Auth.MaxFailedAttempts)
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_ADDR la idempotencia queda deshabilitada")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ENGINE_LOCK_TIMEOUT", "750ms")
	t.Setenv("ENGINE_RETRY_BASE_DELAY", "20")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("APP_STORE", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.LockTimeout)
	assert.Equal(t, 20*time.Millisecond, cfg.Engine.RetryBaseDelay, "entero = milisegundos")
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "memory", cfg.App.Store)
}

func TestLoad_StoreInvalido(t *testing.T) {
	t.Setenv("APP_STORE", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "almox", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/almox?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
