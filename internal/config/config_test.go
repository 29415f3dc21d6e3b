package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	env := map[string]string{
		"MODELSTATE_PRIMARY__ENV":                     "local",
		"MODELSTATE_SERVER__PORT":                     "8080",
		"MODELSTATE_SERVER__READ_TIMEOUT":             "30",
		"MODELSTATE_SERVER__WRITE_TIMEOUT":            "30",
		"MODELSTATE_SERVER__IDLE_TIMEOUT":             "60",
		"MODELSTATE_SERVER__CORS_ALLOWED_ORIGINS":     "http://localhost:3000,https://app.example.com",
		"MODELSTATE_DATABASE__HOST":                   "localhost",
		"MODELSTATE_DATABASE__PORT":                   "5432",
		"MODELSTATE_DATABASE__USER":                   "postgres",
		"MODELSTATE_DATABASE__PASSWORD":               "p@ss:word",
		"MODELSTATE_DATABASE__NAME":                   "modelstate",
		"MODELSTATE_DATABASE__SSL_MODE":               "disable",
		"MODELSTATE_DATABASE__MAX_OPEN_CONNS":         "25",
		"MODELSTATE_DATABASE__MAX_IDLE_CONNS":         "25",
		"MODELSTATE_DATABASE__CONN_MAX_LIFETIME":      "300",
		"MODELSTATE_DATABASE__CONN_MAX_IDLE_TIME":     "300",
		"MODELSTATE_REDIS__ADDRESS":                   "localhost:6379",
		"MODELSTATE_VALIDATION__RESERVED_HANDLES":     "admin,root",
		"MODELSTATE_VALIDATION__RESERVED_HANDLES_KEY": "",
	}

	for key, value := range env {
		t.Setenv(key, value)
	}
}

// Tests here use t.Setenv and therefore cannot run in parallel.

func TestLoadConfig_FromEnv(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Primary.Env)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "p@ss:word", cfg.Database.Password)
	assert.Equal(t, []string{"admin", "root"}, cfg.Validation.ReservedHandles)
	assert.Equal(t, DefaultReservedHandlesKey, cfg.Validation.ReservedHandlesKey)
	assert.Equal(t, DefaultEmailFrom, cfg.Integration.EmailFrom)
	assert.False(t, cfg.Integration.NotificationsEnabled())

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "local", cfg.Observability.Environment)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MODELSTATE_REDIS__ADDRESS", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadConfig_Integration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MODELSTATE_INTEGRATION__RESEND_API_KEY", "re_test")
	t.Setenv("MODELSTATE_INTEGRATION__CONTACT_INBOX", "inbox@example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Integration.NotificationsEnabled())

	t.Setenv("MODELSTATE_INTEGRATION__CONTACT_INBOX", "not-an-email")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestObservabilityConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.SlowQueryThreshold = -time.Second
	require.Error(t, cfg.Validate())
}

func TestObservabilityConfig_Helpers(t *testing.T) {
	t.Parallel()

	cfg := DefaultObservabilityConfig()
	assert.True(t, cfg.HealthCheckEnabled("redis"))
	assert.False(t, cfg.HealthCheckEnabled("kafka"))
	assert.False(t, cfg.IsProduction())

	cfg.Logging.Level = ""
	assert.Equal(t, "debug", cfg.GetLogLevel())

	cfg.Environment = "production"
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "info", cfg.GetLogLevel())

	cfg.HealthChecks.Enabled = false
	assert.False(t, cfg.HealthCheckEnabled("redis"))
}
