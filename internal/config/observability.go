package config

import (
	"fmt"
	"time"
)

// ObservabilityConfig groups logging, APM and health check settings.
// It is optional at the root level; DefaultObservabilityConfig fills it in.
type ObservabilityConfig struct {
	// ServiceName identifies this service in logs and APM dashboards.
	// Always overwritten with ServiceName by LoadConfig.
	ServiceName string `koanf:"service_name" validate:"required"`

	// Environment splits telemetry by environment (production, development, ...).
	Environment string `koanf:"environment" validate:"required"`

	Logging      LoggingConfig      `koanf:"logging" validate:"required"`
	NewRelic     NewRelicConfig     `koanf:"new_relic" validate:"required"`
	HealthChecks HealthChecksConfig `koanf:"health_checks" validate:"required"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level" validate:"required"`

	// Format is "json" or "console".
	Format string `koanf:"format" validate:"required"`

	// SlowQueryThreshold is the duration above which queries are logged
	// as slow, e.g. "100ms". Zero disables the warning.
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig holds configuration for New Relic APM and tracing.
// An empty LicenseKey disables New Relic.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
	DebugLogging              bool   `koanf:"debug_logging"`
}

// HealthChecksConfig controls the dependency checks behind /status.
type HealthChecksConfig struct {
	Enabled bool          `koanf:"enabled"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
	Checks  []string      `koanf:"checks"`
}

// DefaultObservabilityConfig is used when no observability block is configured.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: ServiceName,
		Environment: "development",
		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			DebugLogging:              false, // Disabled by default to avoid mixed log formats
		},
		HealthChecks: HealthChecksConfig{
			Enabled: true,
			Timeout: 5 * time.Second,
			Checks:  []string{"database", "redis"},
		},
	}
}

// Validate applies rules that go beyond struct tags.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}

	return nil
}

// GetLogLevel returns the effective log level: the configured one, or a
// per-environment default when empty.
func (c *ObservabilityConfig) GetLogLevel() string {
	switch c.Environment {
	case "production":
		if c.Logging.Level == "" {
			return "info"
		}
	case "development":
		if c.Logging.Level == "" {
			return "debug"
		}
	}

	return c.Logging.Level
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// HealthCheckEnabled reports whether name is one of the configured checks.
func (c *ObservabilityConfig) HealthCheckEnabled(name string) bool {
	if !c.HealthChecks.Enabled {
		return false
	}

	for _, check := range c.HealthChecks.Checks {
		if check == name {
			return true
		}
	}
	return false
}
