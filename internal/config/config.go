// Package config manages environment variables.
//
// It reads variables from the environment (and a `.env` file when present),
// loads them into structured Go types and validates that required values
// are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	// Side-effect import: loads `.env` into the process env before anything reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the MODELSTATE_ prefix. The prefix is removed, the
	rest lowercased and "__" marks nesting:

	  MODELSTATE_SERVER__PORT              -> server.port
	  MODELSTATE_DATABASE__MAX_OPEN_CONNS  -> database.max_open_conns

	Lists are comma separated:

	  MODELSTATE_SERVER__CORS_ALLOWED_ORIGINS=http://localhost:3000,https://app.example.com
*/

// EnvPrefix is the prefix of every environment variable the service reads.
const EnvPrefix = "MODELSTATE_"

// ServiceName tags logs and APM data.
const ServiceName = "modelstate"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected by LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Validation    ValidationConfig     `koanf:"validation"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// ValidationConfig tunes the request validation rules.
type ValidationConfig struct {
	// ReservedHandlesKey is the Redis set holding handles nobody may register.
	ReservedHandlesKey string `koanf:"reserved_handles_key"`

	// ReservedHandles seeds the set at startup (lowercased).
	ReservedHandles []string `koanf:"reserved_handles"`
}

// DefaultReservedHandlesKey is used when ValidationConfig.ReservedHandlesKey is empty.
const DefaultReservedHandlesKey = "modelstate:reserved_handles"

// IntegrationConfig holds third-party settings. Contact notifications are
// sent through Resend only when ResendAPIKey and ContactInbox are set.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
	ContactInbox string `koanf:"contact_inbox" validate:"omitempty,email"`
}

// DefaultEmailFrom is used when IntegrationConfig.EmailFrom is empty.
const DefaultEmailFrom = "Modelstate <onboarding@resend.dev>"

// NotificationsEnabled reports whether contact notifications can be sent.
func (c IntegrationConfig) NotificationsEnabled() bool {
	return c.ResendAPIKey != "" && c.ContactInbox != ""
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it and applies defaults.
//
// Unlike a log-and-exit loader it returns every failure; the caller decides
// whether to exit.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}

	// A custom decoder is needed for comma separated lists and "30s" style durations.
	err = k.UnmarshalWithConf("", mainConfig, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			TagName:          "koanf",
			Result:           mainConfig,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()

	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	if mainConfig.Validation.ReservedHandlesKey == "" {
		mainConfig.Validation.ReservedHandlesKey = DefaultReservedHandlesKey
	}

	if mainConfig.Integration.EmailFrom == "" {
		mainConfig.Integration.EmailFrom = DefaultEmailFrom
	}

	return mainConfig, nil
}

// envKey maps MODELSTATE_DATABASE__HOST to database.host.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}
