package logger

import (
	"testing"

	"github.com/deppfellow/go-modelstate/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetPgxTraceLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, tracelog.LogLevelDebug, GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, tracelog.LogLevelError, GetPgxTraceLogLevel(zerolog.ErrorLevel))
	assert.Equal(t, tracelog.LogLevelNone, GetPgxTraceLogLevel(zerolog.Disabled))
}

func TestNewLoggerWithService_Level(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	logger := NewLoggerWithService(cfg, nil)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestLoggerService_DisabledWithoutLicense(t *testing.T) {
	t.Parallel()

	service := NewLoggerService(config.DefaultObservabilityConfig())
	assert.Nil(t, service.GetApplication())

	var nilService *LoggerService
	assert.Nil(t, nilService.GetApplication())

	logger := zerolog.Nop()
	assert.Equal(t, logger, WithTraceContext(logger, nil))
}
