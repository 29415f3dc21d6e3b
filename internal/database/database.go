// Package database establishes the PostgreSQL connection pool.
//
// It handles:
//   - building a DSN from config
//   - creating a pgx connection pool (pgxpool)
//   - wiring query logging (pgx tracelog + zerolog) in local runs
//   - warning about slow queries
//   - optional New Relic instrumentation (nrpgx5)
//   - schema migrations (tern)
package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/deppfellow/go-modelstate/internal/config"
	loggerConfig "github.com/deppfellow/go-modelstate/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// Database wraps the pgx connection pool.
type Database struct {
	Pool *pgxpool.Pool
	log  *zerolog.Logger
}

// DatabasePingTimeout is how long New waits for the first ping.
const DatabasePingTimeout = 10 * time.Second

// DSN builds the postgres URL for cfg. The password is escaped so
// characters like ':' and '@' survive.
func DSN(cfg config.DatabaseConfig) string {
	hostPort := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		hostPort,
		cfg.Name,
		cfg.SSLMode,
	)
}

// New creates and pings the connection pool.
//
// New Relic tracing is attached when loggerService has an application.
// In the "local" environment SQL statements are also logged, and queries
// slower than the configured threshold are logged everywhere.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pgxPoolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(cfg.Database.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second

	var tracers []pgx.QueryTracer

	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		pgxLogger := loggerConfig.NewPgxLogger(globalLevel)

		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(pgxLogger),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		})
	}

	if obs := cfg.Observability; obs != nil && obs.Logging.SlowQueryThreshold > 0 {
		tracers = append(tracers, newSlowQueryTracer(logger, obs.Logging.SlowQueryThreshold))
	}

	pgxPoolConfig.ConnConfig.Tracer = combineTracers(tracers)

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	database := FromPool(pool, logger)

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("connected to the database")

	return database, nil
}

// FromPool wraps an existing pool.
func FromPool(pool *pgxpool.Pool, logger *zerolog.Logger) *Database {
	return &Database{
		Pool: pool,
		log:  logger,
	}
}

// Close closes the pool. pgxpool.Close has no error; the signature keeps
// Server.Shutdown uniform.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	db.Pool.Close()
	return nil
}
