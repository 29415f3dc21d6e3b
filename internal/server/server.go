// Package server defines the Server container that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//   - redis client
//   - the validation engine and the services its rules resolve
//   - background job worker server (asynq), when notifications are enabled
//   - http.Server
//
// It provides constructors and start/shutdown logic to run the application cleanly.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/go-modelstate/internal/config"
	"github.com/deppfellow/go-modelstate/internal/database"
	"github.com/deppfellow/go-modelstate/internal/lib/job"
	"github.com/deppfellow/go-modelstate/internal/validation"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/go-modelstate/internal/logger"
)

// RedisPingTimeout bounds the startup PING.
const RedisPingTimeout = 5 * time.Second

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. It holds:
//   - the config
//   - the logger(s)
//   - database and redis connections
//   - the validation engine
//   - background job service
//   - an internal *http.Server used to listen and serve requests
//
// It also implements validation.ServiceProvider: repositories registered
// with Provide are visible to validation rules of every request.
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	// If New Relic is disabled, this may exist but contain nil nrApp.
	LoggerService *loggerPkg.LoggerService

	// DB holds the PostgreSQL pool wrapper.
	DB *database.Database

	// Redis is the Redis client. The reserved handle set lives here.
	Redis *redis.Client

	// Validator runs request validation. Rules are registered on it at
	// startup, before the HTTP server is started.
	Validator *validation.Engine

	// Job runs the notification workers. Nil when notifications are disabled.
	Job *job.JobService

	services *validation.Services

	// httpServer is configured in SetupHTTPServer and started in Start().
	httpServer *http.Server
}

// New constructs a Server and initializes core dependencies.
//
// It does NOT start the HTTP server directly. That is done in SetupHTTPServer + Start.
//
// Initialization performed:
//   - PostgreSQL pool + optional New Relic tracing
//   - Redis client + optional New Relic hooks
//   - validation engine with its worker pool
//   - JobService (Asynq client/server) + start job worker, when notifications are enabled
//
// Notes:
//   - Redis connection failure does not block startup (it logs and continues).
//     Commands fail later and the reserved handle rule reports them as faults.
//   - JobService Start failure DOES block startup. Everything opened so far
//     is released before the error is returned.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	// This also pings the DB to ensure connectivity.
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Redis connections are lazy; NewClient does not dial.
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	// Hooks instrument Redis commands (timing, errors) so they show up in
	// distributed traces.
	if loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	// Test Redis connection with a timeout so it doesn't hang startup.
	ctx, cancel := context.WithTimeout(context.Background(), RedisPingTimeout)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without Redis")
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Validator:     validation.NewEngine(),
		services:      validation.NewServices(),
	}

	// The job server uses Redis as its backing store and is only needed to
	// deliver contact notifications.
	if cfg.Integration.NotificationsEnabled() {
		server.Job = job.NewJobService(logger, cfg)
		if err := server.startOrRelease(server.Job.Start); err != nil {
			return nil, err
		}
	} else {
		logger.Info().Msg("contact notifications disabled, skipping job server")
	}

	return server, nil
}

// startOrRelease runs start and, if it fails, frees everything New opened.
func (s *Server) startOrRelease(start func() error) error {
	if err := start(); err != nil {
		s.release()
		return fmt.Errorf("failed to start job server: %w", err)
	}
	return nil
}

func (s *Server) release() {
	s.Validator.Stop()
	_ = s.DB.Close()
	if err := s.Redis.Close(); err != nil {
		s.Logger.Error().Err(err).Msg("failed to close redis client")
	}
}

// Provide registers a service for validation rules under name.
func (s *Server) Provide(name string, service any) {
	if s.services == nil {
		s.services = validation.NewServices()
	}
	s.services.Provide(name, service)
}

// Service implements validation.ServiceProvider.
func (s *Server) Service(name string) (any, bool) {
	if s.services == nil {
		return nil, false
	}
	return s.services.Service(name)
}

// SetupHTTPServer configures the internal net/http server around handler,
// the echo router with its middleware stack.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// These timeouts protect against slow clients and resource exhaustion.
		// Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server and blocks until it stops.
// It requires SetupHTTPServer to be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	// Blocks until the server stops or errors. Graceful shutdown goes
	// through s.Shutdown(ctx) from the signal handler.
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its dependencies.
//
// It attempts to:
//   - stop HTTP server (finish inflight requests until ctx deadline)
//   - wait for asynchronous validations still running on the engine's pool
//   - stop job service (asynq) if it exists
//   - close DB pool and redis client
func (s *Server) Shutdown(ctx context.Context) error {
	// Stops accepting new connections and waits for ongoing requests.
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Validator != nil {
		s.Validator.Stop()
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	if err := s.Redis.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
