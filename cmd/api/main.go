package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/go-modelstate/internal/config"
	"github.com/deppfellow/go-modelstate/internal/database"
	"github.com/deppfellow/go-modelstate/internal/handler"
	"github.com/deppfellow/go-modelstate/internal/logger"
	"github.com/deppfellow/go-modelstate/internal/model"
	"github.com/deppfellow/go-modelstate/internal/repository"
	"github.com/deppfellow/go-modelstate/internal/router"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/deppfellow/go-modelstate/internal/service"
)

const (
	DefaultContextTimeout = 30 * time.Second
	ShutdownTimeout       = 30 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	migrateCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout)
	err = database.Migrate(migrateCtx, &log, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	if err := model.RegisterRules(srv.Validator); err != nil {
		log.Fatal().Err(err).Msg("failed to register validation rules")
	}

	repos := repository.NewRepositories(srv)

	seedCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout)
	if err := repos.ReservedHandles.Reserve(seedCtx, cfg.Validation.ReservedHandles...); err != nil {
		log.Error().Err(err).Msg("failed to seed reserved handles")
	}
	cancel()

	services := service.NewServices(srv, repos)
	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}

	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
		}
	}

	log.Info().Msg("server exited properly")
}
