// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue: tasks are enqueued with asynq.Client
// and processed by the workers of an asynq.Server.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/go-modelstate/internal/config"
	"github.com/deppfellow/go-modelstate/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client *asynq.Client

	server   *asynq.Server
	notifier ContactNotifier
	inbox    string
	logger   *zerolog.Logger
}

// NewJobService creates a JobService on the configured Redis. Workers are
// split across queues by weight: critical 6, default 3, low 1.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: newAsynqLogger(logger),
		},
	)

	return &JobService{
		Client:   asynq.NewClient(redisOpt),
		server:   server,
		notifier: email.NewClient(cfg, logger),
		inbox:    cfg.Integration.ContactInbox,
		logger:   logger,
	}
}

// Mux routes task types to their handlers.
func (j *JobService) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskContactNotification, j.handleContactNotificationTask)
	return mux
}

// Start starts the workers in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("Starting background job server")

	if err := j.server.Start(j.Mux()); err != nil {
		return fmt.Errorf("starting job server: %w", err)
	}
	return nil
}

// Enqueue schedules task. It satisfies the enqueuer used by services.
func (j *JobService) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	info, err := j.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("enqueueing %s: %w", task.Type(), err)
	}

	j.logger.Debug().
		Str("type", task.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")
	return nil
}

// Stop stops the workers, waiting for running tasks, and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
