package service

import (
	"context"
	"strings"

	"github.com/deppfellow/go-modelstate/internal/lib/job"
	"github.com/deppfellow/go-modelstate/internal/middleware"
	"github.com/deppfellow/go-modelstate/internal/model"
	"github.com/deppfellow/go-modelstate/internal/server"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskEnqueuer schedules background tasks; *job.JobService implements it.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error
}

// ContactService accepts contact requests and, when an enqueuer is set,
// schedules a notification email for each of them.
type ContactService struct {
	server   *server.Server
	enqueuer TaskEnqueuer
}

// NewContactService creates the service. enqueuer may be nil, in which
// case accepted requests are only logged.
func NewContactService(s *server.Server, enqueuer TaskEnqueuer) *ContactService {
	return &ContactService{server: s, enqueuer: enqueuer}
}

// Submit accepts a validated contact request and assigns it a reference.
//
// A failed enqueue is logged and does not fail the request: the contact
// has been accepted either way.
func (s *ContactService) Submit(ctx context.Context, req *model.ContactRequest) *model.Contact {
	reference := strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
	contact := model.NewContact(reference, req)

	requestID := middleware.RequestIDFromContext(ctx)

	logger := s.server.Logger.With().
		Str("request_id", requestID).
		Str("reference", contact.Reference).
		Str("preferred_method", string(req.PreferredMethod)).
		Logger()

	logger.Info().Msg("contact request accepted")

	if s.enqueuer == nil {
		return contact
	}

	task, err := job.NewContactNotificationTask(job.ContactNotificationPayload{
		Reference:       contact.Reference,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		PreferredMethod: string(req.PreferredMethod),
		Subject:         req.Subject,
		Message:         req.Message,
		RequestID:       requestID,
	})
	if err == nil {
		err = s.enqueuer.Enqueue(ctx, task)
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to schedule contact notification")
	}

	return contact
}
