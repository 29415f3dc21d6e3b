package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/go-modelstate/internal/lib/email"
	"github.com/hibiken/asynq"
)

// ContactNotifier sends contact notifications; *email.Client implements it.
type ContactNotifier interface {
	SendContactNotification(ctx context.Context, inbox string, n email.ContactNotification) error
}

func (j *JobService) handleContactNotificationTask(ctx context.Context, t *asynq.Task) error {
	var p ContactNotificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A payload that cannot be decoded will never succeed.
		return fmt.Errorf("failed to unmarshal contact notification payload: %w: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", TaskContactNotification).
		Str("reference", p.Reference).
		Str("request_id", p.RequestID).
		Logger()

	logger.Info().Msg("Processing contact notification task")

	if err := j.notifier.SendContactNotification(ctx, j.inbox, p.notification()); err != nil {
		logger.Error().Err(err).Msg("Failed to send contact notification")
		return err
	}

	logger.Info().Msg("Successfully sent contact notification")

	return nil
}
