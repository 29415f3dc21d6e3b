package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/go-modelstate/internal/lib/email"
	"github.com/hibiken/asynq"
)

const (
	// TaskContactNotification forwards an accepted contact request by email.
	TaskContactNotification = "email:contact_notification"
)

// ContactNotificationPayload is the JSON payload of TaskContactNotification.
type ContactNotificationPayload struct {
	Reference       string `json:"reference"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	PreferredMethod string `json:"preferred_method"`
	Subject         string `json:"subject"`
	Message         string `json:"message"`

	// RequestID is the X-Request-ID of the submitting request, for log correlation.
	RequestID string `json:"request_id,omitempty"`
}

func (p ContactNotificationPayload) notification() email.ContactNotification {
	return email.ContactNotification{
		Reference:       p.Reference,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		PreferredMethod: p.PreferredMethod,
		Subject:         p.Subject,
		Message:         p.Message,
	}
}

// NewContactNotificationTask builds the task. It is retried up to 3 times
// and killed after 30 seconds.
func NewContactNotificationTask(payload ContactNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskContactNotification,
		data,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
