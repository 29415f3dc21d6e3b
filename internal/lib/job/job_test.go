package job

import (
	"context"
	"errors"
	"testing"

	"github.com/deppfellow/go-modelstate/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	inbox string
	sent  []email.ContactNotification
	err   error
}

func (f *fakeNotifier) SendContactNotification(_ context.Context, inbox string, n email.ContactNotification) error {
	f.inbox = inbox
	f.sent = append(f.sent, n)
	return f.err
}

func newTestJobService(notifier ContactNotifier) *JobService {
	logger := zerolog.Nop()
	return &JobService{notifier: notifier, inbox: "inbox@example.com", logger: &logger}
}

func TestContactNotificationTask_RoundTrip(t *testing.T) {
	t.Parallel()

	task, err := NewContactNotificationTask(ContactNotificationPayload{
		Reference:       "CT-1",
		Name:            "Grace",
		Email:           "grace@example.com",
		PreferredMethod: "email",
		Subject:         "Hi",
		Message:         "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskContactNotification, task.Type())

	notifier := &fakeNotifier{}
	j := newTestJobService(notifier)

	require.NoError(t, j.Mux().ProcessTask(context.Background(), task))
	assert.Equal(t, "inbox@example.com", notifier.inbox)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "CT-1", notifier.sent[0].Reference)
	assert.Equal(t, "Hello", notifier.sent[0].Message)
}

func TestContactNotificationTask_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("provider down")
	j := newTestJobService(&fakeNotifier{err: boom})

	task, err := NewContactNotificationTask(ContactNotificationPayload{Reference: "CT-2"})
	require.NoError(t, err)
	require.ErrorIs(t, j.handleContactNotificationTask(context.Background(), task), boom)

	bad := asynq.NewTask(TaskContactNotification, []byte("{"))
	require.ErrorIs(t, j.handleContactNotificationTask(context.Background(), bad), asynq.SkipRetry)
}
