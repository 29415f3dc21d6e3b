package email

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func TestSendContactNotification(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	logger := zerolog.Nop()
	client := NewClientWithSender(sender, "Modelstate <noreply@example.com>", &logger)

	err := client.SendContactNotification(context.Background(), "inbox@example.com", ContactNotification{
		Reference:       "CT-1234ABCD",
		Name:            "Grace <Hopper>",
		Email:           "grace@example.com",
		PreferredMethod: "email",
		Subject:         "Compilers",
		Message:         "Let's talk.",
	})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	sent := sender.sent[0]
	assert.Equal(t, "Modelstate <noreply@example.com>", sent.From)
	assert.Equal(t, []string{"inbox@example.com"}, sent.To)
	assert.Equal(t, "[CT-1234ABCD] Compilers", sent.Subject)
	assert.Contains(t, sent.Html, "New contact request CT-1234ABCD")
	assert.Contains(t, sent.Html, "Grace &lt;Hopper&gt;")
	assert.NotContains(t, sent.Html, "(</p>")
}

func TestSendEmail_ProviderError(t *testing.T) {
	t.Parallel()

	logger := zerolog.Nop()
	client := NewClientWithSender(&fakeSender{err: errors.New("rate limited")}, "from@example.com", &logger)

	err := client.SendContactNotification(context.Background(), "inbox@example.com", ContactNotification{Subject: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email: rate limited")
}

func TestSendEmail_UnknownTemplate(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	logger := zerolog.Nop()
	client := NewClientWithSender(sender, "from@example.com", &logger)

	err := client.SendEmail(context.Background(), []string{"a@example.com"}, "s", Template("missing"), nil)
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}
