// Package email provides an email sending client.
//
// It uses Resend (resend-go) as the email provider and renders bodies
// from HTML templates embedded in the binary.
package email

import (
	"bytes"
	"context"
	"fmt"

	"github.com/deppfellow/go-modelstate/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Sender is the part of the Resend emails API the client uses.
type Sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Client renders templates and sends them through Resend.
type Client struct {
	sender Sender
	from   string
	logger *zerolog.Logger
}

// NewClient creates a Client authenticated with the configured Resend API key.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return NewClientWithSender(resend.NewClient(cfg.Integration.ResendAPIKey).Emails, cfg.Integration.EmailFrom, logger)
}

// NewClientWithSender creates a Client over any Sender.
func NewClientWithSender(sender Sender, from string, logger *zerolog.Logger) *Client {
	return &Client{sender: sender, from: from, logger: logger}
}

// SendEmail renders templateName with data and sends it to the recipients.
func (c *Client) SendEmail(ctx context.Context, to []string, subject string, templateName Template, data any) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(templateName)+".html", data); err != nil {
		return errors.Wrapf(err, "failed to execute email template %s", templateName)
	}

	response, err := c.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("email_id", response.Id).
		Msg("email sent")

	return nil
}
