package email

import (
	"context"
	"fmt"
)

// ContactNotification is the data of TemplateContactNotification.
type ContactNotification struct {
	Reference       string
	Name            string
	Email           string
	Phone           string
	PreferredMethod string
	Subject         string
	Message         string
}

// SendContactNotification forwards an accepted contact request to inbox.
func (c *Client) SendContactNotification(ctx context.Context, inbox string, n ContactNotification) error {
	return c.SendEmail(
		ctx,
		[]string{inbox},
		fmt.Sprintf("[%s] %s", n.Reference, n.Subject),
		TemplateContactNotification,
		n,
	)
}
