package email

import "context"

// SendWelcomeEmail greets a newly registered user. The username doubles
// as the mailbox address.
func (c *Client) SendWelcomeEmail(ctx context.Context, to, name string) error {
	if name == "" {
		name = to
	}

	data := map[string]string{
		"Name":     name,
		"Username": to,
	}

	return c.SendEmail(ctx, to, "Welcome to Profile API!", TemplateWelcome, data)
}
