package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/inkpad/inkpad/internal/obs"
)

// ResendService sends mail through the Resend API.
type ResendService struct {
	client *resend.Client
	from   string
}

// NewResendService creates the real sender. from must be a verified
// sender address in Resend.
func NewResendService(apiKey, from string) *ResendService {
	return &ResendService{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// SendWelcome greets a newly provisioned user.
func (r *ResendService) SendWelcome(ctx context.Context, to, name string) error {
	subject, html := renderWelcome(name)

	_, err := r.client.Emails.Send(&resend.SendEmailRequest{
		From:    r.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("email: send welcome: %w", err)
	}

	obs.From(ctx).Info("email_sent", "pkg", "email", "to", to, "subject", subject)
	return nil
}
