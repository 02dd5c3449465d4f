package mail

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/resend/resend-go/v2"
)

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendTransport sends through the Resend HTTP API.
type ResendTransport struct {
	emails emailSender
}

func NewResendTransport(apiKey string) *ResendTransport {
	client := resend.NewClient(apiKey)
	return &ResendTransport{emails: client.Emails}
}

func (r *ResendTransport) Send(ctx context.Context, msg Message) error {
	from := (&mail.Address{Name: msg.FromName, Address: msg.FromAddress}).String()

	_, err := r.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}

	return nil
}
