package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	netmail "net/mail"
	"strings"
	"time"

	"summymail/internal/session"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrNotConfigured is returned when no SendGrid API key is available
var ErrNotConfigured = errors.New("SendGrid API key not configured")

// ErrInvalidRecipient is returned when the recipient is not a valid address
var ErrInvalidRecipient = errors.New("invalid recipient")

// sendFunc delivers a message and reports the HTTP status and body
type sendFunc func(ctx context.Context, apiKey string, message *mail.SGMailV3) (int, string, error)

// EmailService mails analysis digests via SendGrid
type EmailService struct {
	apiKey    string
	fromEmail string
	send      sendFunc
}

// NewEmailService creates a new email service instance
func NewEmailService(apiKey, fromEmail string) *EmailService {
	if fromEmail == "" {
		fromEmail = "noreply@summymail.local"
	}
	return &EmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		send:      sendWithSendGrid,
	}
}

// Configured reports whether digests can be sent
func (es *EmailService) Configured() bool {
	return es.apiKey != ""
}

// SendDigest mails the reply and checklist from snap to recipient
func (es *EmailService) SendDigest(ctx context.Context, recipient string, snap session.Snapshot) error {
	if es.apiKey == "" {
		return ErrNotConfigured
	}
	if snap.State != session.StateDone {
		return session.ErrNotReady
	}

	addr, err := netmail.ParseAddress(recipient)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidRecipient, recipient, err)
	}

	from := mail.NewEmail("sumMyMail", es.fromEmail)
	to := mail.NewEmail(addr.Name, addr.Address)

	subject := "Email thread summary and action items"
	body := BuildDigest(snap)

	message := mail.NewSingleEmail(from, subject, to, body, "<pre>"+html.EscapeString(body)+"</pre>")

	status, respBody, err := es.send(ctx, es.apiKey, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if status >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", status, respBody)
	}

	return nil
}

// BuildDigest renders the plain text body of a digest
func BuildDigest(snap session.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analysis generated: %s\n\n", snap.UpdatedAt.Format(time.RFC3339))
	b.WriteString(strings.TrimSpace(snap.Reply))
	b.WriteString("\n\nTo-do list:\n")

	if len(snap.ActionItems) == 0 {
		b.WriteString("No specific action items identified\n")
		return b.String()
	}

	for _, item := range snap.ActionItems {
		mark := " "
		if item.Done {
			mark = "x"
		}
		fmt.Fprintf(&b, "[%s] %s\n", mark, item.Text)
	}

	return b.String()
}

func sendWithSendGrid(ctx context.Context, apiKey string, message *mail.SGMailV3) (int, string, error) {
	client := sendgrid.NewSendClient(apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return 0, "", err
	}
	return response.StatusCode, response.Body, nil
}
