package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional messages to participants.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// NewMailer returns a SendGrid mailer when an API key is configured and a
// LogMailer otherwise.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Printf("SENDGRID_API_KEY not set, password reset links will be logged")
		return LogMailer{}
	}
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.MailFromName, cfg.MailFrom),
	}
}

type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func (m *SendGridMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	subject := "Passwort zurücksetzen"
	plainTextContent := fmt.Sprintf("Um dein Passwort zurückzusetzen, öffne folgenden Link (1 Stunde gültig):\n%s", link)
	htmlContent := fmt.Sprintf(`<p>Um dein Passwort zurückzusetzen, öffne folgenden Link (1 Stunde gültig):</p><p><a href="%s">%s</a></p>`, link, link)

	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), plainTextContent, htmlContent)
	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("Failed to send password reset email: %v", err)
		return err
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", response.StatusCode, response.Body)
	}

	log.Printf("Password reset email sent to %s, status %d", to, response.StatusCode)
	return nil
}

type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, to, link string) error {
	log.Printf("Password reset link for %s: %s", to, link)
	return nil
}
