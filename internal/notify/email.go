package notify

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"irisai/internal/models"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailNotifier struct {
	sender mailSender
	from   string
}

func NewEmailNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) *EmailNotifier {
	return &EmailNotifier{
		sender: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) Notify(ctx context.Context, user models.User, n models.Notification) error {
	if user.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", n.Title)

	body := fmt.Sprintf(`
		<p>Hello %s,</p>
		<p>%s</p>
		<p>IRIS AI CRM</p>
	`, html.EscapeString(user.Name), html.EscapeString(n.Message))
	m.SetBody("text/html", body)

	if err := e.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}
