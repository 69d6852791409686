package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/erazemk/gegenstand/internal/model"
)

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// Configured reports whether enough settings are present to send mail.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails reminders to item owners.
type EmailNotifier struct {
	cfg    SMTPConfig
	sender Sender
}

// NewEmailNotifier returns a notifier dialing the configured SMTP server.
func NewEmailNotifier(cfg SMTPConfig) *EmailNotifier {
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	return &EmailNotifier{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Pass),
	}
}

// Send implements Notifier. Missing configuration or recipient is not an
// error; the reminder is still in the in-app feed.
func (n *EmailNotifier) Send(ctx context.Context, owner *model.User, item *model.Item, message string) error {
	if !n.cfg.Configured() {
		slog.Debug("smtp not configured, skipping reminder email", "item", item.ID)
		return nil
	}
	if owner == nil || strings.TrimSpace(owner.Email) == "" {
		slog.Warn("reminder recipient empty, skipping email", "item", item.ID)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", owner.Email)
	m.SetHeader("Subject", fmt.Sprintf("[Gegenstand] %s", item.Name))
	m.SetBody("text/plain", message)
	m.AddAlternative("text/html", buildHTMLBody(owner, item, message))

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("sending reminder email: %w", err)
	}

	slog.Info("reminder email sent", "to", owner.Email, "item", item.ID)
	return nil
}

func buildHTMLBody(owner *model.User, item *model.Item, message string) string {
	location := ""
	if item.Location != "" {
		location = fmt.Sprintf("<p>Location: %s</p>", html.EscapeString(item.Location))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <p>Hello %s,</p>
    <p>%s</p>
    %s
  </div>
</body>
</html>`, html.EscapeString(owner.Name), html.EscapeString(message), location)
}
