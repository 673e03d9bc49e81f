package smtp

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/13x54n/thamelbar/internal/config"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

// NewMailer returns the SMTP-backed mailer when SMTP_HOST is configured,
// otherwise a no-op mailer that logs the message body. The dev fallback keeps
// verification flows usable locally: the code lands in the server log.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP not configured, emails will be logged instead of sent")
		return NopMailer{}
	}
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// NopMailer logs instead of sending. Used when SMTP is not configured.
type NopMailer struct{}

func (NopMailer) SendEmail(to, subject, body string) error {
	slog.Info("email suppressed (dev mode)", "to", to, "subject", subject, "body", body)
	return nil
}
