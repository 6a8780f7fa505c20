package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/retailpoint/purchasing-backend/pkg/config"
)

// Message is a plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer delivers order notification emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail over a plain SMTP relay.
type SMTPMailer struct {
	addr     string
	host     string
	username string
	password string
	from     string
}

// NewSMTPMailer builds a mailer from the notifier configuration.
func NewSMTPMailer(cfg config.NotifierConfig) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host required")
	}
	return &SMTPMailer{
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		host:     cfg.SMTPHost,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.FromEmail,
	}, nil
}

// Send delivers the message, honoring context cancellation before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient required")
	}

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n",
		m.from, strings.Join(msg.To, ", "), msg.Subject,
	)
	return smtp.SendMail(m.addr, auth, m.from, msg.To, []byte(headers+msg.Body))
}
