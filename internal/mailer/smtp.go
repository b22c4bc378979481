package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/profilehub/apiserver/config"
)

// SMTPMailer renders templates and delivers them synchronously over SMTP.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer constructs an SMTP mailer from config. Auth is skipped
// when no user is configured (e.g. a local relay).
func NewSMTPMailer(cfg config.MailerConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}

	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}

	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		from: cfg.From,
	}, nil
}

// Send renders the named template and delivers it to the recipient.
func (m *SMTPMailer) Send(_ context.Context, to, subject, templateName string, data map[string]string) error {
	body, err := Render(templateName, data)
	if err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String()))
}
