package mailer

import (
	"context"
	"log"
)

// LogMailer renders templates and writes them to the process log instead
// of delivering them. Intended for development and tests. The rendered
// body (which may contain a recovery code) is logged deliberately so the
// flow can be exercised without an SMTP server.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(_ context.Context, to, subject, templateName string, data map[string]string) error {
	body, err := Render(templateName, data)
	if err != nil {
		return err
	}
	log.Printf("mail (not sent): to=%s subject=%q template=%s\n%s", to, subject, templateName, body)
	return nil
}
