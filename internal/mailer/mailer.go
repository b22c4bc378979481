package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// templates is the immutable template registry, parsed once at package
// init and never mutated afterwards.
var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Template names available to callers.
const (
	TemplateWelcome       = "welcome"
	TemplateResetPassword = "reset_password"
)

// Mailer delivers a rendered template to a recipient. Implementations are
// fire-and-forget from the caller's perspective: a transport failure is
// returned for logging but must not abort the calling flow.
type Mailer interface {
	Send(ctx context.Context, to, subject, templateName string, data map[string]string) error
}

// Render produces the message body for the named template. Unknown
// template names are an error; the registry is fixed at startup.
func Render(templateName string, data map[string]string) (string, error) {
	tmpl := templates.Lookup(templateName + ".tmpl")
	if tmpl == nil {
		return "", fmt.Errorf("unknown mail template %q", templateName)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template %q: %w", templateName, err)
	}
	return buf.String(), nil
}
