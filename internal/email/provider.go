// Package email sends the transactional mails of the service.
package email

import (
	"context"
	"fmt"
)

// Mailer delivers rendered messages.
type Mailer interface {
	Send(ctx context.Context, email *Email) error
	SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error
}

// NewMailer picks SMTP when a host is configured and the log mailer otherwise.
func NewMailer(cfg SMTPConfig, renderer *TemplateManager) Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg, renderer)
	}
	return NewLogMailer(renderer)
}

func renderInto(renderer *TemplateManager, templateName string, data TemplateData, email *Email) error {
	if renderer == nil {
		return fmt.Errorf("template renderer is not configured")
	}
	body, err := renderer.Render(templateName, data)
	if err != nil {
		return err
	}
	email.HTMLBody = body
	return nil
}
