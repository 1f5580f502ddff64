package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	config   SMTPConfig
	renderer *TemplateManager
	dialer   *gomail.Dialer
}

func NewSMTPMailer(config SMTPConfig, renderer *TemplateManager) *SMTPMailer {
	return &SMTPMailer{
		config:   config,
		renderer: renderer,
		dialer:   gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, email *Email) error {
	if err := m.validate(email); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := m.buildMessage(email)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error {
	email := &Email{To: to, Subject: subject}
	if err := renderInto(m.renderer, templateName, data, email); err != nil {
		return err
	}
	return m.Send(ctx, email)
}

func (m *SMTPMailer) buildMessage(email *Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.config.FromEmail, m.config.FromName)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	switch {
	case email.HTMLBody != "" && email.Body != "":
		msg.SetBody("text/plain", email.Body)
		msg.AddAlternative("text/html", email.HTMLBody)
	case email.HTMLBody != "":
		msg.SetBody("text/html", email.HTMLBody)
	default:
		msg.SetBody("text/plain", email.Body)
	}
	return msg
}

func (m *SMTPMailer) validate(email *Email) error {
	if m.config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if m.config.Port <= 0 || m.config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", m.config.Port)
	}
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	return nil
}
