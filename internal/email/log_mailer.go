package email

import (
	"context"
	"sync"

	"grapher_backend/internal/logger"
)

// LogMailer writes messages to the log instead of sending them. It keeps the
// sent messages so callers can inspect them.
type LogMailer struct {
	renderer *TemplateManager

	mu   sync.Mutex
	sent []Email
}

func NewLogMailer(renderer *TemplateManager) *LogMailer {
	return &LogMailer{renderer: renderer}
}

func (m *LogMailer) Send(ctx context.Context, email *Email) error {
	m.mu.Lock()
	m.sent = append(m.sent, *email)
	m.mu.Unlock()

	logger.CtxInfo(ctx, "email (not sent, no SMTP host)", "to", email.To, "subject", email.Subject)
	return nil
}

func (m *LogMailer) SendTemplate(ctx context.Context, to []string, subject, templateName string, data TemplateData) error {
	email := &Email{To: to, Subject: subject}
	if err := renderInto(m.renderer, templateName, data, email); err != nil {
		return err
	}
	return m.Send(ctx, email)
}

func (m *LogMailer) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}
