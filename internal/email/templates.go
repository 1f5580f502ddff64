package email

import (
	"fmt"
	"html/template"
	"sort"
	"strings"
	"sync"
)

const (
	TemplateProfileLive       = "profile_live"
	TemplateNewsletterWelcome = "newsletter_welcome"
)

const profileLiveTemplate = `<p>Hi {{.Name}},</p>
<p>Your professional profile is now live. Clients can find you under {{range $i, $s := .Services}}{{if $i}}, {{end}}{{$s}}{{end}}.</p>
<p><a href="{{.DashboardURL}}">Open your dashboard</a></p>`

const newsletterWelcomeTemplate = `<p>Hi {{.Name}},</p>
<p>You're on the list. We'll email you when there is product news worth sharing.</p>`

// TemplateManager holds named html templates.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager returns a manager preloaded with the built-in templates.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{templates: make(map[string]*template.Template)}
	for name, body := range map[string]string{
		TemplateProfileLive:       profileLiveTemplate,
		TemplateNewsletterWelcome: newsletterWelcomeTemplate,
	} {
		if err := tm.AddTemplate(name, body); err != nil {
			panic(err)
		}
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}

func (tm *TemplateManager) TemplateNames() []string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	names := make([]string, 0, len(tm.templates))
	for name := range tm.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
