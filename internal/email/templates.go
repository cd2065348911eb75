package email

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TemplateManager is a thread-safe TemplateRenderer backed by html/template.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	tm.registerBuiltins()
	return tm
}

// Render renders a registered template.
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

// AddTemplate parses and registers a template.
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

// LoadTemplates walks dirPath and registers every .html file by base name.
func (tm *TemplateManager) LoadTemplates(dirPath string) error {
	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		templateName := strings.TrimSuffix(filepath.Base(path), ".html")
		if err := tm.AddTemplate(templateName, string(content)); err != nil {
			return fmt.Errorf("failed to add template %s: %w", templateName, err)
		}

		return nil
	})
}

// Built-in letters cover the flows that must work even when no template
// directory is configured.
func (tm *TemplateManager) registerBuiltins() {
	_ = tm.AddTemplate("verification", `
<h2>Welcome to Vending Hive!</h2>
<p>Please confirm your email address to activate your account.</p>
<p><a href="{{.VerifyURL}}">Verify my email</a></p>
<p>If the button does not work, copy this link into your browser:<br>{{.VerifyURL}}</p>`)

	_ = tm.AddTemplate("password_reset", `
<h2>Password reset requested</h2>
<p>We received a request to reset the password for your Vending Hive account.</p>
<p><a href="{{.ResetURL}}">Reset my password</a></p>
<p>This link expires in one hour. If you did not request a reset, you can ignore this letter.</p>`)

	_ = tm.AddTemplate("subscription_activated", `
<h2>Your {{.PlanName}} plan is active</h2>
<p>Thanks for subscribing to Vending Hive. Your {{.PlanName}} plan is now active.</p>
<p>Your monthly search allowance resets on {{.RenewalDate}}.</p>`)

	_ = tm.AddTemplate("subscription_cancelled", `
<h2>Subscription cancelled</h2>
<p>Your Vending Hive subscription has been cancelled.</p>
<p>You keep access until {{.AccessUntil}}. We would love to have you back.</p>`)
}
