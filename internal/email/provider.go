package email

// Provider sends transactional email.
type Provider interface {
	// Send delivers a single message.
	Send(email *Email) error

	// SendWithTemplate renders templateName and sends the result as HTML body.
	SendWithTemplate(templateName string, data TemplateData, email *Email) error

	// SendVerification sends the account verification letter.
	SendVerification(email string, token string) error

	// SendPasswordReset sends the password reset letter.
	SendPasswordReset(email string, token string) error

	// SendTemplate is a convenience wrapper over SendWithTemplate.
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error

	// Validate checks the provider configuration.
	Validate() error

	// Close releases provider resources.
	Close() error
}

// TemplateRenderer renders named email templates.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
	LoadTemplates(dirPath string) error
}
