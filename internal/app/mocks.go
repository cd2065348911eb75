package app

import "vendinghive_backend/internal/email"

// MockEmailProvider is used for tests and local development without an
// SMTP server.
type MockEmailProvider struct{}

func (m *MockEmailProvider) Send(msg *email.Email) error { return nil }
func (m *MockEmailProvider) SendWithTemplate(templateName string, data email.TemplateData, msg *email.Email) error {
	return nil
}
func (m *MockEmailProvider) SendVerification(to string, token string) error  { return nil }
func (m *MockEmailProvider) SendPasswordReset(to string, token string) error { return nil }
func (m *MockEmailProvider) SendTemplate(to []string, subject string, templateName string, data email.TemplateData) error {
	return nil
}
func (m *MockEmailProvider) Validate() error { return nil }
func (m *MockEmailProvider) Close() error    { return nil }
