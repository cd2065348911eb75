package email

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/gomail.v2"
)

// SMTPProvider implements Provider on top of gomail.
type SMTPProvider struct {
	config          *SMTPConfig
	dialer          *gomail.Dialer
	renderer        TemplateRenderer
	frontendBaseURL string
}

func NewSMTPProvider(config *SMTPConfig, renderer TemplateRenderer, frontendBaseURL string) *SMTPProvider {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	dialer.SSL = config.UseTLS && config.Port == 465

	return &SMTPProvider{
		config:          config,
		dialer:          dialer,
		renderer:        renderer,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
	}
}

// Send delivers a single message.
func (p *SMTPProvider) Send(email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m := gomail.NewMessage()

	from := email.From
	if from == "" {
		from = p.config.FromEmail
	}
	if p.config.FromName != "" {
		m.SetAddressHeader("From", from, p.config.FromName)
	} else {
		m.SetHeader("From", from)
	}

	m.SetHeader("To", email.To...)
	if len(email.Cc) > 0 {
		m.SetHeader("Cc", email.Cc...)
	}
	if len(email.Bcc) > 0 {
		m.SetHeader("Bcc", email.Bcc...)
	}
	m.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		m.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			m.AddAlternative("text/plain", email.Body)
		}
	} else {
		m.SetBody("text/plain", email.Body)
	}

	for _, att := range email.Attachments {
		att := att
		m.Attach(att.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(att.Content)
			return err
		}))
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendWithTemplate renders the template and sends the result as HTML body.
func (p *SMTPProvider) SendWithTemplate(templateName string, data TemplateData, email *Email) error {
	if p.renderer == nil {
		return fmt.Errorf("template renderer is not configured")
	}

	htmlBody, err := p.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	email.HTMLBody = htmlBody
	return p.Send(email)
}

// SendVerification sends the account verification letter.
func (p *SMTPProvider) SendVerification(emailAddr string, token string) error {
	return p.SendTemplate(
		[]string{emailAddr},
		"Verify your Vending Hive account",
		"verification",
		TemplateData{
			"VerifyURL": fmt.Sprintf("%s/verify-email?token=%s", p.frontendBaseURL, token),
		},
	)
}

// SendPasswordReset sends the password reset letter.
func (p *SMTPProvider) SendPasswordReset(emailAddr string, token string) error {
	return p.SendTemplate(
		[]string{emailAddr},
		"Reset your Vending Hive password",
		"password_reset",
		TemplateData{
			"ResetURL": fmt.Sprintf("%s/reset-password?token=%s", p.frontendBaseURL, token),
		},
	)
}

// SendTemplate is a convenience wrapper over SendWithTemplate.
func (p *SMTPProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	return p.SendWithTemplate(templateName, data, &Email{
		To:      to,
		Subject: subject,
	})
}

// Validate checks the provider configuration.
func (p *SMTPProvider) Validate() error {
	if p.config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if p.config.Port <= 0 {
		return fmt.Errorf("SMTP port must be positive")
	}
	if p.config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// Close is a no-op: gomail dials per message.
func (p *SMTPProvider) Close() error {
	return nil
}
