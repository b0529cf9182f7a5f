// Package mailer sends transactional mail through the SMTP relay. Sends are
// fire-and-forget: the order's email history records intent, not delivery.
package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"github.com/amberlane-studio/amberlane-backend-go/config"
	"github.com/amberlane-studio/amberlane-backend-go/logger"
	"github.com/amberlane-studio/amberlane-backend-go/metrics"
	"go.uber.org/zap"
)

type Sender interface {
	Send(templateName, to, subject string, data map[string]interface{}) error
}

type smtpSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

func NewSMTPSender() Sender {
	return &smtpSender{
		host:     config.GetEnv("SMTP_HOST", "localhost"),
		port:     config.GetEnvInt("SMTP_PORT", 587),
		user:     config.GetEnv("SMTP_USER", ""),
		password: config.GetEnv("SMTP_PASSWORD", ""),
		from:     config.GetEnv("SMTP_FROM", "hello@amberlane.studio"),
	}
}

func (s *smtpSender) Send(templateName, to, subject string, data map[string]interface{}) error {
	htmlBody, textBody, err := Render(templateName, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", templateName, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send %s to %s: %w", templateName, to, err)
	}
	return nil
}

// Render produces the HTML and plain-text bodies for a named template.
func Render(templateName string, data map[string]interface{}) (htmlBody, textBody string, err error) {
	pair, ok := templates[templateName]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", templateName)
	}

	htmlBody, err = execute(templateName+".html", pair.html, data)
	if err != nil {
		return "", "", err
	}
	textBody, err = execute(templateName+".txt", pair.text, data)
	if err != nil {
		return "", "", err
	}
	return htmlBody, textBody, nil
}

func execute(name, body string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var Default Sender

func Init() {
	Default = NewSMTPSender()
}

// Dispatch sends in the background and logs the outcome; callers have already
// appended the email-history record.
func Dispatch(templateName, to, subject string, data map[string]interface{}) {
	metrics.EmailsQueued.WithLabelValues(templateName).Inc()
	go func() {
		if err := Default.Send(templateName, to, subject, data); err != nil {
			metrics.UpstreamErrors.WithLabelValues("smtp").Inc()
			logger.Log.Warn("email send failed",
				zap.String("template", templateName),
				zap.String("to", to),
				zap.Error(err))
		}
	}()
}
