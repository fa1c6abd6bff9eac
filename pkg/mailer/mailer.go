package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vanng822/go-premailer/premailer"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSL      bool   `mapstructure:"ssl"`
}

type Email struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Attachments []string
	// Categories and UnsubscribeGroup are forwarded to the provider in the X-SMTPAPI header.
	Categories       []string
	UnsubscribeGroup int
}

type Mailer interface {
	Send(ctx context.Context, email Email) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	dialer sender
	from   string
	logger *zap.Logger
}

func NewSMTPMailer(cfg Config, from string, logger *zap.Logger) Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.SSL
	return &SMTPMailer{dialer: dialer, from: from, logger: logger}
}

func (s *SMTPMailer) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.build(email)
	if err != nil {
		return err
	}

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Error("Failed to send email",
			zap.Error(err),
			zap.Strings("to", email.To),
			zap.String("subject", email.Subject))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("Email sent", zap.Strings("to", email.To), zap.String("subject", email.Subject))
	return nil
}

func (s *SMTPMailer) build(email Email) (*gomail.Message, error) {
	from := email.From
	if from == "" {
		from = s.from
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if len(email.Categories) > 0 || email.UnsubscribeGroup > 0 {
		header, err := smtpAPIHeader(email.Categories, email.UnsubscribeGroup)
		if err != nil {
			return nil, err
		}
		msg.SetHeader("X-SMTPAPI", header)
	}

	msg.SetBody("text/html", email.HTML)
	for _, path := range email.Attachments {
		msg.Attach(path)
	}

	return msg, nil
}

func smtpAPIHeader(categories []string, group int) (string, error) {
	payload := map[string]any{}
	if len(categories) > 0 {
		payload["category"] = categories
	}
	if group > 0 {
		payload["asm"] = map[string]int{"group_id": group}
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode X-SMTPAPI header: %w", err)
	}
	return string(b), nil
}

// InlineCSS moves <style> rules into style attributes.
func InlineCSS(html string) (string, error) {
	prem, err := premailer.NewPremailerFromString(html, premailer.NewOptions())
	if err != nil {
		return "", fmt.Errorf("failed to parse email html: %w", err)
	}
	return prem.Transform()
}
