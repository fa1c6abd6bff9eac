package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"github.com/Behyna/notification-services/pkg/mailer"
	"go.uber.org/zap"
)

// Alerter notifies operators about inbound payloads that need attention.
type Alerter interface {
	Report(ctx context.Context, subject string, details map[string]any)
}

type mailAlerter struct {
	mailer mailer.Mailer
	admins []string
	logger *zap.Logger
}

func NewMailAlerter(m mailer.Mailer, admins []string, logger *zap.Logger) Alerter {
	return &mailAlerter{mailer: m, admins: admins, logger: logger}
}

func (a *mailAlerter) Report(ctx context.Context, subject string, details map[string]any) {
	a.logger.Warn("SMS admin alert", zap.String("subject", subject), zap.Any("details", details))

	if len(a.admins) == 0 {
		return
	}

	body, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		body = []byte(fmt.Sprint(details))
	}

	email := mailer.Email{
		To:      a.admins,
		Subject: "[notifications] " + subject,
		HTML:    "<pre>" + html.EscapeString(string(body)) + "</pre>",
	}
	if err := a.mailer.Send(ctx, email); err != nil {
		a.logger.Error("Failed to send admin alert", zap.Error(err), zap.String("subject", subject))
	}
}
