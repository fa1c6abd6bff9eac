package notification

import (
	"context"

	"github.com/Behyna/notification-services/internal/sms"
	"go.uber.org/zap"
)

type SMSChannel struct {
	service sms.Service
	logger  *zap.Logger
}

func NewSMSChannel(service sms.Service, logger *zap.Logger) *SMSChannel {
	return &SMSChannel{service: service, logger: logger}
}

func (c *SMSChannel) Kind() ChannelKind {
	return SMS
}

func (c *SMSChannel) PrepareReceivers(_ Notification, receivers []Receiver) []Receiver {
	return uniqueBy(receivers, byPhone)
}

func (c *SMSChannel) PrepareMessage(n Notification) (any, error) {
	return render(n.Definition.Name, n.Definition.Message, templateData(n.Item, n.Context))
}

func (c *SMSChannel) SendInner(ctx context.Context, n Notification, receivers []Receiver, message any) (Result, error) {
	text, _ := message.(string)
	async := n.Definition.SendAsync

	var result Result
	for _, r := range receivers {
		err := c.service.SendSMS(ctx, sms.SendCommand{To: r.Phone, Text: text, Async: &async})
		if err != nil {
			c.logger.Warn("Failed to send SMS notification",
				zap.Error(err),
				zap.Int64("receiverID", r.ID),
				zap.String("notification", n.Definition.Name))
			result.Failed++
			continue
		}
		result.Sent++
	}

	return result, nil
}

func (c *SMSChannel) HistoryDetails(_ Notification, message any) string {
	text, _ := message.(string)
	return text
}

func (c *SMSChannel) FormatReceiver(r Receiver) string {
	return r.Phone
}
