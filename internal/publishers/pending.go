package publishers

import (
	"context"
	"time"

	"github.com/Behyna/notification-services/internal/sms"
	"go.uber.org/zap"
)

type PendingRawPublisher interface {
	Publish(ctx context.Context) error
}

type pendingRawPublisher struct {
	service   sms.Service
	olderThan time.Duration
	logger    *zap.Logger
}

// NewPendingRawPublisher re-enqueues parse tasks for inbound payloads still pending
// after olderThan.
func NewPendingRawPublisher(service sms.Service, olderThan time.Duration, logger *zap.Logger) PendingRawPublisher {
	return &pendingRawPublisher{service: service, olderThan: olderThan, logger: logger}
}

func (p *pendingRawPublisher) Publish(ctx context.Context) error {
	queued, err := p.service.ParsePending(ctx, p.olderThan)
	if queued > 0 {
		p.logger.Info("Requeued pending inbound payloads", zap.Int("count", queued))
	}
	return err
}
