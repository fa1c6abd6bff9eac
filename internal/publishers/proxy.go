package publishers

import (
	"context"

	"github.com/Behyna/notification-services/internal/repository"
	"github.com/Behyna/notification-services/internal/sms"
	"go.uber.org/zap"
)

type ProxyPublisher interface {
	Publish(ctx context.Context) error
}

type proxyPublisher struct {
	pending  repository.PendingMessageRepository
	signaler sms.Signaler
	logger   *zap.Logger
}

// NewProxyPublisher signals the dispatcher for every number that still has pending
// messages, restarting workers lost to a crash or a dropped signal.
func NewProxyPublisher(pending repository.PendingMessageRepository, signaler sms.Signaler, logger *zap.Logger) ProxyPublisher {
	return &proxyPublisher{pending: pending, signaler: signaler, logger: logger}
}

func (p *proxyPublisher) Publish(ctx context.Context) error {
	numbers, err := p.pending.DistinctFromPhones(ctx)
	if err != nil {
		return err
	}

	if len(numbers) == 0 {
		return nil
	}

	successCount := 0
	for _, number := range numbers {
		if err := p.signaler.Signal(ctx, number); err != nil {
			p.logger.Error("Failed to signal proxy dispatcher",
				zap.Error(err),
				zap.String("serviceNumber", number))
			continue
		}
		successCount++
	}

	p.logger.Info("Signalled proxy dispatcher",
		zap.Int("signalled", successCount),
		zap.Int("total", len(numbers)))

	return nil
}
