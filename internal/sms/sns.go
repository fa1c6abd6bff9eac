package sms

import (
	"context"

	"github.com/Behyna/notification-services/internal/model"
)

// SNSEngine only sends; inbound parsing, queueing and lookups are not supported.
type SNSEngine struct {
	UnsupportedEngine

	cfg      Config
	provider ProviderService
}

func NewSNSEngine(cfg Config, provider ProviderService) *SNSEngine {
	return &SNSEngine{cfg: cfg, provider: provider}
}

func (e *SNSEngine) Send(ctx context.Context, sent *model.PhoneSent) error {
	return sendThroughProvider(ctx, e.cfg, e.provider, sent)
}
