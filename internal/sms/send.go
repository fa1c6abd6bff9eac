package sms

import (
	"context"
	"strings"

	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/pkg/smsprovider"
)

// sendThroughProvider records the provider outcome on sent. Provider failures are
// not returned; they leave sent in the failed state.
func sendThroughProvider(ctx context.Context, cfg Config, provider ProviderService, sent *model.PhoneSent) error {
	if !cfg.APIEnabled {
		sent.Status = model.PhoneSentStatusSent
		return nil
	}
	if sent.SMSID != "" {
		return nil
	}

	if sent.Text == "" {
		sent.Text = "."
	}

	msg := smsprovider.Message{
		From: sent.Receiver.ServiceNumber,
		To:   sent.Receiver.Number,
		Body: sent.Text,
	}
	if sent.Media != nil && *sent.Media != "" {
		msg.MediaURL = mediaURL(cfg.MediaURL, *sent.Media)
	}

	response, err := provider.SendWithRetry(ctx, msg)
	if err != nil {
		sent.MarkFailed(err.Error())
		return nil
	}

	sent.Status = model.PhoneSentStatusSent
	sent.SMSID = response.SID
	return nil
}

func mediaURL(base, media string) string {
	if strings.HasPrefix(media, "http://") || strings.HasPrefix(media, "https://") {
		return media
	}
	return base + media
}
