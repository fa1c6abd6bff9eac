package v1

import (
	"encoding/json"
	"fmt"

	"github.com/Behyna/notification-services/internal/service"
)

type RegisterDeviceRequest struct {
	Platform          string `json:"platform" validate:"required,platform"`
	NotificationToken string `json:"notification_token" validate:"required"`
	DeviceID          string `json:"device_id" validate:"required,max=255"`
	AppID             string `json:"app_id" validate:"required,max=100"`
}

type ValidatePhoneRequest struct {
	Number string `json:"number" validate:"required,max=32"`
}

const (
	keyUnsubscribedFromAll = "unsubscribed_from_all"
	keyLabels              = "labels"
)

// parseSubscriptionsRequest reads the PUT body: an optional top-level
// unsubscribed_from_all flag plus one object of category flags per channel key.
func parseSubscriptionsRequest(body []byte) (service.UpdateSubscriptionsCommand, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return service.UpdateSubscriptionsCommand{}, err
	}

	cmd := service.UpdateSubscriptionsCommand{Channels: make(map[string]service.ChannelPreferences)}
	for key, value := range raw {
		switch key {
		case keyLabels:
			continue
		case keyUnsubscribedFromAll:
			var flag bool
			if err := json.Unmarshal(value, &flag); err != nil {
				return service.UpdateSubscriptionsCommand{}, fmt.Errorf("%s: %w", key, err)
			}
			cmd.UnsubscribedFromAll = &flag
		default:
			var fields map[string]any
			if err := json.Unmarshal(value, &fields); err != nil {
				return service.UpdateSubscriptionsCommand{}, fmt.Errorf("%s: %w", key, err)
			}

			prefs := service.ChannelPreferences{Categories: make(map[string]bool, len(fields))}
			for name, v := range fields {
				flag, ok := v.(bool)
				if !ok {
					continue
				}
				if name == keyUnsubscribedFromAll {
					prefs.UnsubscribedFromAll = flag
					continue
				}
				prefs.Categories[name] = flag
			}
			cmd.Channels[key] = prefs
		}
	}

	return cmd, nil
}
