package v1

import (
	"github.com/Behyna/notification-services/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ValidatePhoneResponse struct {
	Number string `json:"number"`
	Valid  bool   `json:"valid"`
}

func subscriptionsResponse(s service.Subscriptions) fiber.Map {
	resp := fiber.Map{
		keyUnsubscribedFromAll: s.UnsubscribedFromAll,
		keyLabels:              s.Labels,
	}

	for channel, prefs := range s.Channels {
		entry := make(map[string]bool, len(prefs.Categories)+1)
		for name, subscribed := range prefs.Categories {
			entry[name] = subscribed
		}
		entry[keyUnsubscribedFromAll] = prefs.UnsubscribedFromAll
		resp[channel] = entry
	}

	return resp
}
