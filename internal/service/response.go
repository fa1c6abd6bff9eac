package service

import "github.com/Behyna/notification-services/internal/model"

type DeviceResponse struct {
	ID                int64  `json:"id"`
	Platform          string `json:"platform"`
	NotificationToken string `json:"notification_token"`
	DeviceID          string `json:"device_id"`
	AppID             string `json:"app_id"`
	IsActive          bool   `json:"is_active"`
}

func newDeviceResponse(d *model.Device) DeviceResponse {
	return DeviceResponse{
		ID:                d.ID,
		Platform:          string(d.Platform),
		NotificationToken: d.NotificationToken,
		DeviceID:          d.DeviceID,
		AppID:             d.AppID,
		IsActive:          d.IsActive,
	}
}

// Subscriptions lists, per channel key, every category the user may receive.
type Subscriptions struct {
	UnsubscribedFromAll bool
	Labels              map[string]map[string]string
	Channels            map[string]ChannelPreferences
}
