package service

import "github.com/Behyna/notification-services/internal/model"

type RegisterDeviceCommand struct {
	UserID            int64
	Platform          model.Platform
	NotificationToken string
	DeviceID          string
	AppID             string
}

type DeleteDeviceCommand struct {
	UserID   int64
	DeviceID int64
}

// UpdateSubscriptionsCommand replaces a user's preferences. Channels holds only the
// channel keys present in the request; a nil UnsubscribedFromAll leaves the flag as is.
type UpdateSubscriptionsCommand struct {
	UnsubscribedFromAll *bool
	Channels            map[string]ChannelPreferences
}

type ChannelPreferences struct {
	UnsubscribedFromAll bool
	// Categories maps category to subscribed. Missing categories count as subscribed.
	Categories map[string]bool
}
