package model

import "time"

type Platform string

const (
	PlatformIOS Platform = "ios"
	PlatformGCM Platform = "gcm"
	PlatformFCM Platform = "fcm"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformGCM, PlatformFCM:
		return true
	default:
		return false
	}
}

type Device struct {
	ID                int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	UserID            int64     `gorm:"column:user_id;index:idx_device_user_platform,unique"`
	Platform          Platform  `gorm:"column:platform;size:10;index:idx_device_user_platform,unique"`
	DeviceID          string    `gorm:"column:device_id;size:255;index:idx_device_user_platform,unique"`
	NotificationToken string    `gorm:"column:notification_token;type:text"`
	AppID             string    `gorm:"column:app_id;size:255"`
	IsActive          bool      `gorm:"column:is_active"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (Device) TableName() string {
	return "devices"
}
