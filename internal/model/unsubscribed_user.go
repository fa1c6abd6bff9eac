package model

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

// UnsubscribeAll is the reserved category meaning every category of a channel.
const UnsubscribeAll = "all"

// Unsubscriptions maps a channel key (push, email, sms, websocket) to opted-out categories.
type Unsubscriptions map[string][]string

type UnsubscribedUser struct {
	ID                  int64                               `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	UserID              int64                               `gorm:"column:user_id;uniqueIndex"`
	UnsubscribedFromAll bool                                `gorm:"column:unsubscribed_from_all"`
	Unsubscribed        datatypes.JSONType[Unsubscriptions] `gorm:"column:unsubscribed"`
	CreatedAt           time.Time                           `gorm:"column:created_at"`
	UpdatedAt           time.Time                           `gorm:"column:updated_at"`
}

func (UnsubscribedUser) TableName() string {
	return "unsubscribed_users"
}

func (u *UnsubscribedUser) Categories(channel string) []string {
	data := u.Unsubscribed.Data()
	if data == nil {
		return nil
	}
	return data[channel]
}

// IsUnsubscribed reports whether notifications of category on channel must be dropped.
func (u *UnsubscribedUser) IsUnsubscribed(channel, category string) bool {
	if u.UnsubscribedFromAll {
		return true
	}

	categories := u.Categories(channel)
	return slices.Contains(categories, UnsubscribeAll) || slices.Contains(categories, category)
}

func (u *UnsubscribedUser) SetUnsubscriptions(value Unsubscriptions) {
	u.Unsubscribed = datatypes.NewJSONType(value)
}
