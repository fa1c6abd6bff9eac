package model

import "time"

const DefaultPendingPriority = 9999

// PhonePendingMessage is a proxy queue entry. Lower priority values are sent first.
type PhonePendingMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	FromPhone string    `gorm:"column:from_phone;size:30;index:idx_pending_from_priority"`
	Priority  int       `gorm:"column:priority;default:9999;index:idx_pending_from_priority"`
	MessageID int64     `gorm:"column:message_id"`
	Message   PhoneSent `gorm:"foreignKey:MessageID"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (PhonePendingMessage) TableName() string {
	return "phone_pending_messages"
}
