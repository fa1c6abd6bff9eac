package model

import "time"

type PhoneSentStatus string

const (
	PhoneSentStatusPending     PhoneSentStatus = "pending"
	PhoneSentStatusQueued      PhoneSentStatus = "queued"
	PhoneSentStatusFailed      PhoneSentStatus = "failed"
	PhoneSentStatusSent        PhoneSentStatus = "sent"
	PhoneSentStatusDelivered   PhoneSentStatus = "delivered"
	PhoneSentStatusUndelivered PhoneSentStatus = "undelivered"
	PhoneSentStatusNoAnswer    PhoneSentStatus = "no_answer"
)

// Sendable reports whether the message has not been handed to a provider yet.
func (s PhoneSentStatus) Sendable() bool {
	return s == PhoneSentStatusPending || s == PhoneSentStatusQueued
}

// PhoneSentStatusFromProvider maps a provider delivery callback status.
func PhoneSentStatusFromProvider(status string) (PhoneSentStatus, bool) {
	switch status {
	case "sent":
		return PhoneSentStatusSent, true
	case "failed":
		return PhoneSentStatusFailed, true
	case "delivered":
		return PhoneSentStatusDelivered, true
	case "undelivered":
		return PhoneSentStatusUndelivered, true
	case "no-answer", "no_answer":
		return PhoneSentStatusNoAnswer, true
	default:
		return "", false
	}
}

type PhoneSent struct {
	ID           int64           `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	ReceiverID   int64           `gorm:"column:receiver_id;index"`
	Receiver     PhoneReceiver   `gorm:"foreignKey:ReceiverID"`
	Text         string          `gorm:"column:text;type:text"`
	SMSID        string          `gorm:"column:sms_id;size:34;index"`
	Status       PhoneSentStatus `gorm:"column:status;size:20;index"`
	ErrorCode    *string         `gorm:"column:error_code;size:32"`
	ErrorMessage *string         `gorm:"column:error_message;type:text"`
	MediaRaw     *string         `gorm:"column:media_raw;size:255"`
	Media        *string         `gorm:"column:media;size:255"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (PhoneSent) TableName() string {
	return "phone_sent"
}

func (p *PhoneSent) MarkFailed(message string) {
	p.Status = PhoneSentStatusFailed
	p.ErrorMessage = &message
}
