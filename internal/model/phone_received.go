package model

import (
	"time"

	"gorm.io/datatypes"
)

type PhoneReceivedRawStatus string

const (
	PhoneReceivedRawStatusPending  PhoneReceivedRawStatus = "pending"
	PhoneReceivedRawStatusPass     PhoneReceivedRawStatus = "pass"
	PhoneReceivedRawStatusFail     PhoneReceivedRawStatus = "fail"
	PhoneReceivedRawStatusRejected PhoneReceivedRawStatus = "rejected"
)

type PhoneReceivedRaw struct {
	ID        int64                  `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	Status    PhoneReceivedRawStatus `gorm:"column:status;size:10;index"`
	Data      datatypes.JSONMap      `gorm:"column:data"`
	Exception string                 `gorm:"column:exception;type:text"`
	CreatedAt time.Time              `gorm:"column:created_at;index"`
	UpdatedAt time.Time              `gorm:"column:updated_at"`
}

func (PhoneReceivedRaw) TableName() string {
	return "phone_received_raw"
}

// Field returns a payload value as a string, or "" when missing.
func (r *PhoneReceivedRaw) Field(key string) string {
	value, ok := r.Data[key]
	if !ok || value == nil {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}

type PhoneReceivedType string

const (
	PhoneReceivedTypeText  PhoneReceivedType = "text"
	PhoneReceivedTypeVoice PhoneReceivedType = "voice"
)

type PhoneReceived struct {
	ID         int64             `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	ReceiverID int64             `gorm:"column:receiver_id;index"`
	Receiver   PhoneReceiver     `gorm:"foreignKey:ReceiverID"`
	RawID      *int64            `gorm:"column:raw_id"`
	Text       string            `gorm:"column:text;type:text"`
	Media      *string           `gorm:"column:media;size:255"`
	SMSID      string            `gorm:"column:sms_id;size:34;index"`
	Type       PhoneReceivedType `gorm:"column:type;size:10"`
	IsOptOut   bool              `gorm:"column:is_opt_out"`
	CreatedAt  time.Time         `gorm:"column:created_at"`
	UpdatedAt  time.Time         `gorm:"column:updated_at"`
}

func (PhoneReceived) TableName() string {
	return "phone_received"
}
