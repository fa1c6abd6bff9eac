package model

import "time"

// Phone is a service number owned by the system.
type Phone struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	Number    string    `gorm:"column:number;size:20;uniqueIndex"`
	Rate      int       `gorm:"column:rate;default:6"`
	UsedCount int64     `gorm:"column:used_count;default:0;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Phone) TableName() string {
	return "phones"
}

type PhoneReceiver struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	Number        string    `gorm:"column:number;size:20;uniqueIndex"`
	ServiceNumber string    `gorm:"column:service_number;size:20"`
	IsBlocked     bool      `gorm:"column:is_blocked"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (PhoneReceiver) TableName() string {
	return "phone_receivers"
}
