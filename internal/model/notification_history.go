package model

import "time"

// NotificationHistory is append-only.
type NotificationHistory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	Group     string    `gorm:"column:group;size:50"`
	Klass     string    `gorm:"column:klass;size:255"`
	Receiver  string    `gorm:"column:receiver;size:255"`
	Details   string    `gorm:"column:details;type:text"`
	Category  string    `gorm:"column:category;size:255"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (NotificationHistory) TableName() string {
	return "notification_history"
}
