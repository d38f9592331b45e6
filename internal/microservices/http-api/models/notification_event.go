package models

import "time"

// NotificationEvent is one tracked interaction with a delivered
// notification, currently only closes.
type NotificationEvent struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         string    `gorm:"type:uuid;not null;index" json:"user_id"`
	NotificationID string    `gorm:"not null" json:"notification_id"`
	Action         string    `gorm:"not null" json:"action"`
	CreatedAt      time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (NotificationEvent) TableName() string {
	return "notification_events"
}
