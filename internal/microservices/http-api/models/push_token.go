package models

import "time"

// PushToken is one registered browser endpoint for a user. The endpoint is
// the natural identity: registering the same endpoint again refreshes the
// record instead of creating a second one.
type PushToken struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint   string    `gorm:"not null;uniqueIndex" json:"endpoint"`
	P256dh     string    `gorm:"not null" json:"p256dh"`
	Auth       string    `gorm:"not null" json:"auth"`
	DeviceType string    `gorm:"default:web" json:"device_type"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (PushToken) TableName() string {
	return "push_tokens"
}
