package models

import (
	"time"

	"github.com/Gsus07/tichat-push/internal/push"
)

// NotificationPreferences is the stored per-user opt-in matrix, one row per
// user, written as a whole on every save.
type NotificationPreferences struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	EmailNotifications bool      `gorm:"default:true" json:"email_notifications"`
	PushNotifications  bool      `gorm:"default:false" json:"push_notifications"`
	NewPosts           bool      `gorm:"default:true" json:"new_posts"`
	NewServers         bool      `gorm:"default:true" json:"new_servers"`
	NewGames           bool      `gorm:"default:true" json:"new_games"`
	Follows            bool      `gorm:"default:true" json:"follows"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (NotificationPreferences) TableName() string {
	return "notification_preferences"
}

// Matrix converts the row to the wire-level preferences object.
func (p NotificationPreferences) Matrix() push.Preferences {
	return push.Preferences{
		EmailNotifications: p.EmailNotifications,
		PushNotifications:  p.PushNotifications,
		NewPosts:           p.NewPosts,
		NewServers:         p.NewServers,
		NewGames:           p.NewGames,
		Follows:            p.Follows,
	}
}

// PreferencesRow builds a row for a user from the wire-level object.
func PreferencesRow(userID string, m push.Preferences) NotificationPreferences {
	return NotificationPreferences{
		UserID:             userID,
		EmailNotifications: m.EmailNotifications,
		PushNotifications:  m.PushNotifications,
		NewPosts:           m.NewPosts,
		NewServers:         m.NewServers,
		NewGames:           m.NewGames,
		Follows:            m.Follows,
	}
}
