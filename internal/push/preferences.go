package push

// Preferences is the per-user notification opt-in matrix. Saved as a whole
// object, never per toggle.
type Preferences struct {
	EmailNotifications bool `json:"email_notifications"`
	PushNotifications  bool `json:"push_notifications"`
	NewPosts           bool `json:"new_posts"`
	NewServers         bool `json:"new_servers"`
	NewGames           bool `json:"new_games"`
	Follows            bool `json:"follows"`
}

// DefaultPreferences returns the matrix used for users who never saved one.
// Push stays off until the user subscribes explicitly.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		PushNotifications:  false,
		NewPosts:           true,
		NewServers:         true,
		NewGames:           true,
		Follows:            true,
	}
}
