package dto

import "github.com/Gsus07/tichat-push/internal/push"

type PushTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceType string `json:"device_type"`
}

type RemoveTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type PreferencesResponse struct {
	Preferences push.Preferences `json:"preferences"`
}

type TrackCloseRequest struct {
	NotificationID string `json:"notificationId" binding:"required"`
	Action         string `json:"action"`
}

type SendRequest struct {
	UserID  string         `json:"user_id" binding:"required"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Tag     string         `json:"tag"`
	Data    map[string]any `json:"data"`
}

type SendResponse struct {
	Delivered int `json:"delivered"`
}
