package service

import (
	"context"
	"errors"

	"github.com/Gsus07/tichat-push/internal/microservices/http-api/models"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/repository"
)

var ErrMissingNotificationID = errors.New("notification id is required")

type TrackingService interface {
	TrackClose(ctx context.Context, userID, notificationID string) error
}

type trackingService struct {
	repo repository.NotificationEventRepository
}

func NewTrackingService(repo repository.NotificationEventRepository) TrackingService {
	return &trackingService{repo: repo}
}

func (s *trackingService) TrackClose(ctx context.Context, userID, notificationID string) error {
	if notificationID == "" {
		return ErrMissingNotificationID
	}
	return s.repo.Create(ctx, &models.NotificationEvent{
		UserID:         userID,
		NotificationID: notificationID,
		Action:         "close",
	})
}
