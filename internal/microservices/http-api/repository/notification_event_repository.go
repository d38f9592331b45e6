package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gsus07/tichat-push/internal/microservices/http-api/models"
)

type NotificationEventRepository interface {
	Create(ctx context.Context, event *models.NotificationEvent) error
}

type notificationEventRepository struct {
	db *gorm.DB
}

func NewNotificationEventRepository(db *gorm.DB) NotificationEventRepository {
	return &notificationEventRepository{db: db}
}

func (r *notificationEventRepository) Create(ctx context.Context, event *models.NotificationEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
