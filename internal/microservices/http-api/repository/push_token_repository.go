package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gsus07/tichat-push/internal/microservices/http-api/models"
)

type PushTokenRepository interface {
	Upsert(ctx context.Context, token *models.PushToken) error
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
	GetByUser(ctx context.Context, userID string) ([]models.PushToken, error)
	DeleteEndpoint(ctx context.Context, endpoint string) error
}

type pushTokenRepository struct {
	db *gorm.DB
}

func NewPushTokenRepository(db *gorm.DB) PushTokenRepository {
	return &pushTokenRepository{db: db}
}

// Upsert creates the token or refreshes an existing record with the same
// endpoint. Duplicate creates from concurrent tabs converge on one row.
func (r *pushTokenRepository) Upsert(ctx context.Context, token *models.PushToken) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "device_type", "updated_at"}),
		}).
		Create(token).Error
}

func (r *pushTokenRepository) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&models.PushToken{}).Error
}

func (r *pushTokenRepository) GetByUser(ctx context.Context, userID string) ([]models.PushToken, error) {
	var tokens []models.PushToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tokens).Error
	return tokens, err
}

// DeleteEndpoint removes a token regardless of owner, used when the push
// service reports the endpoint gone.
func (r *pushTokenRepository) DeleteEndpoint(ctx context.Context, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("endpoint = ?", endpoint).
		Delete(&models.PushToken{}).Error
}
