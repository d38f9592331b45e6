package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Gsus07/tichat-push/internal/microservices/http-api/models"
	"github.com/Gsus07/tichat-push/internal/push"
)

type PreferencesRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	Upsert(ctx context.Context, prefs *models.NotificationPreferences) error
}

type preferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) PreferencesRepository {
	return &preferencesRepository{db: db}
}

// GetByUser returns the stored matrix, or defaults for users who never
// saved one.
func (r *preferencesRepository) GetByUser(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := models.PreferencesRow(userID, push.DefaultPreferences())
		return &row, nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *models.NotificationPreferences) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email_notifications", "push_notifications", "new_posts",
				"new_servers", "new_games", "follows", "updated_at",
			}),
		}).
		Create(prefs).Error
}
