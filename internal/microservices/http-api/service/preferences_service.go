package service

import (
	"context"

	"github.com/Gsus07/tichat-push/internal/microservices/http-api/models"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/repository"
	"github.com/Gsus07/tichat-push/internal/push"
)

type PreferencesService interface {
	Get(ctx context.Context, userID string) (push.Preferences, error)
	Save(ctx context.Context, userID string, prefs push.Preferences) error
}

type preferencesService struct {
	repo  repository.PreferencesRepository
	cache repository.PreferencesCache
}

// NewPreferencesService builds the service. The cache is optional; pass nil
// to always hit the database.
func NewPreferencesService(repo repository.PreferencesRepository, cache repository.PreferencesCache) PreferencesService {
	return &preferencesService{repo: repo, cache: cache}
}

func (s *preferencesService) Get(ctx context.Context, userID string) (push.Preferences, error) {
	if s.cache != nil {
		if prefs, ok := s.cache.Get(ctx, userID); ok {
			return *prefs, nil
		}
	}

	row, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return push.Preferences{}, err
	}

	prefs := row.Matrix()
	if s.cache != nil {
		s.cache.Set(ctx, userID, prefs)
	}
	return prefs, nil
}

func (s *preferencesService) Save(ctx context.Context, userID string, prefs push.Preferences) error {
	row := models.PreferencesRow(userID, prefs)
	if err := s.repo.Upsert(ctx, &row); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	return nil
}
