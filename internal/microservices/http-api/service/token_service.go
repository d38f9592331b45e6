package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Gsus07/tichat-push/internal/microservices/http-api/models"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/repository"
	"github.com/Gsus07/tichat-push/internal/push"
)

var ErrInvalidPushToken = errors.New("push token is not a valid subscription")

type TokenService interface {
	Register(ctx context.Context, userID, token, deviceType string) error
	Remove(ctx context.Context, userID, token string) error
}

type tokenService struct {
	repo repository.PushTokenRepository
}

func NewTokenService(repo repository.PushTokenRepository) TokenService {
	return &tokenService{repo: repo}
}

// Register stores the subscription carried inside the opaque token value.
// Idempotent: registering the same endpoint twice refreshes one record.
func (s *tokenService) Register(ctx context.Context, userID, token, deviceType string) error {
	sub, err := decodeToken(token)
	if err != nil {
		return err
	}
	if deviceType == "" {
		deviceType = push.DeviceTypeWeb
	}

	return s.repo.Upsert(ctx, &models.PushToken{
		UserID:     userID,
		Endpoint:   sub.Endpoint,
		P256dh:     sub.Keys.P256dh,
		Auth:       sub.Keys.Auth,
		DeviceType: deviceType,
	})
}

func (s *tokenService) Remove(ctx context.Context, userID, token string) error {
	sub, err := decodeToken(token)
	if err != nil {
		return err
	}
	return s.repo.DeleteByEndpoint(ctx, userID, sub.Endpoint)
}

// the token value is the JSON-encoded subscription the browser produced
func decodeToken(token string) (push.Subscription, error) {
	var sub push.Subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil {
		return push.Subscription{}, ErrInvalidPushToken
	}
	if sub.Endpoint == "" {
		return push.Subscription{}, ErrInvalidPushToken
	}
	return sub, nil
}
