package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Gsus07/tichat-push/internal/microservices/http-api/models"
)

// MockNotificationEventRepository mocks the NotificationEventRepository interface
type MockNotificationEventRepository struct {
	mock.Mock
}

func (m *MockNotificationEventRepository) Create(ctx context.Context, event *models.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestTrackClose_RecordsEvent(t *testing.T) {
	repo := new(MockNotificationEventRepository)
	svc := NewTrackingService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *models.NotificationEvent) bool {
		return e.UserID == "user-1" && e.NotificationID == "n-7" && e.Action == "close"
	})).Return(nil)

	err := svc.TrackClose(context.Background(), "user-1", "n-7")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTrackClose_MissingID(t *testing.T) {
	repo := new(MockNotificationEventRepository)
	svc := NewTrackingService(repo)

	err := svc.TrackClose(context.Background(), "user-1", "")

	assert.ErrorIs(t, err, ErrMissingNotificationID)
	repo.AssertNotCalled(t, "Create")
}
