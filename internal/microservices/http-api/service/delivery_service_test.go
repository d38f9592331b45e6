package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Gsus07/tichat-push/internal/config"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/models"
	"github.com/Gsus07/tichat-push/internal/push"
)

// MockWebPushSender mocks the WebPushSender interface
type MockWebPushSender struct {
	mock.Mock
}

func (m *MockWebPushSender) Send(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
	args := m.Called(ctx, payload, sub, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func pushResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

func deliveryFixture(t *testing.T) (*MockPushTokenRepository, *MockWebPushSender, DeliveryService) {
	t.Helper()
	repo := new(MockPushTokenRepository)
	sender := new(MockWebPushSender)
	cfg := &config.Config{
		VAPIDPublicKey:  "test-public",
		VAPIDPrivateKey: "test-private",
		PushSubscriber:  "admin@tichat.example",
		PushTTL:         time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo, sender, NewDeliveryService(repo, sender, cfg, logger)
}

func userTokens(endpoints ...string) []models.PushToken {
	tokens := make([]models.PushToken, 0, len(endpoints))
	for _, e := range endpoints {
		tokens = append(tokens, models.PushToken{
			UserID:   "user-1",
			Endpoint: e,
			P256dh:   "pk",
			Auth:     "ak",
		})
	}
	return tokens
}

func TestDeliver_CountsAcceptedSends(t *testing.T) {
	repo, sender, svc := deliveryFixture(t)
	repo.On("GetByUser", mock.Anything, "user-1").
		Return(userTokens("https://p/1", "https://p/2"), nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(pushResponse(http.StatusCreated), nil)

	delivered, err := svc.Deliver(context.Background(), "user-1", push.Payload{Title: "hola"})

	assert.NoError(t, err)
	assert.Equal(t, 2, delivered)
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestDeliver_SerializesPayload(t *testing.T) {
	repo, sender, svc := deliveryFixture(t)
	repo.On("GetByUser", mock.Anything, "user-1").Return(userTokens("https://p/1"), nil)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(data []byte) bool {
		var got push.Payload
		if err := json.Unmarshal(data, &got); err != nil {
			return false
		}
		return got.Title == "Nuevo post" && got.Tag == "post-42"
	}), mock.Anything, mock.Anything).Return(pushResponse(http.StatusOK), nil)

	_, err := svc.Deliver(context.Background(), "user-1", push.Payload{Title: "Nuevo post", Tag: "post-42"})

	assert.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestDeliver_UsesVAPIDOptions(t *testing.T) {
	repo, sender, svc := deliveryFixture(t)
	repo.On("GetByUser", mock.Anything, "user-1").Return(userTokens("https://p/1"), nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(opts *webpush.Options) bool {
		return opts.VAPIDPublicKey == "test-public" &&
			opts.VAPIDPrivateKey == "test-private" &&
			opts.Subscriber == "admin@tichat.example" &&
			opts.TTL == 3600
	})).Return(pushResponse(http.StatusCreated), nil)

	_, err := svc.Deliver(context.Background(), "user-1", push.Payload{})

	assert.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestDeliver_PrunesGoneEndpoints(t *testing.T) {
	repo, sender, svc := deliveryFixture(t)
	repo.On("GetByUser", mock.Anything, "user-1").
		Return(userTokens("https://p/gone", "https://p/live"), nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.MatchedBy(func(sub *webpush.Subscription) bool {
		return sub.Endpoint == "https://p/gone"
	}), mock.Anything).Return(pushResponse(http.StatusGone), nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.MatchedBy(func(sub *webpush.Subscription) bool {
		return sub.Endpoint == "https://p/live"
	}), mock.Anything).Return(pushResponse(http.StatusCreated), nil)
	repo.On("DeleteEndpoint", mock.Anything, "https://p/gone").Return(nil)

	delivered, err := svc.Deliver(context.Background(), "user-1", push.Payload{})

	assert.NoError(t, err)
	assert.Equal(t, 1, delivered)
	repo.AssertCalled(t, "DeleteEndpoint", mock.Anything, "https://p/gone")
}

func TestDeliver_SendFailureIsNotFatal(t *testing.T) {
	repo, sender, svc := deliveryFixture(t)
	repo.On("GetByUser", mock.Anything, "user-1").
		Return(userTokens("https://p/bad", "https://p/good"), nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.MatchedBy(func(sub *webpush.Subscription) bool {
		return sub.Endpoint == "https://p/bad"
	}), mock.Anything).Return(nil, errors.New("connection refused"))
	sender.On("Send", mock.Anything, mock.Anything, mock.MatchedBy(func(sub *webpush.Subscription) bool {
		return sub.Endpoint == "https://p/good"
	}), mock.Anything).Return(pushResponse(http.StatusCreated), nil)

	delivered, err := svc.Deliver(context.Background(), "user-1", push.Payload{})

	assert.NoError(t, err)
	assert.Equal(t, 1, delivered)
}

func TestDeliver_NoTokens(t *testing.T) {
	repo, sender, svc := deliveryFixture(t)
	repo.On("GetByUser", mock.Anything, "user-1").Return([]models.PushToken{}, nil)

	delivered, err := svc.Deliver(context.Background(), "user-1", push.Payload{})

	assert.NoError(t, err)
	assert.Equal(t, 0, delivered)
	sender.AssertNotCalled(t, "Send")
}

func TestDeliver_RepoError(t *testing.T) {
	repo, _, svc := deliveryFixture(t)
	repo.On("GetByUser", mock.Anything, "user-1").Return(nil, errors.New("db down"))

	_, err := svc.Deliver(context.Background(), "user-1", push.Payload{})

	assert.Error(t, err)
}
