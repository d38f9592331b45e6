package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"golang.org/x/time/rate"

	"github.com/Gsus07/tichat-push/internal/config"
	"github.com/Gsus07/tichat-push/internal/microservices/http-api/repository"
	"github.com/Gsus07/tichat-push/internal/push"
)

// WebPushSender is the outbound edge to the browser push services.
// Separated so tests can capture sends without network.
type WebPushSender interface {
	Send(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)
}

type webPushSender struct{}

func (webPushSender) Send(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error) {
	return webpush.SendNotificationWithContext(ctx, payload, sub, opts)
}

// NewWebPushSender returns the real sender.
func NewWebPushSender() WebPushSender {
	return webPushSender{}
}

type DeliveryService interface {
	Deliver(ctx context.Context, userID string, payload push.Payload) (int, error)
}

type deliveryService struct {
	tokens  repository.PushTokenRepository
	sender  WebPushSender
	limiter *rate.Limiter
	logger  *slog.Logger

	vapidPublicKey  string
	vapidPrivateKey string
	subscriber      string
	ttlSeconds      int
}

func NewDeliveryService(
	tokens repository.PushTokenRepository,
	sender WebPushSender,
	cfg *config.Config,
	logger *slog.Logger,
) DeliveryService {
	return &deliveryService{
		tokens: tokens,
		sender: sender,
		// push services throttle aggressive senders, stay under it
		limiter:         rate.NewLimiter(rate.Limit(20), 40),
		logger:          logger,
		vapidPublicKey:  cfg.VAPIDPublicKey,
		vapidPrivateKey: cfg.VAPIDPrivateKey,
		subscriber:      cfg.PushSubscriber,
		ttlSeconds:      int(cfg.PushTTL.Seconds()),
	}
}

// Deliver sends one payload to every registered endpoint of a user and
// returns how many sends were accepted. Endpoints the push service reports
// as gone are pruned; individual send failures are logged, never fatal.
func (s *deliveryService) Deliver(ctx context.Context, userID string, payload push.Payload) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	tokens, err := s.tokens.GetByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, token := range tokens {
		if err := s.limiter.Wait(ctx); err != nil {
			return delivered, err
		}

		sub := &webpush.Subscription{
			Endpoint: token.Endpoint,
			Keys: webpush.Keys{
				P256dh: token.P256dh,
				Auth:   token.Auth,
			},
		}
		resp, err := s.sender.Send(ctx, data, sub, &webpush.Options{
			Subscriber:      s.subscriber, // webpush-go adds mailto: automatically
			VAPIDPublicKey:  s.vapidPublicKey,
			VAPIDPrivateKey: s.vapidPrivateKey,
			TTL:             s.ttlSeconds,
		})
		if err != nil {
			s.logger.Warn("push send failed", "endpoint", token.Endpoint, "error", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
			// the platform invalidated this subscription, drop it
			s.logger.Info("pruning invalid subscription", "endpoint", token.Endpoint, "status", resp.StatusCode)
			if err := s.tokens.DeleteEndpoint(ctx, token.Endpoint); err != nil {
				s.logger.Warn("pruning subscription failed", "error", err)
			}
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			delivered++
		default:
			s.logger.Warn("unexpected push service status", "endpoint", token.Endpoint, "status", resp.StatusCode)
		}
		resp.Body.Close()
	}

	return delivered, nil
}
