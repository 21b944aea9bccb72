package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/config"
	"github.com/spec-kit/account-service/internal/events"
)

// NotificationService handles emitting notifications for account events.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		logger: logger,
		cfg:    cfg,
	}
}

// Handlers returns the notification handler for each account event type.
func (n *NotificationService) Handlers() map[events.EventType]events.EventHandler {
	return map[events.EventType]events.EventHandler{
		events.EventUserSignedUp:        n.handleUserSignedUp,
		events.EventUserLoggedIn:        n.handleUserLoggedIn,
		events.EventAccessTokenReissued: n.handleAccessTokenReissued,
		events.EventProfileUpdated:      n.handleProfileUpdated,
	}
}

func (n *NotificationService) handleUserSignedUp(ctx context.Context, event events.Event) error {
	n.logger.Info("UserSignedUp", zap.String("subject", event.Subject), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserLoggedIn(ctx context.Context, event events.Event) error {
	n.logger.Debug("UserLoggedIn", zap.String("subject", event.Subject))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAccessTokenReissued(ctx context.Context, event events.Event) error {
	n.logger.Debug("AccessTokenReissued", zap.String("subject", event.Subject), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleProfileUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("ProfileUpdated", zap.String("subject", event.Subject), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", event.Subject),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject", event.Subject),
		zap.String("event_type", string(event.Type)))
}
