package worker

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/events"
)

// HandlerSource supplies event handlers keyed by event type.
type HandlerSource interface {
	Handlers() map[events.EventType]events.EventHandler
}

// StartNotificationWorker subscribes every handler from source on the
// dispatcher and returns the subscribed event types in order. Handler errors
// and panics are logged and swallowed so a failed notification never fails
// the request that published the event.
func StartNotificationWorker(dispatcher events.Dispatcher, source HandlerSource, logger *zap.Logger) []events.EventType {
	if dispatcher == nil || source == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	handlers := source.Handlers()
	types := make([]events.EventType, 0, len(handlers))
	for eventType := range handlers {
		types = append(types, eventType)
	}
	slices.Sort(types)

	for _, eventType := range types {
		dispatcher.Subscribe(eventType, guard(handlers[eventType], logger))
	}
	logger.Info("notification worker started", zap.Int("subscriptions", len(types)))
	return types
}

func guard(handler events.EventHandler, logger *zap.Logger) events.EventHandler {
	return func(ctx context.Context, event events.Event) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("notification handler panic: %v", r)
			}
			if err != nil {
				logger.Warn("notification failed",
					zap.String("event_type", string(event.Type)),
					zap.String("event_id", event.ID),
					zap.Error(err))
			}
			err = nil
		}()
		return handler(ctx, event)
	}
}
