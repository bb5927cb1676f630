package services

import (
	"context"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"

	"go.uber.org/zap"
)

// saveAttempts bounds the optimistic-lock retry loop around persistence
const saveAttempts = 3

// publish sends an event and only logs a failure; the originating
// operation has already been committed.
func publish(ctx context.Context, publisher events.EventPublisher, logger *zap.Logger, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("event-type", event.EventType()),
			zap.String("key", event.PartitionKey()),
			zap.Error(err),
		)
	}
}

// NewAuditHook returns the status engine hook that writes an audit line for
// every approved order transition.
func NewAuditHook(logger *zap.Logger) domain.TransitionHook {
	return func(ctx context.Context, change domain.StatusChange) error {
		logger.Info("Order status transition approved",
			zap.String("order_id", change.OrderID),
			zap.String("from", string(change.From)),
			zap.String("to", string(change.To)),
			zap.String("note", change.Note),
		)
		return nil
	}
}
