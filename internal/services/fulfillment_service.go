package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/cache"
	"github.com/TanakaNakamura/factory-erp-api/internal/commands"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"
	"github.com/TanakaNakamura/factory-erp-api/internal/repository"

	"go.uber.org/zap"
)

// FulfillmentService ships approved orders from stock
type FulfillmentService struct {
	orders    *OrderService
	inventory repository.InventoryRepository
	statuses  *cache.StatusCache
	publisher events.EventPublisher
	logger    *zap.Logger
}

func NewFulfillmentService(
	orders *OrderService,
	inventory repository.InventoryRepository,
	statuses *cache.StatusCache,
	publisher events.EventPublisher,
	logger *zap.Logger,
) *FulfillmentService {
	return &FulfillmentService{
		orders:    orders,
		inventory: inventory,
		statuses:  statuses,
		publisher: publisher,
		logger:    logger,
	}
}

// dispatched records one decremented order line so it can be restored
type dispatched struct {
	line   domain.OrderItem
	before domain.InventoryState
	after  *domain.InventoryItem
}

// Fulfill decrements stock for every line of an approved order and walks
// the order through in_progress to shipped. Stock is restored when any
// line is short or the order changed status concurrently.
func (s *FulfillmentService) Fulfill(ctx context.Context, cmd commands.FulfillOrderCommand) (*domain.Order, error) {
	order, err := s.orders.orders.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	ok, err := s.orders.engine.CanTransition(order.Status, domain.StatusInProgress)
	if err != nil {
		return nil, err
	}
	if !ok {
		allowed, _ := s.orders.engine.AvailableTransitions(order.Status)
		return nil, &domain.TransitionError{
			OrderID: order.ID.String(),
			Current: order.Status,
			Target:  domain.StatusInProgress,
			Allowed: allowed,
		}
	}

	if err := s.preflight(ctx, order); err != nil {
		return nil, err
	}

	done := make([]dispatched, 0, len(order.Items))
	for _, line := range order.Items {
		current, err := s.inventory.FindByID(ctx, line.ItemID)
		if err != nil {
			s.compensate(ctx, order, done, cmd.UserID)
			return nil, err
		}
		updated, err := s.inventory.DecrementIfAvailable(ctx, line.ItemID, line.Quantity, order.OrderNumber, cmd.UserID)
		if err != nil {
			s.compensate(ctx, order, done, cmd.UserID)
			if errors.Is(err, domain.ErrInsufficientStock) {
				return nil, fmt.Errorf("item %s: %w", line.ItemID, err)
			}
			return nil, err
		}
		done = append(done, dispatched{line: line, before: current.State, after: updated})
	}

	if _, err := s.orders.transition(ctx, order.ID, order.Status, domain.StatusInProgress, cmd.UserID); err != nil {
		s.compensate(ctx, order, done, cmd.UserID)
		return nil, err
	}
	shipped, err := s.orders.transition(ctx, order.ID, domain.StatusInProgress, domain.StatusShipped, cmd.UserID)
	if err != nil {
		// Stock has left the shelf and the order is in progress; shipping
		// can still be completed through a status update.
		s.logger.Error("Order left in progress after stock dispatch",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.announce(ctx, order, done, cmd.UserID)
	return shipped, nil
}

// preflight checks every line against the engine before touching stock
func (s *FulfillmentService) preflight(ctx context.Context, order *domain.Order) error {
	for _, line := range order.Items {
		item, err := s.inventory.FindByID(ctx, line.ItemID)
		if err != nil {
			return err
		}
		ok, err := domain.CanFulfill(item.State, item.Quantity, line.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("item %s (%s) has %d in state %s, %d requested: %w",
				item.SKU, item.ID, item.Quantity, item.State, line.Quantity, domain.ErrInsufficientStock)
		}
	}
	return nil
}

// compensate returns already dispatched quantities to stock
func (s *FulfillmentService) compensate(ctx context.Context, order *domain.Order, done []dispatched, userID string) {
	for _, d := range done {
		_, err := s.inventory.Increment(ctx, d.line.ItemID, d.line.Quantity, domain.MovementReturn,
			"Fulfillment rollback - "+order.OrderNumber, order.OrderNumber, userID)
		if err != nil {
			s.logger.Error("Failed to restore stock after aborted fulfillment",
				zap.String("order_id", order.ID.String()),
				zap.String("item_id", d.line.ItemID.String()),
				zap.Int("quantity", d.line.Quantity),
				zap.Error(err),
			)
			continue
		}
		s.statuses.Invalidate(ctx, d.line.ItemID)
	}
	if len(done) > 0 {
		s.logger.Warn("Fulfillment aborted, stock restored",
			zap.String("order_id", order.ID.String()),
			zap.Int("lines", len(done)),
		)
	}
}

func (s *FulfillmentService) announce(ctx context.Context, order *domain.Order, done []dispatched, userID string) {
	now := time.Now().UTC()
	lines := make([]events.FulfilledLine, 0, len(done))
	for _, d := range done {
		s.statuses.Invalidate(ctx, d.line.ItemID)
		lines = append(lines, events.FulfilledLine{
			ItemID:    d.line.ItemID,
			Quantity:  d.line.Quantity,
			Remaining: d.after.Quantity,
		})
		publish(ctx, s.publisher, s.logger, events.StockAdjustedEvent{
			ItemID:     d.after.ID,
			SKU:        d.after.SKU,
			Quantity:   -d.line.Quantity,
			NewTotal:   d.after.Quantity,
			Movement:   domain.MovementOutbound,
			Reason:     "Order fulfillment - " + order.OrderNumber,
			OccurredAt: now,
		})
		if d.after.State != d.before {
			publish(ctx, s.publisher, s.logger, events.InventoryStateChangedEvent{
				ItemID:     d.after.ID,
				SKU:        d.after.SKU,
				From:       d.before,
				To:         d.after.State,
				OccurredAt: now,
			})
		}
	}

	s.logger.Info("Order fulfilled",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(lines)),
		zap.String("user_id", userID),
	)
	publish(ctx, s.publisher, s.logger, events.OrderFulfilledEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Lines:       lines,
		FulfilledBy: userID,
		OccurredAt:  now,
	})
}
