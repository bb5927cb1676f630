package services

import (
	"context"
	"fmt"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/commands"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"
	"github.com/TanakaNakamura/factory-erp-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles order creation and status changes
type OrderService struct {
	orders    repository.OrderRepository
	inventory repository.InventoryRepository
	engine    *domain.StatusEngine
	publisher events.EventPublisher
	logger    *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	inventory repository.InventoryRepository,
	engine *domain.StatusEngine,
	publisher events.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		inventory: inventory,
		engine:    engine,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates the lines against inventory and stores a pending order.
func (s *OrderService) Create(ctx context.Context, cmd commands.CreateOrderCommand) (*domain.Order, error) {
	lines := make([]domain.OrderItem, 0, len(cmd.Items))
	for _, line := range cmd.Items {
		if _, err := s.inventory.FindByID(ctx, line.ItemID); err != nil {
			return nil, fmt.Errorf("order line %s: %w", line.ItemID, err)
		}
		lines = append(lines, domain.OrderItem{ItemID: line.ItemID, Quantity: line.Quantity, UnitPrice: line.UnitPrice})
	}

	order, err := domain.NewOrder(domain.NewOrderParams{
		OrderNumber: cmd.OrderNumber,
		Type:        domain.OrderType(cmd.Type),
		Priority:    domain.OrderPriority(cmd.Priority),
		CustomerID:  cmd.CustomerID,
		SupplierID:  cmd.SupplierID,
		Items:       lines,
		Notes:       cmd.Notes,
		CreatedBy:   cmd.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("type", string(order.Type)),
	)
	publish(ctx, s.publisher, s.logger, events.OrderCreatedEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Type:        order.Type,
		Status:      order.Status,
		Total:       order.Subtotal(),
		CreatedBy:   order.CreatedBy,
		OccurredAt:  time.Now().UTC(),
	})
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// List returns one page of orders and the total count. Empty status and
// type strings match all orders.
func (s *OrderService) List(ctx context.Context, status, orderType string, page, limit int) ([]*domain.Order, int, error) {
	filter := repository.OrderFilter{Page: page, Limit: limit}
	if status != "" {
		parsed, err := domain.ParseOrderStatus(status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = parsed
	}
	if orderType != "" {
		filter.Type = domain.OrderType(orderType)
	}
	return s.orders.List(ctx, filter)
}

// AvailableTransitions returns the legal next statuses of a stored order
func (s *OrderService) AvailableTransitions(ctx context.Context, id uuid.UUID) (*domain.Order, []domain.OrderStatus, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	targets, err := s.engine.AvailableTransitions(order.Status)
	if err != nil {
		return nil, nil, err
	}
	return order, targets, nil
}

// UpdateStatus asks the engine to approve the change, then commits it
// conditioned on the status read before the decision.
func (s *OrderService) UpdateStatus(ctx context.Context, cmd commands.UpdateOrderStatusCommand) (*domain.Order, error) {
	target, err := domain.ParseOrderStatus(cmd.Target)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order.ID, order.Status, target, cmd.UserID)
}

// transition runs one engine-approved, compare-and-swap committed status change.
func (s *OrderService) transition(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, userID string) (*domain.Order, error) {
	if err := s.engine.ApplyTransition(ctx, id.String(), from, to); err != nil {
		return nil, err
	}

	approvedBy := ""
	if to == domain.StatusApproved {
		approvedBy = userID
	}
	updated, err := s.orders.UpdateStatus(ctx, id, from, to, approvedBy)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("user_id", userID),
	)
	publish(ctx, s.publisher, s.logger, events.OrderStatusChangedEvent{
		OrderID:    id.String(),
		From:       from,
		To:         to,
		OccurredAt: time.Now().UTC(),
	})
	return updated, nil
}
