package services

import (
	"context"
	"errors"
	"testing"

	"github.com/TanakaNakamura/factory-erp-api/internal/commands"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOrderService_Create(t *testing.T) {
	f := newFixture()
	item := f.createItem(t, "SKU-1", 50, 10)

	order := f.createOrder(t, line(item.ID, 3))

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "alice", order.CreatedBy)
	assert.Contains(t, f.publisher.EventTypes(), "OrderCreated")
}

func TestOrderService_Create_UnknownItem(t *testing.T) {
	f := newFixture()

	_, err := f.orders.Create(context.Background(), commands.CreateOrderCommand{
		Type:  string(domain.OrderTypeSales),
		Items: []commands.OrderLine{line(uuid.New(), 1)},
	})

	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestOrderService_Create_InvalidType(t *testing.T) {
	f := newFixture()
	item := f.createItem(t, "SKU-1", 50, 10)

	_, err := f.orders.Create(context.Background(), commands.CreateOrderCommand{
		Type:  "barter",
		Items: []commands.OrderLine{line(item.ID, 1)},
	})

	assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
}

func TestOrderService_UpdateStatus_WalksLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item := f.createItem(t, "SKU-1", 50, 10)
	order := f.createOrder(t, line(item.ID, 1))

	for _, target := range []domain.OrderStatus{
		domain.StatusApproved, domain.StatusInProgress, domain.StatusShipped, domain.StatusDelivered,
	} {
		updated, err := f.orders.UpdateStatus(ctx, commands.UpdateOrderStatusCommand{
			ID: order.ID, Target: string(target), UserID: "manager-1",
		})
		require.NoError(t, err)
		assert.Equal(t, target, updated.Status)
		assert.Equal(t, "manager-1", updated.ApprovedBy)
	}

	_, targets, err := f.orders.AvailableTransitions(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestOrderService_UpdateStatus_RejectsSkippingSteps(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item := f.createItem(t, "SKU-1", 50, 10)
	order := f.approvedOrder(t, line(item.ID, 1))

	_, err := f.orders.UpdateStatus(ctx, commands.UpdateOrderStatusCommand{
		ID: order.ID, Target: string(domain.StatusDelivered),
	})

	var transitionErr *domain.TransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, domain.StatusApproved, transitionErr.Current)
	assert.Equal(t, domain.StatusDelivered, transitionErr.Target)
	assert.Equal(t, []domain.OrderStatus{domain.StatusInProgress, domain.StatusCancelled}, transitionErr.Allowed)

	stored, err := f.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
}

func TestOrderService_UpdateStatus_UnknownTarget(t *testing.T) {
	f := newFixture()
	item := f.createItem(t, "SKU-1", 50, 10)
	order := f.createOrder(t, line(item.ID, 1))

	_, err := f.orders.UpdateStatus(context.Background(), commands.UpdateOrderStatusCommand{
		ID: order.ID, Target: "teleported",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestOrderService_UpdateStatus_StoredStatusWithoutRules(t *testing.T) {
	f := newFixture()
	item := f.createItem(t, "SKU-1", 50, 10)
	order := f.createOrder(t, line(item.ID, 1))
	_, err := f.orderRepo.UpdateStatus(context.Background(), order.ID, domain.StatusPending, domain.StatusDraft, "")
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(context.Background(), commands.UpdateOrderStatusCommand{
		ID: order.ID, Target: string(domain.StatusPending),
	})

	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestOrderService_UpdateStatus_PublishesAfterCommit(t *testing.T) {
	f := newFixture()
	item := f.createItem(t, "SKU-1", 50, 10)
	order := f.createOrder(t, line(item.ID, 1))

	_, err := f.orders.UpdateStatus(context.Background(), commands.UpdateOrderStatusCommand{
		ID: order.ID, Target: string(domain.StatusCancelled),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"InventoryItemCreated", "OrderCreated", "OrderStatusChanged"}, f.publisher.EventTypes())
}

func TestOrderService_PublishFailureDoesNotFailOperation(t *testing.T) {
	logger := zap.NewNop()
	inventoryRepo := repository.NewInventoryRepository()
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	service := NewOrderService(repository.NewOrderRepository(), inventoryRepo,
		domain.NewStatusEngine(nil, logger), publisher, logger)

	item, err := domain.NewInventoryItem(domain.NewItemParams{SKU: "SKU-1", ProductName: "Bolt", Quantity: 5})
	require.NoError(t, err)
	require.NoError(t, inventoryRepo.Create(context.Background(), item))

	order, err := service.Create(context.Background(), commands.CreateOrderCommand{
		Type:  string(domain.OrderTypeSales),
		Items: []commands.OrderLine{line(item.ID, 1)},
	})

	require.NoError(t, err)
	assert.NotNil(t, order)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestOrderService_List(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item := f.createItem(t, "SKU-1", 50, 10)
	f.createOrder(t, line(item.ID, 1))
	f.approvedOrder(t, line(item.ID, 1))

	all, total, err := f.orders.List(ctx, "", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	approved, total, err := f.orders.List(ctx, "approved", "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, domain.StatusApproved, approved[0].Status)

	_, _, err = f.orders.List(ctx, "bogus", "", 1, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
