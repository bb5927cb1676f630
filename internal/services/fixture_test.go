package services

import (
	"context"
	"testing"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/cache"
	"github.com/TanakaNakamura/factory-erp-api/internal/commands"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"
	"github.com/TanakaNakamura/factory-erp-api/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	inventoryRepo *repository.InMemoryInventoryRepository
	orderRepo     *repository.InMemoryOrderRepository
	publisher     *events.InMemoryEventPublisher
	statuses      *cache.StatusCache
	orders        *OrderService
	inventory     *InventoryService
	fulfillment   *FulfillmentService
}

func newFixture() *fixture {
	logger := zap.NewNop()
	f := &fixture{
		inventoryRepo: repository.NewInventoryRepository(),
		orderRepo:     repository.NewOrderRepository(),
		publisher:     events.NewEventPublisher(logger),
		statuses:      cache.NewStatusCache(cache.NewInMemoryCache(), time.Minute, logger),
	}
	engine := domain.NewStatusEngine(NewAuditHook(logger), logger)
	f.orders = NewOrderService(f.orderRepo, f.inventoryRepo, engine, f.publisher, logger)
	f.inventory = NewInventoryService(f.inventoryRepo, f.statuses, f.publisher, logger, 20)
	f.fulfillment = NewFulfillmentService(f.orders, f.inventoryRepo, f.statuses, f.publisher, logger)
	return f
}

func (f *fixture) createItem(t *testing.T, sku string, quantity, reorderPoint int) *domain.InventoryItem {
	t.Helper()
	item, err := f.inventory.Create(context.Background(), commands.CreateItemCommand{
		SKU:          sku,
		ProductName:  "Part " + sku,
		Warehouse:    "WH-1",
		Quantity:     quantity,
		ReorderPoint: &reorderPoint,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) createOrder(t *testing.T, lines ...commands.OrderLine) *domain.Order {
	t.Helper()
	order, err := f.orders.Create(context.Background(), commands.CreateOrderCommand{
		Type:       string(domain.OrderTypeSales),
		CustomerID: "CUST-1",
		Items:      lines,
		CreatedBy:  "alice",
	})
	require.NoError(t, err)
	return order
}

func (f *fixture) approvedOrder(t *testing.T, lines ...commands.OrderLine) *domain.Order {
	t.Helper()
	order := f.createOrder(t, lines...)
	approved, err := f.orders.UpdateStatus(context.Background(), commands.UpdateOrderStatusCommand{
		ID:     order.ID,
		Target: string(domain.StatusApproved),
		UserID: "manager-1",
	})
	require.NoError(t, err)
	return approved
}

func line(itemID uuid.UUID, quantity int) commands.OrderLine {
	return commands.OrderLine{ItemID: itemID, Quantity: quantity, UnitPrice: 10}
}
