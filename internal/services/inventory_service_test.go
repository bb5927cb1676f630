package services

import (
	"context"
	"testing"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/cache"
	"github.com/TanakaNakamura/factory-erp-api/internal/commands"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInventoryService_Create_DefaultReorderPoint(t *testing.T) {
	f := newFixture()

	item, err := f.inventory.Create(context.Background(), commands.CreateItemCommand{
		SKU:         "SKU-1",
		ProductName: "Bolt",
		Quantity:    15,
	})

	require.NoError(t, err)
	assert.Equal(t, 20, item.ReorderPoint)
	assert.Equal(t, domain.StateLowStock, item.State)
}

func TestInventoryService_Create_DuplicateSKU(t *testing.T) {
	f := newFixture()
	f.createItem(t, "SKU-1", 10, 0)

	_, err := f.inventory.Create(context.Background(), commands.CreateItemCommand{SKU: "SKU-1", ProductName: "Dup"})

	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
}

func TestInventoryService_AdjustStock_PublishesStateChange(t *testing.T) {
	f := newFixture()
	item := f.createItem(t, "SKU-1", 100, 20)

	updated, err := f.inventory.AdjustStock(context.Background(), commands.AdjustStockCommand{
		ID:          item.ID,
		Quantity:    -90,
		Movement:    "outbound",
		Reason:      "scrap",
		PerformedBy: "op-1",
	})

	require.NoError(t, err)
	assert.Equal(t, 10, updated.Quantity)
	assert.Equal(t, domain.StateLowStock, updated.State)
	assert.Equal(t, []string{"InventoryItemCreated", "InventoryStateChanged", "StockAdjusted"}, f.publisher.EventTypes())

	movements, err := f.inventory.Movements(context.Background(), item.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, domain.MovementOutbound, movements[0].Type)
	assert.Equal(t, "op-1", movements[0].PerformedBy)
}

func TestInventoryService_AdjustStock_Rejections(t *testing.T) {
	f := newFixture()
	item := f.createItem(t, "SKU-1", 5, 0)
	ctx := context.Background()

	_, err := f.inventory.AdjustStock(ctx, commands.AdjustStockCommand{ID: item.ID, Quantity: -6})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.inventory.AdjustStock(ctx, commands.AdjustStockCommand{ID: item.ID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.inventory.AdjustStock(ctx, commands.AdjustStockCommand{ID: item.ID, Quantity: 1, Movement: "teleport"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestInventoryService_ReserveAndRelease(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item := f.createItem(t, "SKU-1", 100, 20)

	reserved, err := f.inventory.Reserve(ctx, commands.ReserveStockCommand{ID: item.ID, Quantity: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, reserved.Reserved)
	assert.Equal(t, domain.StateReserved, reserved.State)

	_, err = f.inventory.Reserve(ctx, commands.ReserveStockCommand{ID: item.ID, Quantity: 71})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.inventory.Release(ctx, commands.ReleaseStockCommand{ID: item.ID, Quantity: 31})
	assert.ErrorIs(t, err, domain.ErrInvalidReleaseQuantity)

	released, err := f.inventory.Release(ctx, commands.ReleaseStockCommand{ID: item.ID, Quantity: 30})
	require.NoError(t, err)
	assert.Equal(t, 0, released.Reserved)
	assert.Equal(t, domain.StateAvailable, released.State)
}

func TestInventoryService_Discontinue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item := f.createItem(t, "SKU-1", 100, 20)

	discontinued, err := f.inventory.Discontinue(ctx, commands.DiscontinueItemCommand{ID: item.ID, PerformedBy: "admin"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateDiscontinued, discontinued.State)

	adjusted, err := f.inventory.AdjustStock(ctx, commands.AdjustStockCommand{ID: item.ID, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.StateDiscontinued, adjusted.State)

	reserved, err := f.inventory.Reserve(ctx, commands.ReserveStockCommand{ID: item.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.StateDiscontinued, reserved.State)

	_, err = f.inventory.Reserve(ctx, commands.ReserveStockCommand{ID: item.ID, Quantity: 111})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, f.publisher.EventTypes(), "InventoryDiscontinued")
}

func TestInventoryService_Status_CachedAndInvalidated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	item := f.createItem(t, "SKU-1", 100, 20)

	snapshot, err := f.inventory.Status(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAvailable, snapshot.State)
	assert.NotEmpty(t, snapshot.Message)

	cached, found := f.statuses.Get(ctx, item.ID)
	require.True(t, found)
	assert.Equal(t, snapshot, cached)

	_, err = f.inventory.AdjustStock(ctx, commands.AdjustStockCommand{ID: item.ID, Quantity: -100})
	require.NoError(t, err)
	_, found = f.statuses.Get(ctx, item.ID)
	assert.False(t, found)

	snapshot, err = f.inventory.Status(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateOutOfStock, snapshot.State)
	assert.Equal(t, 0, snapshot.Available)
}

func TestInventoryService_List(t *testing.T) {
	f := newFixture()
	f.createItem(t, "SKU-1", 100, 20)
	f.createItem(t, "SKU-2", 5, 20)

	all, err := f.inventory.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	low, err := f.inventory.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "SKU-2", low[0].SKU)
}

func TestInventoryService_RetriesOnOptimisticLock(t *testing.T) {
	logger := zap.NewNop()
	repo := new(MockInventoryRepository)
	service := NewInventoryService(repo,
		cache.NewStatusCache(cache.NewInMemoryCache(), time.Minute, logger),
		events.NewEventPublisher(logger), logger, 20)

	item, err := domain.NewInventoryItem(domain.NewItemParams{SKU: "SKU-1", ProductName: "Bolt", Quantity: 50})
	require.NoError(t, err)
	fresh := func() *domain.InventoryItem { c := *item; return &c }

	repo.On("FindByID", mock.Anything, item.ID).Return(fresh(), nil).Once()
	repo.On("FindByID", mock.Anything, item.ID).Return(fresh(), nil).Once()
	repo.On("Save", mock.Anything, mock.Anything, item.Version).Return(domain.ErrOptimisticLock).Once()
	repo.On("Save", mock.Anything, mock.Anything, item.Version).Return(nil).Once()

	updated, err := service.Reserve(context.Background(), commands.ReserveStockCommand{ID: item.ID, Quantity: 5})

	require.NoError(t, err)
	assert.Equal(t, 5, updated.Reserved)
	repo.AssertExpectations(t)
}

func TestInventoryService_GivesUpAfterRepeatedConflicts(t *testing.T) {
	logger := zap.NewNop()
	repo := new(MockInventoryRepository)
	service := NewInventoryService(repo,
		cache.NewStatusCache(cache.NewInMemoryCache(), time.Minute, logger),
		events.NewEventPublisher(logger), logger, 20)

	item, err := domain.NewInventoryItem(domain.NewItemParams{SKU: "SKU-1", ProductName: "Bolt", Quantity: 50})
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, item.ID).Return(item, nil)
	repo.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrOptimisticLock)

	_, err = service.Reserve(context.Background(), commands.ReserveStockCommand{ID: item.ID, Quantity: 5})

	assert.ErrorIs(t, err, domain.ErrOptimisticLock)
	repo.AssertNumberOfCalls(t, "Save", saveAttempts)
}
