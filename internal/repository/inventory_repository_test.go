package repository

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *SingleWriterDB {
	t.Helper()
	swdb, err := OpenSQLite(filepath.Join(t.TempDir(), "erp.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { swdb.Close() })
	return swdb
}

func inventoryRepositories(t *testing.T) map[string]InventoryRepository {
	return map[string]InventoryRepository{
		"memory": NewInventoryRepository(),
		"sqlite": NewSQLiteInventoryRepository(openTestDB(t)),
	}
}

func newTestItem(t *testing.T, sku string, quantity, reorderPoint int) *domain.InventoryItem {
	t.Helper()
	item, err := domain.NewInventoryItem(domain.NewItemParams{
		SKU:          sku,
		ProductName:  "Steel bracket",
		Warehouse:    "WH-1",
		Quantity:     quantity,
		ReorderPoint: reorderPoint,
	})
	require.NoError(t, err)
	return item
}

func TestInventoryRepository_CreateAndFind(t *testing.T) {
	for name, repo := range inventoryRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item := newTestItem(t, "SKU-001", 100, 20)

			require.NoError(t, repo.Create(ctx, item))

			byID, err := repo.FindByID(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, item.SKU, byID.SKU)
			assert.Equal(t, 100, byID.Quantity)
			assert.Equal(t, domain.StateAvailable, byID.State)
			assert.Equal(t, 1, byID.Version)

			bySKU, err := repo.FindBySKU(ctx, "SKU-001")
			require.NoError(t, err)
			assert.Equal(t, item.ID, bySKU.ID)

			err = repo.Create(ctx, newTestItem(t, "SKU-001", 1, 0))
			assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

			_, err = repo.FindBySKU(ctx, "SKU-404")
			assert.ErrorIs(t, err, domain.ErrItemNotFound)
		})
	}
}

func TestInventoryRepository_SaveChecksVersion(t *testing.T) {
	for name, repo := range inventoryRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item := newTestItem(t, "SKU-002", 50, 10)
			require.NoError(t, repo.Create(ctx, item))

			first, err := repo.FindByID(ctx, item.ID)
			require.NoError(t, err)
			second, err := repo.FindByID(ctx, item.ID)
			require.NoError(t, err)

			expected := first.Version
			require.NoError(t, first.AdjustStock(-45, domain.MovementOutbound, "scrap", "REF-1", "alice"))
			require.NoError(t, repo.Save(ctx, first, expected))

			expected = second.Version
			require.NoError(t, second.AdjustStock(5, domain.MovementInbound, "receipt", "REF-2", "bob"))
			err = repo.Save(ctx, second, expected)
			assert.ErrorIs(t, err, domain.ErrOptimisticLock)

			stored, err := repo.FindByID(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, 5, stored.Quantity)
			assert.Equal(t, domain.StateLowStock, stored.State)

			movements, err := repo.Movements(ctx, item.ID)
			require.NoError(t, err)
			require.Len(t, movements, 1)
			assert.Equal(t, -45, movements[0].Quantity)
			assert.Equal(t, "REF-1", movements[0].Reference)
		})
	}
}

func TestInventoryRepository_ListLowStock(t *testing.T) {
	for name, repo := range inventoryRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, newTestItem(t, "SKU-B", 5, 20)))
			require.NoError(t, repo.Create(ctx, newTestItem(t, "SKU-A", 100, 20)))
			require.NoError(t, repo.Create(ctx, newTestItem(t, "SKU-C", 20, 20)))

			all, err := repo.List(ctx, false)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "SKU-A", all[0].SKU)

			low, err := repo.List(ctx, true)
			require.NoError(t, err)
			require.Len(t, low, 2)
			assert.Equal(t, "SKU-B", low[0].SKU)
			assert.Equal(t, "SKU-C", low[1].SKU)
		})
	}
}

func TestInventoryRepository_DecrementAndIncrement(t *testing.T) {
	for name, repo := range inventoryRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item := newTestItem(t, "SKU-003", 10, 2)
			require.NoError(t, repo.Create(ctx, item))

			updated, err := repo.DecrementIfAvailable(ctx, item.ID, 8, "ORD-1", "alice")
			require.NoError(t, err)
			assert.Equal(t, 2, updated.Quantity)
			assert.Equal(t, domain.StateLowStock, updated.State)

			_, err = repo.DecrementIfAvailable(ctx, item.ID, 3, "ORD-2", "alice")
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)

			restored, err := repo.Increment(ctx, item.ID, 8, domain.MovementReturn, "compensation", "ORD-1", "alice")
			require.NoError(t, err)
			assert.Equal(t, 10, restored.Quantity)
			assert.Equal(t, domain.StateAvailable, restored.State)

			movements, err := repo.Movements(ctx, item.ID)
			require.NoError(t, err)
			require.Len(t, movements, 2)
			assert.Equal(t, domain.MovementReturn, movements[0].Type)
			assert.Equal(t, domain.MovementOutbound, movements[1].Type)
			assert.Equal(t, -8, movements[1].Quantity)

			_, err = repo.DecrementIfAvailable(ctx, uuid.New(), 1, "ORD-3", "alice")
			assert.ErrorIs(t, err, domain.ErrItemNotFound)
		})
	}
}

func TestInventoryRepository_DecrementKeepsDiscontinuedSticky(t *testing.T) {
	for name, repo := range inventoryRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item := newTestItem(t, "SKU-004", 100, 10)
			item.MarkDiscontinued()
			require.NoError(t, repo.Create(ctx, item))

			updated, err := repo.DecrementIfAvailable(ctx, item.ID, 95, "ORD-1", "alice")
			require.NoError(t, err)
			assert.Equal(t, 5, updated.Quantity)
			assert.Equal(t, domain.StateDiscontinued, updated.State)

			stored, err := repo.FindByID(ctx, item.ID)
			require.NoError(t, err)
			assert.True(t, stored.Discontinued)
			assert.Equal(t, domain.StateDiscontinued, stored.State)

			_, err = repo.DecrementIfAvailable(ctx, item.ID, 6, "ORD-2", "alice")
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		})
	}
}

func TestInventoryRepository_ConcurrentDecrementNeverOversells(t *testing.T) {
	for name, repo := range inventoryRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			item := newTestItem(t, "SKU-005", 10, 0)
			require.NoError(t, repo.Create(ctx, item))

			var (
				wg        sync.WaitGroup
				succeeded int32
			)
			for i := 0; i < 25; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := repo.DecrementIfAvailable(ctx, item.ID, 1, "ORD", "worker"); err == nil {
						atomic.AddInt32(&succeeded, 1)
					}
				}()
			}
			wg.Wait()

			stored, err := repo.FindByID(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, int32(10), succeeded)
			assert.Equal(t, 0, stored.Quantity)
			assert.Equal(t, domain.StateOutOfStock, stored.State)
		})
	}
}
