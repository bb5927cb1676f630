package repository

import (
	"context"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
)

// InventoryRepository defines the interface for inventory persistence
type InventoryRepository interface {
	// Create inserts a new item. A taken SKU yields domain.ErrDuplicateSKU.
	Create(ctx context.Context, item *domain.InventoryItem) error
	// Save persists a mutated item if the stored version still equals
	// expectedVersion, and appends the item's pending movements.
	Save(ctx context.Context, item *domain.InventoryItem, expectedVersion int) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error)
	FindBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error)
	// List returns all items ordered by SKU; lowStockOnly keeps items at
	// or below their reorder point.
	List(ctx context.Context, lowStockOnly bool) ([]*domain.InventoryItem, error)
	// Movements returns the stock ledger of an item, newest first.
	Movements(ctx context.Context, id uuid.UUID) ([]domain.StockMovement, error)
	// DecrementIfAvailable atomically checks fulfilment against the stored
	// stock and removes quantity units. It fails with
	// domain.ErrInsufficientStock without changing anything.
	DecrementIfAvailable(ctx context.Context, id uuid.UUID, quantity int, reference, performedBy string) (*domain.InventoryItem, error)
	// Increment atomically adds quantity units back, used to compensate
	// a decrement.
	Increment(ctx context.Context, id uuid.UUID, quantity int, movement domain.MovementType, reason, reference, performedBy string) (*domain.InventoryItem, error)
}

func isLowStock(item *domain.InventoryItem) bool {
	return item.Quantity <= item.ReorderPoint
}
