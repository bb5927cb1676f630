package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
)

// InMemoryInventoryRepository keeps items in a map guarded by a mutex.
// Items are copied in and out so callers never share stored state.
type InMemoryInventoryRepository struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*domain.InventoryItem
	movements map[uuid.UUID][]domain.StockMovement
}

func NewInventoryRepository() *InMemoryInventoryRepository {
	return &InMemoryInventoryRepository{
		items:     make(map[uuid.UUID]*domain.InventoryItem),
		movements: make(map[uuid.UUID][]domain.StockMovement),
	}
}

func cloneItem(item *domain.InventoryItem) *domain.InventoryItem {
	c := *item
	return &c
}

func (r *InMemoryInventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.SKU == item.SKU {
			return domain.ErrDuplicateSKU
		}
	}
	r.movements[item.ID] = append(r.movements[item.ID], item.TakeMovements()...)
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *InMemoryInventoryRepository) Save(ctx context.Context, item *domain.InventoryItem, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.items[item.ID]
	if !exists {
		return domain.ErrItemNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrOptimisticLock
	}
	r.movements[item.ID] = append(r.movements[item.ID], item.TakeMovements()...)
	r.items[item.ID] = cloneItem(item)
	return nil
}

func (r *InMemoryInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.items[id]
	if !exists {
		return nil, domain.ErrItemNotFound
	}
	return cloneItem(item), nil
}

func (r *InMemoryInventoryRepository) FindBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range r.items {
		if item.SKU == sku {
			return cloneItem(item), nil
		}
	}
	return nil, domain.ErrItemNotFound
}

func (r *InMemoryInventoryRepository) List(ctx context.Context, lowStockOnly bool) ([]*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]*domain.InventoryItem, 0, len(r.items))
	for _, item := range r.items {
		if lowStockOnly && !isLowStock(item) {
			continue
		}
		items = append(items, cloneItem(item))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].SKU < items[j].SKU })
	return items, nil
}

func (r *InMemoryInventoryRepository) Movements(ctx context.Context, id uuid.UUID) ([]domain.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return nil, domain.ErrItemNotFound
	}
	log := r.movements[id]
	out := make([]domain.StockMovement, len(log))
	for i := range log {
		out[len(log)-1-i] = log[i]
	}
	return out, nil
}

func (r *InMemoryInventoryRepository) DecrementIfAvailable(ctx context.Context, id uuid.UUID, quantity int, reference, performedBy string) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.items[id]
	if !exists {
		return nil, domain.ErrItemNotFound
	}
	item := cloneItem(stored)
	if err := item.Dispatch(quantity, reference, performedBy); err != nil {
		return nil, err
	}
	r.movements[id] = append(r.movements[id], item.TakeMovements()...)
	r.items[id] = item
	return cloneItem(item), nil
}

func (r *InMemoryInventoryRepository) Increment(ctx context.Context, id uuid.UUID, quantity int, movement domain.MovementType, reason, reference, performedBy string) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.items[id]
	if !exists {
		return nil, domain.ErrItemNotFound
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	item := cloneItem(stored)
	if err := item.AdjustStock(quantity, movement, reason, reference, performedBy); err != nil {
		return nil, err
	}
	r.movements[id] = append(r.movements[id], item.TakeMovements()...)
	r.items[id] = item
	return cloneItem(item), nil
}
