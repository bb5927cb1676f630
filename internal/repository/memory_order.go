package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
)

// InMemoryOrderRepository keeps orders in a map guarded by a mutex.
type InMemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.Order
}

func NewOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func cloneOrder(order *domain.Order) *domain.Order {
	c := *order
	c.Items = make([]domain.OrderItem, len(order.Items))
	copy(c.Items, order.Items)
	return &c
}

func (r *InMemoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.orders {
		if existing.OrderNumber == order.OrderNumber {
			return domain.ErrDuplicateOrderNumber
		}
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *InMemoryOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[id]
	if !exists {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *InMemoryOrderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.matches(order) {
			matched = append(matched, order)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	offset, limit := filter.window()
	total := len(matched)
	if offset >= total {
		return []*domain.Order{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := make([]*domain.Order, 0, end-offset)
	for _, order := range matched[offset:end] {
		page = append(page, cloneOrder(order))
	}
	return page, total, nil
}

func (r *InMemoryOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, approvedBy string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[id]
	if !exists {
		return nil, domain.ErrOrderNotFound
	}
	if order.Status != from {
		return nil, domain.ErrStatusConflict
	}
	order.Status = to
	if approvedBy != "" {
		order.ApprovedBy = approvedBy
	}
	order.UpdatedAt = time.Now().UTC()
	order.Version++
	return cloneOrder(order), nil
}
