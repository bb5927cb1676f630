package repository

import (
	"context"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
)

// OrderFilter narrows order listings. Zero values match everything.
type OrderFilter struct {
	Status domain.OrderStatus
	Type   domain.OrderType
	Page   int
	Limit  int
}

func (f OrderFilter) matches(o *domain.Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Type != "" && o.Type != f.Type {
		return false
	}
	return true
}

// Normalize applies the paging defaults: page 1, 20 per page, at most 100
func (f OrderFilter) Normalize() OrderFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

// window returns offset and limit of the normalized filter
func (f OrderFilter) window() (int, int) {
	n := f.Normalize()
	return (n.Page - 1) * n.Limit, n.Limit
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create inserts a new order with its lines. A taken order number
	// yields domain.ErrDuplicateOrderNumber.
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// List returns one page of orders, newest first, and the total match count.
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
	// UpdateStatus moves the order from -> to only if its stored status is
	// still from. Losing that race yields domain.ErrStatusConflict.
	// approvedBy is recorded when non-empty.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, approvedBy string) (*domain.Order, error)
}
