package services

import (
	"context"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInventoryRepository is a mock implementation of InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) Save(ctx context.Context, item *domain.InventoryItem, expectedVersion int) error {
	args := m.Called(ctx, item, expectedVersion)
	return args.Error(0)
}

func (m *MockInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) FindBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) List(ctx context.Context, lowStockOnly bool) ([]*domain.InventoryItem, error) {
	args := m.Called(ctx, lowStockOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Movements(ctx context.Context, id uuid.UUID) ([]domain.StockMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockInventoryRepository) DecrementIfAvailable(ctx context.Context, id uuid.UUID, quantity int, reference, performedBy string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, id, quantity, reference, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) Increment(ctx context.Context, id uuid.UUID, quantity int, movement domain.MovementType, reason, reference, performedBy string) (*domain.InventoryItem, error) {
	args := m.Called(ctx, id, quantity, movement, reason, reference, performedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryItem), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
