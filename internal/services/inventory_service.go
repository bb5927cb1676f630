package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/cache"
	"github.com/TanakaNakamura/factory-erp-api/internal/commands"
	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
	"github.com/TanakaNakamura/factory-erp-api/internal/events"
	"github.com/TanakaNakamura/factory-erp-api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService handles stock levels, reservations and status snapshots
type InventoryService struct {
	repo                repository.InventoryRepository
	statuses            *cache.StatusCache
	publisher           events.EventPublisher
	logger              *zap.Logger
	defaultReorderPoint int
}

func NewInventoryService(
	repo repository.InventoryRepository,
	statuses *cache.StatusCache,
	publisher events.EventPublisher,
	logger *zap.Logger,
	defaultReorderPoint int,
) *InventoryService {
	return &InventoryService{
		repo:                repo,
		statuses:            statuses,
		publisher:           publisher,
		logger:              logger,
		defaultReorderPoint: defaultReorderPoint,
	}
}

func (s *InventoryService) Create(ctx context.Context, cmd commands.CreateItemCommand) (*domain.InventoryItem, error) {
	reorderPoint := s.defaultReorderPoint
	if cmd.ReorderPoint != nil {
		reorderPoint = *cmd.ReorderPoint
	}

	item, err := domain.NewInventoryItem(domain.NewItemParams{
		SKU:          cmd.SKU,
		ProductName:  cmd.ProductName,
		Warehouse:    cmd.Warehouse,
		Quantity:     cmd.Quantity,
		Reserved:     cmd.Reserved,
		ReorderPoint: reorderPoint,
		MinimumStock: cmd.MinimumStock,
		MaximumStock: cmd.MaximumStock,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Inventory item created",
		zap.String("item_id", item.ID.String()),
		zap.String("sku", item.SKU),
		zap.String("state", string(item.State)),
	)
	publish(ctx, s.publisher, s.logger, events.InventoryItemCreatedEvent{
		ItemID:      item.ID,
		SKU:         item.SKU,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		State:       item.State,
		OccurredAt:  time.Now().UTC(),
	})
	return item, nil
}

func (s *InventoryService) Get(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *InventoryService) List(ctx context.Context, lowStockOnly bool) ([]*domain.InventoryItem, error) {
	return s.repo.List(ctx, lowStockOnly)
}

func (s *InventoryService) Movements(ctx context.Context, id uuid.UUID) ([]domain.StockMovement, error) {
	return s.repo.Movements(ctx, id)
}

// Status returns the advisory snapshot of an item, served from cache when fresh
func (s *InventoryService) Status(ctx context.Context, id uuid.UUID) (domain.StatusSnapshot, error) {
	if snapshot, ok := s.statuses.Get(ctx, id); ok {
		return snapshot, nil
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}
	snapshot, err := item.Snapshot()
	if err != nil {
		return domain.StatusSnapshot{}, err
	}
	s.statuses.Put(ctx, snapshot)
	return snapshot, nil
}

func (s *InventoryService) AdjustStock(ctx context.Context, cmd commands.AdjustStockCommand) (*domain.InventoryItem, error) {
	if cmd.Quantity == 0 {
		return nil, fmt.Errorf("adjustment quantity must not be zero: %w", domain.ErrInvalidArgument)
	}
	movement, err := domain.ParseMovementType(cmd.Movement)
	if err != nil {
		return nil, err
	}

	item, err := s.mutate(ctx, cmd.ID, func(item *domain.InventoryItem) error {
		return item.AdjustStock(cmd.Quantity, movement, cmd.Reason, cmd.Reference, cmd.PerformedBy)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, events.StockAdjustedEvent{
		ItemID:     item.ID,
		SKU:        item.SKU,
		Quantity:   cmd.Quantity,
		NewTotal:   item.Quantity,
		Movement:   movement,
		Reason:     cmd.Reason,
		OccurredAt: time.Now().UTC(),
	})
	return item, nil
}

func (s *InventoryService) Reserve(ctx context.Context, cmd commands.ReserveStockCommand) (*domain.InventoryItem, error) {
	item, err := s.mutate(ctx, cmd.ID, func(item *domain.InventoryItem) error {
		return item.ReserveStock(cmd.Quantity)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, events.StockReservedEvent{
		ItemID:     item.ID,
		SKU:        item.SKU,
		Quantity:   cmd.Quantity,
		Reserved:   item.Reserved,
		Available:  item.AvailableQuantity(),
		OccurredAt: time.Now().UTC(),
	})
	return item, nil
}

func (s *InventoryService) Release(ctx context.Context, cmd commands.ReleaseStockCommand) (*domain.InventoryItem, error) {
	item, err := s.mutate(ctx, cmd.ID, func(item *domain.InventoryItem) error {
		return item.ReleaseStock(cmd.Quantity)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, s.logger, events.StockReleasedEvent{
		ItemID:     item.ID,
		SKU:        item.SKU,
		Quantity:   cmd.Quantity,
		Reserved:   item.Reserved,
		Available:  item.AvailableQuantity(),
		OccurredAt: time.Now().UTC(),
	})
	return item, nil
}

func (s *InventoryService) Discontinue(ctx context.Context, cmd commands.DiscontinueItemCommand) (*domain.InventoryItem, error) {
	item, err := s.mutate(ctx, cmd.ID, func(item *domain.InventoryItem) error {
		item.MarkDiscontinued()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Inventory item discontinued",
		zap.String("item_id", item.ID.String()),
		zap.String("sku", item.SKU),
		zap.String("performed_by", cmd.PerformedBy),
	)
	publish(ctx, s.publisher, s.logger, events.InventoryDiscontinuedEvent{
		ItemID:     item.ID,
		SKU:        item.SKU,
		OccurredAt: time.Now().UTC(),
	})
	return item, nil
}

// mutate loads the item, applies change and saves it with a version check,
// reloading and retrying when another writer got there first.
func (s *InventoryService) mutate(ctx context.Context, id uuid.UUID, change func(item *domain.InventoryItem) error) (*domain.InventoryItem, error) {
	var lastErr error
	for attempt := 0; attempt < saveAttempts; attempt++ {
		item, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		before := item.State
		expected := item.Version

		if err := change(item); err != nil {
			return nil, err
		}

		err = s.repo.Save(ctx, item, expected)
		if err == nil {
			s.afterStockChange(ctx, item, before)
			return item, nil
		}
		if !errors.Is(err, domain.ErrOptimisticLock) {
			return nil, err
		}
		lastErr = err
		s.logger.Debug("Optimistic lock conflict, retrying",
			zap.String("item_id", id.String()),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, lastErr
}

// afterStockChange drops the cached snapshot and announces a state change
func (s *InventoryService) afterStockChange(ctx context.Context, item *domain.InventoryItem, before domain.InventoryState) {
	s.statuses.Invalidate(ctx, item.ID)
	if item.State == before {
		return
	}
	s.logger.Info("Inventory state changed",
		zap.String("item_id", item.ID.String()),
		zap.String("sku", item.SKU),
		zap.String("from", string(before)),
		zap.String("to", string(item.State)),
	)
	publish(ctx, s.publisher, s.logger, events.InventoryStateChangedEvent{
		ItemID:     item.ID,
		SKU:        item.SKU,
		From:       before,
		To:         item.State,
		OccurredAt: time.Now().UTC(),
	})
}

// GetBySKU looks an item up by its SKU, case-insensitively
func (s *InventoryService) GetBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	return s.repo.FindBySKU(ctx, strings.ToUpper(strings.TrimSpace(sku)))
}
