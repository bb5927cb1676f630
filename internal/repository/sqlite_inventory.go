package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
)

const itemColumns = `id, sku, product_name, warehouse, quantity, reserved, reorder_point,
	minimum_stock, maximum_stock, discontinued, state, version, created_at, updated_at`

// SQLiteInventoryRepository persists inventory items and their stock ledger
type SQLiteInventoryRepository struct {
	swdb *SingleWriterDB
}

func NewSQLiteInventoryRepository(swdb *SingleWriterDB) *SQLiteInventoryRepository {
	return &SQLiteInventoryRepository{swdb: swdb}
}

func scanItem(row rowScanner) (*domain.InventoryItem, error) {
	var (
		item                 domain.InventoryItem
		id, state            string
		discontinued         int
		createdAt, updatedAt string
	)
	err := row.Scan(&id, &item.SKU, &item.ProductName, &item.Warehouse,
		&item.Quantity, &item.Reserved, &item.ReorderPoint,
		&item.MinimumStock, &item.MaximumStock, &discontinued, &state,
		&item.Version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt item id %q: %w", id, err)
	}
	item.ID = parsed
	item.Discontinued = discontinued == 1
	item.State = domain.InventoryState(state)
	item.CreatedAt = parseTime(createdAt)
	item.UpdatedAt = parseTime(updatedAt)
	return &item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func insertMovements(ctx context.Context, tx *sql.Tx, movements []domain.StockMovement) error {
	for _, m := range movements {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stock_movements (id, item_id, type, quantity, reference, reason, performed_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID.String(), m.ItemID.String(), string(m.Type), m.Quantity,
			m.Reference, m.Reason, m.PerformedBy, formatTime(m.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("failed to record movement: %w", err)
		}
	}
	return nil
}

// updateItem writes every mutable column if the stored version matches.
func updateItem(ctx context.Context, tx *sql.Tx, item *domain.InventoryItem, expectedVersion int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE inventory_items
		SET product_name = ?, warehouse = ?, quantity = ?, reserved = ?, reorder_point = ?,
		    minimum_stock = ?, maximum_stock = ?, discontinued = ?, state = ?,
		    version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		item.ProductName, item.Warehouse, item.Quantity, item.Reserved, item.ReorderPoint,
		item.MinimumStock, item.MaximumStock, boolToInt(item.Discontinued), string(item.State),
		item.Version, formatTime(item.UpdatedAt),
		item.ID.String(), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrOptimisticLock
	}
	return nil
}

func (r *SQLiteInventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	return r.swdb.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_items (`+itemColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID.String(), item.SKU, item.ProductName, item.Warehouse,
			item.Quantity, item.Reserved, item.ReorderPoint,
			item.MinimumStock, item.MaximumStock, boolToInt(item.Discontinued), string(item.State),
			item.Version, formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateSKU
			}
			return fmt.Errorf("failed to create item: %w", err)
		}
		return insertMovements(ctx, tx, item.TakeMovements())
	})
}

func (r *SQLiteInventoryRepository) Save(ctx context.Context, item *domain.InventoryItem, expectedVersion int) error {
	return r.swdb.write(ctx, func(tx *sql.Tx) error {
		if err := updateItem(ctx, tx, item, expectedVersion); err != nil {
			if errors.Is(err, domain.ErrOptimisticLock) {
				if _, findErr := findItem(ctx, tx, item.ID); errors.Is(findErr, domain.ErrItemNotFound) {
					return domain.ErrItemNotFound
				}
			}
			return err
		}
		return insertMovements(ctx, tx, item.TakeMovements())
	})
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func findItem(ctx context.Context, q queryRower, id uuid.UUID) (*domain.InventoryItem, error) {
	return scanItem(q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = ?`, id.String()))
}

func (r *SQLiteInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	return findItem(ctx, r.swdb.db, id)
}

func (r *SQLiteInventoryRepository) FindBySKU(ctx context.Context, sku string) (*domain.InventoryItem, error) {
	return scanItem(r.swdb.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE sku = ?`, sku))
}

func (r *SQLiteInventoryRepository) List(ctx context.Context, lowStockOnly bool) ([]*domain.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items`
	if lowStockOnly {
		query += ` WHERE quantity <= reorder_point`
	}
	query += ` ORDER BY sku`

	rows, err := r.swdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.InventoryItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (r *SQLiteInventoryRepository) Movements(ctx context.Context, id uuid.UUID) ([]domain.StockMovement, error) {
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}

	rows, err := r.swdb.db.QueryContext(ctx, `
		SELECT id, item_id, type, quantity, reference, reason, performed_by, created_at
		FROM stock_movements
		WHERE item_id = ?
		ORDER BY created_at DESC, rowid DESC`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0)
	for rows.Next() {
		var (
			m                        domain.StockMovement
			movementID, itemID, kind string
			createdAt                string
		)
		if err := rows.Scan(&movementID, &itemID, &kind, &m.Quantity, &m.Reference, &m.Reason, &m.PerformedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		m.ID, _ = uuid.Parse(movementID)
		m.ItemID, _ = uuid.Parse(itemID)
		m.Type = domain.MovementType(kind)
		m.Timestamp = parseTime(createdAt)
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}
	return movements, nil
}

// mutate loads the item inside the writer transaction, applies change and
// writes it back. Holding the writer lock makes the read-check-write atomic.
func (r *SQLiteInventoryRepository) mutate(ctx context.Context, id uuid.UUID, change func(item *domain.InventoryItem) error) (*domain.InventoryItem, error) {
	var result *domain.InventoryItem
	err := r.swdb.write(ctx, func(tx *sql.Tx) error {
		item, err := findItem(ctx, tx, id)
		if err != nil {
			return err
		}
		expected := item.Version
		if err := change(item); err != nil {
			return err
		}
		if err := updateItem(ctx, tx, item, expected); err != nil {
			return err
		}
		if err := insertMovements(ctx, tx, item.TakeMovements()); err != nil {
			return err
		}
		result = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteInventoryRepository) DecrementIfAvailable(ctx context.Context, id uuid.UUID, quantity int, reference, performedBy string) (*domain.InventoryItem, error) {
	return r.mutate(ctx, id, func(item *domain.InventoryItem) error {
		return item.Dispatch(quantity, reference, performedBy)
	})
}

func (r *SQLiteInventoryRepository) Increment(ctx context.Context, id uuid.UUID, quantity int, movement domain.MovementType, reason, reference, performedBy string) (*domain.InventoryItem, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return r.mutate(ctx, id, func(item *domain.InventoryItem) error {
		return item.AdjustStock(quantity, movement, reason, reference, performedBy)
	})
}
