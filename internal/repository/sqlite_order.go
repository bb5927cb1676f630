package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"

	"github.com/google/uuid"
)

const orderColumns = `id, order_number, type, priority, customer_id, supplier_id, status,
	notes, created_by, approved_by, version, created_at, updated_at`

// SQLiteOrderRepository persists orders and their lines
type SQLiteOrderRepository struct {
	swdb *SingleWriterDB
}

func NewSQLiteOrderRepository(swdb *SingleWriterDB) *SQLiteOrderRepository {
	return &SQLiteOrderRepository{swdb: swdb}
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order                      domain.Order
		id, kind, priority, status string
		createdAt, updatedAt       string
	)
	err := row.Scan(&id, &order.OrderNumber, &kind, &priority, &order.CustomerID, &order.SupplierID,
		&status, &order.Notes, &order.CreatedBy, &order.ApprovedBy, &order.Version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("corrupt order id %q: %w", id, err)
	}
	order.ID = parsed
	order.Type = domain.OrderType(kind)
	order.Priority = domain.OrderPriority(priority)
	order.Status = domain.OrderStatus(status)
	order.CreatedAt = parseTime(createdAt)
	order.UpdatedAt = parseTime(updatedAt)
	return &order, nil
}

func (r *SQLiteOrderRepository) loadItems(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}, order *domain.Order) error {
	rows, err := q.QueryContext(ctx, `
		SELECT item_id, quantity, unit_price FROM order_items
		WHERE order_id = ? ORDER BY line_no`, order.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	order.Items = make([]domain.OrderItem, 0)
	for rows.Next() {
		var (
			line   domain.OrderItem
			itemID string
		)
		if err := rows.Scan(&itemID, &line.Quantity, &line.UnitPrice); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		line.ItemID, _ = uuid.Parse(itemID)
		order.Items = append(order.Items, line)
	}
	return rows.Err()
}

func (r *SQLiteOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.swdb.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID.String(), order.OrderNumber, string(order.Type), string(order.Priority),
			order.CustomerID, order.SupplierID, string(order.Status), order.Notes,
			order.CreatedBy, order.ApprovedBy, order.Version,
			formatTime(order.CreatedAt), formatTime(order.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateOrderNumber
			}
			return fmt.Errorf("failed to create order: %w", err)
		}
		for i, line := range order.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, line_no, item_id, quantity, unit_price)
				VALUES (?, ?, ?, ?, ?)`,
				order.ID.String(), i+1, line.ItemID.String(), line.Quantity, line.UnitPrice,
			)
			if err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.swdb.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id.String()))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, r.swdb.db, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *SQLiteOrderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.swdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset, limit := filter.window()
	rows, err := r.swdb.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate orders: %w", err)
	}

	// Lines are loaded after the cursor is closed; the pool has one connection.
	for _, order := range orders {
		if err := r.loadItems(ctx, r.swdb.db, order); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

func (r *SQLiteOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, approvedBy string) (*domain.Order, error) {
	err := r.swdb.write(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = ?,
			    approved_by = CASE WHEN ? <> '' THEN ? ELSE approved_by END,
			    version = version + 1,
			    updated_at = ?
			WHERE id = ? AND status = ?`,
			string(to), approvedBy, approvedBy, formatTime(time.Now()), id.String(), string(from),
		)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE id = ?`, id.String()).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to check order: %w", err)
			}
			if exists == 0 {
				return domain.ErrOrderNotFound
			}
			return domain.ErrStatusConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
