package domain

import "fmt"

// InventoryState is the operational classification of a stock item
type InventoryState string

const (
	StateAvailable    InventoryState = "available"
	StateLowStock     InventoryState = "low_stock"
	StateOutOfStock   InventoryState = "out_of_stock"
	StateReserved     InventoryState = "reserved"
	StateDiscontinued InventoryState = "discontinued"
)

func (s InventoryState) String() string { return string(s) }

// StockLevels are the numbers an inventory state is derived from.
type StockLevels struct {
	Current      int
	Reserved     int
	ReorderPoint int
}

// NetAvailable is current minus reserved, floored at zero.
func (l StockLevels) NetAvailable() int {
	if l.Current-l.Reserved < 0 {
		return 0
	}
	return l.Current - l.Reserved
}

func (l StockLevels) validate() error {
	if l.Current < 0 {
		return invalidArgument("current stock must be >= 0, got %d", l.Current)
	}
	if l.Reserved < 0 {
		return invalidArgument("reserved stock must be >= 0, got %d", l.Reserved)
	}
	if l.ReorderPoint < 0 {
		return invalidArgument("reorder point must be >= 0, got %d", l.ReorderPoint)
	}
	return nil
}

// stateBehavior is the record of pure functions for one inventory state.
type stateBehavior struct {
	canReserve func(l StockLevels, quantity int) bool
	canFulfill func(l StockLevels, quantity int) bool
	message    func(l StockLevels) string
	actions    func(l StockLevels) []string
}

func grossCovers(l StockLevels, quantity int) bool { return l.Current >= quantity }

var stateBehaviors = map[InventoryState]stateBehavior{
	StateAvailable: {
		canReserve: grossCovers,
		canFulfill: grossCovers,
		message: func(l StockLevels) string {
			return fmt.Sprintf("In stock: %d units available", l.Current)
		},
		actions: func(l StockLevels) []string {
			if l.Current <= l.ReorderPoint {
				return []string{"Consider reordering - approaching low stock level"}
			}
			return []string{"Stock levels are healthy"}
		},
	},
	StateLowStock: {
		canReserve: grossCovers,
		canFulfill: grossCovers,
		message: func(l StockLevels) string {
			return fmt.Sprintf("Low stock warning: Only %d units remaining", l.Current)
		},
		actions: func(StockLevels) []string {
			return []string{
				"Immediate reorder required",
				"Contact supplier for expedited delivery",
				"Consider alternative suppliers",
			}
		},
	},
	StateOutOfStock: {
		canReserve: func(StockLevels, int) bool { return false },
		canFulfill: func(StockLevels, int) bool { return false },
		message:    func(StockLevels) string { return "Out of stock - no units available" },
		actions: func(StockLevels) []string {
			return []string{
				"Urgent reorder required",
				"Backorder customer requests",
				"Find alternative products",
				"Notify sales team of stock shortage",
			}
		},
	},
	// Only the reserved state nets out existing reservations before reserving more.
	StateReserved: {
		canReserve: func(l StockLevels, quantity int) bool { return l.Current-l.Reserved >= quantity },
		canFulfill: grossCovers,
		message: func(l StockLevels) string {
			return fmt.Sprintf("%d units reserved, %d units available", l.Reserved, l.Current-l.Reserved)
		},
		actions: func(l StockLevels) []string {
			actions := []string{"Monitor reserved stock levels"}
			if l.Current-l.Reserved <= 0 {
				actions = append(actions, "No additional reservations possible", "Consider increasing stock levels")
			}
			return actions
		},
	},
	StateDiscontinued: {
		canReserve: grossCovers,
		canFulfill: grossCovers,
		message: func(l StockLevels) string {
			return fmt.Sprintf("Discontinued product - %d units remaining (no restocking)", l.Current)
		},
		actions: func(StockLevels) []string {
			return []string{
				"Product discontinued - no reordering",
				"Sell remaining stock",
				"Suggest alternative products to customers",
				"Plan phase-out strategy",
			}
		},
	},
}

func behaviorFor(state InventoryState) (stateBehavior, error) {
	b, ok := stateBehaviors[state]
	if !ok {
		return stateBehavior{}, invalidArgument("unknown inventory state %q", state)
	}
	return b, nil
}

// DeriveState classifies stock levels. First match wins: empty stock,
// at or below reorder point, any reservation, otherwise available.
// Discontinued is never derived.
func DeriveState(l StockLevels) (InventoryState, error) {
	if err := l.validate(); err != nil {
		return "", err
	}
	switch {
	case l.Current == 0:
		return StateOutOfStock, nil
	case l.Current <= l.ReorderPoint:
		return StateLowStock, nil
	case l.Reserved > 0:
		return StateReserved, nil
	default:
		return StateAvailable, nil
	}
}

// CanReserve answers whether quantity more units may be reserved in state.
func CanReserve(state InventoryState, currentStock, reservedStock, quantity int) (bool, error) {
	b, err := behaviorFor(state)
	if err != nil {
		return false, err
	}
	l := StockLevels{Current: currentStock, Reserved: reservedStock}
	if err := l.validate(); err != nil {
		return false, err
	}
	if quantity < 0 {
		return false, invalidArgument("quantity must be >= 0, got %d", quantity)
	}
	return b.canReserve(l, quantity), nil
}

// CanFulfill answers whether quantity units can ship from gross stock in state.
func CanFulfill(state InventoryState, currentStock, quantity int) (bool, error) {
	b, err := behaviorFor(state)
	if err != nil {
		return false, err
	}
	l := StockLevels{Current: currentStock}
	if err := l.validate(); err != nil {
		return false, err
	}
	if quantity < 0 {
		return false, invalidArgument("quantity must be >= 0, got %d", quantity)
	}
	return b.canFulfill(l, quantity), nil
}

// StatusMessage is a human readable advisory for state.
func StatusMessage(state InventoryState, currentStock, reservedStock int) (string, error) {
	b, err := behaviorFor(state)
	if err != nil {
		return "", err
	}
	l := StockLevels{Current: currentStock, Reserved: reservedStock}
	if err := l.validate(); err != nil {
		return "", err
	}
	return b.message(l), nil
}

// RecommendedActions returns the ordered advisories for state. The reserved
// state needs the reservation count to warn when nothing is left to reserve.
func RecommendedActions(state InventoryState, l StockLevels) ([]string, error) {
	b, err := behaviorFor(state)
	if err != nil {
		return nil, err
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	return b.actions(l), nil
}
