package domain

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// OrderStatus is the lifecycle stage of an order
type OrderStatus string

const (
	StatusDraft      OrderStatus = "draft"
	StatusPending    OrderStatus = "pending"
	StatusApproved   OrderStatus = "approved"
	StatusInProgress OrderStatus = "in_progress"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// AllOrderStatuses lists every member of the enumeration in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	StatusDraft, StatusPending, StatusApproved, StatusInProgress,
	StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled,
}

func (s OrderStatus) String() string { return string(s) }

// IsValid reports whether s is a member of the enumeration.
func (s OrderStatus) IsValid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no outbound transition exists from s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ParseOrderStatus converts user input into an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.IsValid() {
		return "", invalidArgument("unknown order status %q", s)
	}
	return status, nil
}

// StatusChange describes a committed order status transition.
type StatusChange struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
	Note    string
}

// TransitionHook observes approved transitions. Its error never blocks the change.
type TransitionHook func(ctx context.Context, change StatusChange) error

// statusRule is the behaviour record for one source status.
type statusRule struct {
	targets []OrderStatus
	notes   map[OrderStatus]string
}

// draft and completed are deliberately absent: they have no rules.
var statusRules = map[OrderStatus]statusRule{
	StatusPending: {
		targets: []OrderStatus{StatusApproved, StatusCancelled},
		notes:   map[OrderStatus]string{StatusApproved: "approved - inventory reservation may be needed"},
	},
	StatusApproved: {
		targets: []OrderStatus{StatusInProgress, StatusCancelled},
		notes:   map[OrderStatus]string{StatusInProgress: "is now being processed"},
	},
	StatusInProgress: {
		targets: []OrderStatus{StatusShipped, StatusCancelled},
		notes:   map[OrderStatus]string{StatusShipped: "has been shipped"},
	},
	StatusShipped: {
		targets: []OrderStatus{StatusDelivered},
		notes:   map[OrderStatus]string{StatusDelivered: "has been delivered - completing order lifecycle"},
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// StatusEngine decides order status transitions. It holds no mutable state
// and is safe for concurrent use.
type StatusEngine struct {
	hook   TransitionHook
	logger *zap.Logger
}

// NewStatusEngine creates a status engine. hook may be nil.
func NewStatusEngine(hook TransitionHook, logger *zap.Logger) *StatusEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusEngine{hook: hook, logger: logger}
}

func lookupRule(current OrderStatus) (statusRule, error) {
	rule, ok := statusRules[current]
	if !ok {
		return statusRule{}, unknownStatus(current)
	}
	return rule, nil
}

// CanTransition reports whether target is whitelisted for current.
func (e *StatusEngine) CanTransition(current, target OrderStatus) (bool, error) {
	rule, err := lookupRule(current)
	if err != nil {
		return false, err
	}
	for _, t := range rule.targets {
		if t == target {
			return true, nil
		}
	}
	return false, nil
}

// AvailableTransitions returns a copy of the whitelist for current.
func (e *StatusEngine) AvailableTransitions(current OrderStatus) ([]OrderStatus, error) {
	rule, err := lookupRule(current)
	if err != nil {
		return nil, err
	}
	out := make([]OrderStatus, len(rule.targets))
	copy(out, rule.targets)
	return out, nil
}

// ApplyTransition validates the change and runs the hook. The caller
// persists target only when this returns nil.
func (e *StatusEngine) ApplyTransition(ctx context.Context, orderID string, current, target OrderStatus) error {
	rule, err := lookupRule(current)
	if err != nil {
		return err
	}

	ok, _ := e.CanTransition(current, target)
	if !ok {
		allowed, _ := e.AvailableTransitions(current)
		return &TransitionError{OrderID: orderID, Current: current, Target: target, Allowed: allowed}
	}

	change := StatusChange{OrderID: orderID, From: current, To: target, Note: rule.notes[target]}
	e.logger.Debug("Order status transition approved",
		zap.String("order_id", orderID),
		zap.String("from", string(current)),
		zap.String("to", string(target)),
	)

	if e.hook != nil {
		if err := e.runHook(ctx, change); err != nil {
			e.logger.Warn("Transition hook failed",
				zap.String("order_id", orderID),
				zap.String("from", string(current)),
				zap.String("to", string(target)),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (e *StatusEngine) runHook(ctx context.Context, change StatusChange) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transition hook panicked: %v", r)
		}
	}()
	return e.hook(ctx, change)
}
