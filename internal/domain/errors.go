package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrInsufficientStock      = &DomainError{Kind: KindInsufficientStock, Message: "insufficient stock available"}
	ErrInvalidReleaseQuantity = &DomainError{Kind: KindInvalidArgument, Message: "invalid release quantity"}
	ErrItemNotFound           = &DomainError{Kind: KindNotFound, Message: "item not found"}
	ErrOrderNotFound          = &DomainError{Kind: KindNotFound, Message: "order not found"}
	ErrInvalidTransition      = &DomainError{Kind: KindInvalidTransition, Message: "invalid status transition"}
	ErrUnknownStatus          = &DomainError{Kind: KindUnknownStatus, Message: "unknown order status"}
	ErrInvalidArgument        = &DomainError{Kind: KindInvalidArgument, Message: "invalid argument"}
	ErrOptimisticLock         = &DomainError{Kind: KindConflict, Message: "concurrent modification detected"}
	ErrStatusConflict         = &DomainError{Kind: KindConflict, Message: "order status changed concurrently"}
	ErrDuplicateSKU           = &DomainError{Kind: KindConflict, Message: "sku already exists"}
	ErrDuplicateOrderNumber   = &DomainError{Kind: KindConflict, Message: "order number already exists"}
)

// ErrorKind classifies domain errors so the transport layer can tell
// bad user input apart from an incomplete state machine.
type ErrorKind string

const (
	KindInvalidTransition ErrorKind = "InvalidTransition"
	KindUnknownStatus     ErrorKind = "UnknownStatus"
	KindInvalidArgument   ErrorKind = "InvalidArgument"
	KindInsufficientStock ErrorKind = "InsufficientStock"
	KindNotFound          ErrorKind = "NotFound"
	KindConflict          ErrorKind = "Conflict"
)

// DomainError represents a domain-level error
type DomainError struct {
	Kind    ErrorKind
	Message string
	Detail  string
}

func (e *DomainError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

// Is matches on kind and message so that detailed copies of a sentinel
// still satisfy errors.Is against the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func (e *DomainError) withDetail(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: e.Kind, Message: e.Message, Detail: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...interface{}) error {
	return ErrInvalidArgument.withDetail(format, args...)
}

func unknownStatus(status OrderStatus) error {
	return ErrUnknownStatus.withDetail("no transition rules registered for %q", status)
}

// TransitionError is returned when a requested status change is not in the
// whitelist of the current status.
type TransitionError struct {
	OrderID string
	Current OrderStatus
	Target  OrderStatus
	Allowed []OrderStatus
}

func (e *TransitionError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, string(s))
	}
	list := strings.Join(allowed, ", ")
	if list == "" {
		list = "none"
	}
	return fmt.Sprintf("cannot transition from %s to %s. Available transitions: %s", e.Current, e.Target, list)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// KindOf returns the kind of a domain error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var te *TransitionError
	if errors.As(err, &te) {
		return KindInvalidTransition
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
