package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/TanakaNakamura/factory-erp-api/internal/domain"
)

// StandardError represents a standardized error response
type StandardError struct {
	Code    string `json:"error"`   // Error code/type (e.g., "InvalidTransition", "ItemNotFound")
	Message string `json:"message"` // Human-readable error message
	Details string `json:"details"` // Additional details (field name, allowed transitions, etc.)
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case "InvalidRequest", "ValidationError", "InvalidArgument", "InvalidTransition":
		return http.StatusBadRequest
	case "InsufficientStock", "InvalidOperation":
		return http.StatusBadRequest
	case "Unauthorized":
		return http.StatusUnauthorized
	case "Forbidden":
		return http.StatusForbidden
	case "ItemNotFound", "OrderNotFound", "ResourceNotFound":
		return http.StatusNotFound
	case "DuplicateSKU", "Conflict":
		return http.StatusConflict
	case "BrokerConnectionError", "ServiceUnavailable":
		return http.StatusServiceUnavailable
	case "UnknownStatus", "DatabaseError", "InternalError":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewStandardError creates a new StandardError
func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func NewInvalidRequest(message, details string) *StandardError {
	return NewStandardError("InvalidRequest", message, details)
}

func NewValidationError(message, field string) *StandardError {
	return NewStandardError("ValidationError", message, fmt.Sprintf("Field: %s", field))
}

func NewUnauthorized(message, details string) *StandardError {
	return NewStandardError("Unauthorized", message, details)
}

func NewForbidden(role string) *StandardError {
	return NewStandardError("Forbidden", "insufficient permissions", fmt.Sprintf("Role: %s", role))
}

func NewDatabaseError(operation string, err error) *StandardError {
	return NewStandardError("DatabaseError", fmt.Sprintf("database operation failed: %s", operation), err.Error())
}

func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError("InternalError", message, details)
}

// FromDomain maps an error from the domain or repository layers onto the
// response envelope. Unknown errors become InternalError.
func FromDomain(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	var transitionErr *domain.TransitionError
	if stderrors.As(err, &transitionErr) {
		return NewStandardError("InvalidTransition", "invalid status transition", transitionErr.Error())
	}

	var domainErr *domain.DomainError
	if !stderrors.As(err, &domainErr) {
		return NewInternalError("internal server error", err)
	}

	switch {
	case stderrors.Is(err, domain.ErrItemNotFound):
		return NewStandardError("ItemNotFound", domainErr.Message, domainErr.Detail)
	case stderrors.Is(err, domain.ErrOrderNotFound):
		return NewStandardError("OrderNotFound", domainErr.Message, domainErr.Detail)
	case stderrors.Is(err, domain.ErrDuplicateSKU):
		return NewStandardError("DuplicateSKU", domainErr.Message, domainErr.Detail)
	case stderrors.Is(err, domain.ErrInvalidReleaseQuantity):
		return NewStandardError("InvalidOperation", domainErr.Message, domainErr.Detail)
	}

	switch domainErr.Kind {
	case domain.KindInvalidArgument:
		return NewStandardError("InvalidArgument", domainErr.Message, domainErr.Detail)
	case domain.KindInsufficientStock:
		return NewStandardError("InsufficientStock", domainErr.Message, domainErr.Detail)
	case domain.KindConflict:
		return NewStandardError("Conflict", domainErr.Message, domainErr.Detail)
	case domain.KindUnknownStatus:
		return NewStandardError("UnknownStatus", domainErr.Message, domainErr.Detail)
	case domain.KindNotFound:
		return NewStandardError("ResourceNotFound", domainErr.Message, domainErr.Detail)
	}
	return NewInternalError("internal server error", err)
}
