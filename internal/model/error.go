package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeProductInactive     = "PRODUCT_INACTIVE"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeOrderNotCancellable = "ORDER_NOT_CANCELLABLE"
	ErrCodeOrderNotDeletable   = "ORDER_NOT_DELETABLE"
	ErrCodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a caller-fault business rule violation. It is rejected
// synchronously and never retried.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrProductInactive     = NewDomainError(ErrCodeProductInactive, "One or more products are not active")
	ErrInsufficientStock   = NewDomainError(ErrCodeInsufficientStock, "Insufficient stock for one or more products")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrOrderNotCancellable = NewDomainError(ErrCodeOrderNotCancellable, "This order cannot be cancelled")
	ErrOrderNotDeletable   = NewDomainError(ErrCodeOrderNotDeletable, "Only pending orders can be deleted")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Invalid order status transition")
)
