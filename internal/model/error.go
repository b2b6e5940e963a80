package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Standard error codes shared by the storefront client and the API.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeNetwork            = "NETWORK_ERROR"
	ErrCodeAuth               = "AUTH_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeServer             = "SERVER_ERROR"
	ErrCodeCheckoutInProgress = "CHECKOUT_IN_PROGRESS"
	ErrCodeInvalidForm        = "INVALID_FORM"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// DomainError is an error carrying a stable code.
// Two domain errors match under errors.Is when their codes are equal, so
// callers can test against the sentinels below regardless of message.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error around a cause.
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors
var (
	ErrValidation         = NewDomainError(ErrCodeValidation, "validation failed")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "cart is empty")
	ErrNetwork            = NewDomainError(ErrCodeNetwork, "network request failed")
	ErrAuth               = NewDomainError(ErrCodeAuth, "session is not authorised")
	ErrNotFound           = NewDomainError(ErrCodeNotFound, "not found")
	ErrServer             = NewDomainError(ErrCodeServer, "server rejected the request")
	ErrCheckoutInProgress = NewDomainError(ErrCodeCheckoutInProgress, "checkout is already in progress")
	ErrInvalidForm        = NewDomainError(ErrCodeInvalidForm, "invalid form data")
	ErrProductNotFound    = NewDomainError(ErrCodeNotFound, "product not found")
	ErrInvalidPassword    = NewDomainError(ErrCodeAuth, "invalid password")
	ErrInvalidItems       = NewDomainError(ErrCodeInvalidForm, "invalid items format")
)

// NewValidationError returns a validation error with a user-facing message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}
