package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewInvalidInput creates an input validation error tied to a specific field
func NewInvalidInput(field, reason string) *DomainError {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: reason,
		Field:   field,
	}
}

// NewFinancialImpossibility creates an error for assumption sets that can never
// produce a coherent model, regardless of the projected horizon
func NewFinancialImpossibility(reason string) *DomainError {
	return &DomainError{
		Code:    "FINANCIAL_IMPOSSIBILITY",
		Message: reason,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrFinancialImpossibility = NewDomainError("FINANCIAL_IMPOSSIBILITY", "Assumptions cannot produce a coherent model")
	ErrUnauthorized           = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden              = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState           = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrRenderingUnavailable   = NewDomainError("REPORTS_DISABLED", "Report rendering is not enabled")
)
