package shared

import "errors"

// Error codes shared by every bounded context
const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeParse      = "PARSE_ERROR"
	CodeConflict   = "CONFLICT"
	CodeInvalid    = "INVALID_INPUT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports a missing or unacceptable field value
func NewValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// NewParseError reports text that could not be decoded
func NewParseError(message string, cause error) *DomainError {
	return &DomainError{
		Code:    CodeParse,
		Message: message,
		Cause:   cause,
	}
}

// Common domain errors
var (
	ErrNotFound = NewDomainError(CodeNotFound, "Resource not found")
	ErrConflict = NewDomainError(CodeConflict, "Operation conflicts with the current state")
)

// HasCode reports whether err is a DomainError carrying the given code
func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	return HasCode(err, CodeValidation)
}

// IsParse reports whether err is a parse failure
func IsParse(err error) bool {
	return HasCode(err, CodeParse)
}
