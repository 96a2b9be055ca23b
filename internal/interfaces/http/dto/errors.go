package dto

import (
	"net/http"

	"github.com/exoorder/backend/internal/domain/shared"
)

// Error codes returned by the API.
// Format: ERR_<CATEGORY>
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeParse           = "ERR_PARSE"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeConflict        = "ERR_CONFLICT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeUnavailable     = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeParse:           http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeValidation: ErrCodeValidation,
	shared.CodeParse:      ErrCodeParse,
	shared.CodeInvalid:    ErrCodeInvalidInput,
	shared.CodeNotFound:   ErrCodeNotFound,
	shared.CodeConflict:   ErrCodeConflict,
}

// NormalizeErrorCode converts a domain error code to its API form.
// Codes that are already API codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if mapped, ok := DomainErrorCodeMapping[code]; ok {
		return mapped
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
