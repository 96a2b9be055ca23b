package dto

// Response represents a standard API response
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Field     string             `json:"field,omitempty"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one rejected request field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta carries list metadata
type Meta struct {
	Total int `json:"total"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewListResponse creates a success response for a list with its size
func NewListResponse(data any, total int) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Total: total},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response tagged with the request id
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	resp := NewErrorResponse(code, message)
	resp.Error.RequestID = requestID
	return resp
}

// NewFieldErrorResponse creates an error response naming the offending field
func NewFieldErrorResponse(code, message, field, requestID string) Response {
	resp := NewErrorResponseWithRequestID(code, message, requestID)
	resp.Error.Field = field
	return resp
}

// NewValidationErrorResponse creates a request validation error response
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponseWithRequestID(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// FormIDRequest binds the form id path parameter
type FormIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// LineItemIDRequest binds the form and line item path parameters
type LineItemIDRequest struct {
	ID     string `uri:"id" binding:"required,uuid"`
	ItemID string `uri:"itemId" binding:"required,uuid"`
}

// ProductQuery filters the cached product list
type ProductQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SetAPIKeyRequest replaces the remote API key
type SetAPIKeyRequest struct {
	APIKey string `json:"api_key" binding:"max=256"`
}

// APIKeyStatus reports whether a key is configured without revealing it
type APIKeyStatus struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked"`
}

// HealthResponse is the liveness report
type HealthResponse struct {
	Status      string `json:"status"`
	Store       string `json:"store"`
	ActiveForms int    `json:"active_forms"`
}
