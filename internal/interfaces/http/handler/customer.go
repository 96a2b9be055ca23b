package handler

import (
	"github.com/gin-gonic/gin"

	customerapp "github.com/exoorder/backend/internal/application/customer"
)

// CustomerHandler submits customer forms
type CustomerHandler struct {
	BaseHandler
	customerService *customerapp.Service
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *customerapp.Service) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Submit validates the customer form and sends it to the backend
func (h *CustomerHandler) Submit(c *gin.Context) {
	var req customerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	outcome, err := h.customerService.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleErrorWithData(c, err, outcome)
		return
	}
	h.Success(c, outcome)
}
