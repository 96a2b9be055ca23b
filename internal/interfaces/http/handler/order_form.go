package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	orderapp "github.com/exoorder/backend/internal/application/order"
	"github.com/exoorder/backend/internal/domain/order"
	"github.com/exoorder/backend/internal/interfaces/http/dto"
)

// OrderFormHandler serves order form sessions
type OrderFormHandler struct {
	BaseHandler
	formService *orderapp.FormService
}

// NewOrderFormHandler creates a new OrderFormHandler
func NewOrderFormHandler(formService *orderapp.FormService) *OrderFormHandler {
	return &OrderFormHandler{
		formService: formService,
	}
}

// Create opens a new form with an empty draft
func (h *OrderFormHandler) Create(c *gin.Context) {
	h.Created(c, h.formService.Create(c.Request.Context()))
}

// Get returns the form state including the running total
func (h *OrderFormHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	form, err := h.formService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// Discard closes a form
func (h *OrderFormHandler) Discard(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.formService.Discard(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Update edits the draft header fields present in the body
func (h *OrderFormHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req orderapp.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	form, err := h.formService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// AddLineItem appends an empty line item
func (h *OrderFormHandler) AddLineItem(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	form, err := h.formService.AddLineItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, form)
}

// UpdateLineItem replaces one field of a line item
func (h *OrderFormHandler) UpdateLineItem(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	var req orderapp.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	form, err := h.formService.UpdateLineItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// RemoveLineItem deletes a line item; the last remaining item stays
func (h *OrderFormHandler) RemoveLineItem(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseUUIDParam(c, "itemId")
	if !ok {
		return
	}
	form, err := h.formService.RemoveLineItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// Preview renders the settlement text and the backup snapshot.
// strict=true rejects items without a price; shipping=pending replaces
// the shipping line with the "to be confirmed" wording.
func (h *OrderFormHandler) Preview(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req orderapp.PreviewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	preview, err := h.formService.Preview(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Backup returns the snapshot of the draft. With download=true the
// snapshot is served bare, as the file the import endpoint accepts.
func (h *OrderFormHandler) Backup(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	snap, err := h.formService.Backup(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", `attachment; filename="order-backup.json"`)
		c.IndentedJSON(http.StatusOK, snap)
		return
	}
	h.Success(c, snap)
}

// Import overlays the backup text in the request body onto the draft
func (h *OrderFormHandler) Import(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Backup text is too large")
		return
	}
	form, err := h.formService.Import(c.Request.Context(), id, string(body))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, form)
}

// Submit sends the draft to the order backend. A missing precondition is
// a 400 naming the field, with the precondition_failure outcome as data;
// a second submit while one is running is a 409.
func (h *OrderFormHandler) Submit(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.formService.Submit(c.Request.Context(), id)
	if err != nil {
		if resp != nil {
			h.HandleErrorWithData(c, err, resp)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// BankHandler lists the settlement accounts
type BankHandler struct {
	BaseHandler
	banks *order.BankDirectory
}

// NewBankHandler creates a new BankHandler
func NewBankHandler(banks *order.BankDirectory) *BankHandler {
	return &BankHandler{banks: banks}
}

// List returns every bank account in display order
func (h *BankHandler) List(c *gin.Context) {
	accounts := h.banks.All()
	h.SuccessList(c, accounts, len(accounts))
}
