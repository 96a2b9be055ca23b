package order

import (
	"github.com/google/uuid"

	"github.com/exoorder/backend/internal/application/submission"
	"github.com/exoorder/backend/internal/domain/order"
)

// ==================== Form DTOs ====================

// UpdateFormRequest edits the draft header; nil fields are left unchanged
type UpdateFormRequest struct {
	CustomerID     *string `json:"customer_id"`
	DateLabel      *string `json:"date_label" binding:"omitempty,max=10"`
	TimeNote       *string `json:"time_note"`
	ShippingFee    *string `json:"shipping_fee" binding:"omitempty,max=20"`
	SelectedBankID *string `json:"selected_bank_id"`
	RemittanceTail *string `json:"remittance_tail" binding:"omitempty,max=20"`
	OrderNumber    *string `json:"order_number"`
}

// UpdateLineItemRequest replaces one field of a line item
type UpdateLineItemRequest struct {
	Field string `json:"field" binding:"required,oneof=product size price quantity unit"`
	Value string `json:"value" binding:"max=200"`
}

// PreviewRequest selects the settlement text variant
type PreviewRequest struct {
	Strict   bool   `form:"strict"`
	Shipping string `form:"shipping" binding:"omitempty,oneof=pending"`
}

// Options maps the request onto the settlement text variant
func (r PreviewRequest) Options() order.SettlementOptions {
	return order.SettlementOptions{
		RequirePrices:   r.Strict,
		PendingShipping: r.Shipping == "pending",
	}
}

// LineItemResponse is a line item as returned by the API
type LineItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Product     string    `json:"product"`
	Size        string    `json:"size"`
	Price       string    `json:"price"`
	Quantity    string    `json:"quantity"`
	Unit        string    `json:"unit"`
	DisplayName string    `json:"display_name"`
}

// FormResponse is the state of one order form session
type FormResponse struct {
	ID             uuid.UUID          `json:"id"`
	CustomerID     string             `json:"customer_id"`
	DateLabel      string             `json:"date_label"`
	TimeNote       string             `json:"time_note"`
	LineItems      []LineItemResponse `json:"line_items"`
	ShippingFee    string             `json:"shipping_fee"`
	SelectedBankID string             `json:"selected_bank_id"`
	RemittanceTail string             `json:"remittance_tail"`
	OrderNumber    string             `json:"order_number"`
	Total          string             `json:"total"`
	Submitting     bool               `json:"submitting"`
}

// PreviewResponse is the text shown for review before submitting
type PreviewResponse struct {
	SettlementText string         `json:"settlement_text"`
	Backup         order.Snapshot `json:"backup"`
	Total          string         `json:"total"`
}

// SubmitResponse reports a submission and the form state afterwards
type SubmitResponse struct {
	Outcome submission.Outcome `json:"outcome"`
	Form    *FormResponse      `json:"form,omitempty"`
}

// ToFormResponse converts a draft to its API representation
func ToFormResponse(id uuid.UUID, d *order.Draft, submitting bool) *FormResponse {
	items := make([]LineItemResponse, 0, len(d.LineItems))
	for _, li := range d.LineItems {
		items = append(items, LineItemResponse{
			ID:          li.ID,
			Product:     li.Product,
			Size:        string(li.Size),
			Price:       li.Price,
			Quantity:    li.Quantity,
			Unit:        string(li.Unit),
			DisplayName: li.DisplayName(),
		})
	}
	return &FormResponse{
		ID:             id,
		CustomerID:     d.CustomerID,
		DateLabel:      d.DateLabel,
		TimeNote:       d.TimeNote,
		LineItems:      items,
		ShippingFee:    d.ShippingFee,
		SelectedBankID: d.SelectedBankID,
		RemittanceTail: d.RemittanceTail,
		OrderNumber:    d.OrderNumber,
		Total:          d.ComputeTotal().String(),
		Submitting:     submitting,
	}
}
