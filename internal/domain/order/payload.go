package order

// Payload is the order record sent to the remote backend
type Payload struct {
	Customer              string `json:"customer"`
	OrderDate             string `json:"orderDate"`
	Items                 []any  `json:"items"`
	ReceiveAccount        string `json:"receiveAccount"`
	ShippingFee           string `json:"shippingFee"`
	UserRemittanceAccount string `json:"userRemittanceAccount"`
	OrderNumber           string `json:"orderNumber"`
	TimeItem              string `json:"timeItem"`
}

// PayloadItem is a line item in the structured item format
type PayloadItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     Unit   `json:"unit"`
	Size     Size   `json:"size"`
	Price    string `json:"price"`
}

// LegacyPayloadItem folds quantity and unit into the name, for backends
// that predate the structured item format
type LegacyPayloadItem struct {
	Name  string `json:"name"`
	Size  Size   `json:"size"`
	Price string `json:"price"`
}

// BuildPayload projects a validated draft onto the remote order record.
// Call ValidateForSubmission first; the bank account must already resolve.
func BuildPayload(d *Draft, acc BankAccount, legacyItems bool) Payload {
	items := make([]any, 0, len(d.LineItems))
	for _, li := range d.LineItems {
		if legacyItems {
			items = append(items, LegacyPayloadItem{Name: li.DisplayName(), Size: li.Size, Price: li.Price})
			continue
		}
		items = append(items, PayloadItem{
			Name:     li.Product,
			Quantity: li.Quantity,
			Unit:     li.Unit,
			Size:     li.Size,
			Price:    li.Price,
		})
	}
	return Payload{
		Customer:              d.CustomerID,
		OrderDate:             d.DateLabel,
		Items:                 items,
		ReceiveAccount:        acc.ReceiveAccountTag(),
		ShippingFee:           d.ShippingFee,
		UserRemittanceAccount: d.RemittanceTail,
		OrderNumber:           d.OrderNumber,
		TimeItem:              d.TimeNote,
	}
}
