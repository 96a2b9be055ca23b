package order

import (
	"encoding/json"
	"strings"

	"github.com/exoorder/backend/internal/domain/shared"
)

// Snapshot is the portable backup of a draft. Key names match backups
// written by earlier versions of the order form.
type Snapshot struct {
	CustomerID  string         `json:"customerId"`
	TimeItem    string         `json:"timeItem"`
	ShippingFee NumericText    `json:"shippingFee"`
	Items       []SnapshotItem `json:"items"`
}

// SnapshotItem is a line item without its id
type SnapshotItem struct {
	Product  string      `json:"product"`
	Size     Size        `json:"size"`
	Price    NumericText `json:"price"`
	Quantity NumericText `json:"quantity"`
	Unit     Unit        `json:"unit"`
}

// Export captures the backed-up fields of a draft
func Export(d *Draft) Snapshot {
	items := make([]SnapshotItem, 0, len(d.LineItems))
	for _, li := range d.LineItems {
		items = append(items, SnapshotItem{
			Product:  li.Product,
			Size:     li.Size,
			Price:    NumericText(li.Price),
			Quantity: NumericText(li.Quantity),
			Unit:     li.Unit,
		})
	}
	return Snapshot{
		CustomerID:  d.CustomerID,
		TimeItem:    d.TimeNote,
		ShippingFee: NumericText(d.ShippingFee),
		Items:       items,
	}
}

// ExportText renders the snapshot of a draft as indented JSON
func ExportText(d *Draft) (string, error) {
	data, err := json.MarshalIndent(Export(d), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Import overlays a backup onto the draft. Only fields present in the
// text are applied: customerId and timeItem when non-empty, shippingFee
// whenever present, items when non-empty. Imported items get fresh ids,
// and a missing or unknown size or unit falls back to the default tag.
// On a ParseError the draft is left untouched.
func Import(text string, d *Draft) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &fields); err != nil {
		return shared.NewParseError("Backup is not a JSON object", err)
	}
	if fields == nil {
		return shared.NewParseError("Backup is not a JSON object", nil)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(text), &snap); err != nil {
		return shared.NewParseError("Backup has malformed fields", err)
	}

	if _, ok := fields["customerId"]; ok && snap.CustomerID != "" {
		d.CustomerID = snap.CustomerID
	}
	if _, ok := fields["timeItem"]; ok && snap.TimeItem != "" {
		d.TimeNote = snap.TimeItem
	}
	if _, ok := fields["shippingFee"]; ok {
		d.ShippingFee = string(snap.ShippingFee)
	}
	if _, ok := fields["items"]; ok && len(snap.Items) > 0 {
		items := make([]LineItem, 0, len(snap.Items))
		for _, si := range snap.Items {
			items = append(items, si.toLineItem())
		}
		d.LineItems = items
	}
	return nil
}

func (si SnapshotItem) toLineItem() LineItem {
	item := NewLineItem()
	item.Product = si.Product
	item.Price = string(si.Price)
	item.Quantity = string(si.Quantity)
	if si.Size.IsValid() {
		item.Size = si.Size
	}
	if si.Unit.IsValid() {
		item.Unit = si.Unit
	}
	return item
}
