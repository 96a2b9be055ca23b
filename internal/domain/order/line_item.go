package order

import (
	"github.com/google/uuid"

	"github.com/exoorder/backend/internal/domain/shared"
)

// Size is the size tag of a line item
type Size string

// Size tags, in display order; the first one is the default
const (
	SizeOver03cm Size = "0.3cm以上"
	SizeOver05cm Size = "0.5cm以上"
	SizeSubadult Size = "亞成成體"
	SizeNone     Size = "無"
)

// Unit is the quantity unit of a line item
type Unit string

// Unit tags, in display order; the first one is the default
const (
	UnitHead  Unit = "隻"
	UnitGram  Unit = "克"
	UnitPiece Unit = "個"
)

var (
	sizes = []Size{SizeOver03cm, SizeOver05cm, SizeSubadult, SizeNone}
	units = []Unit{UnitHead, UnitGram, UnitPiece}
)

// Sizes returns the size tags in display order
func Sizes() []Size {
	return append([]Size(nil), sizes...)
}

// Units returns the unit tags in display order
func Units() []Unit {
	return append([]Unit(nil), units...)
}

// DefaultSize is the size a new line item starts with
func DefaultSize() Size { return sizes[0] }

// DefaultUnit is the unit a new line item starts with
func DefaultUnit() Unit { return units[0] }

// IsValid returns true if s is one of the size tags
func (s Size) IsValid() bool {
	for _, v := range sizes {
		if v == s {
			return true
		}
	}
	return false
}

// IsValid returns true if u is one of the unit tags
func (u Unit) IsValid() bool {
	for _, v := range units {
		if v == u {
			return true
		}
	}
	return false
}

// LineItemField names an editable field of a line item
type LineItemField string

const (
	FieldProduct  LineItemField = "product"
	FieldSize     LineItemField = "size"
	FieldPrice    LineItemField = "price"
	FieldQuantity LineItemField = "quantity"
	FieldUnit     LineItemField = "unit"
)

// LineItem is one product row of an order draft.
// Price and Quantity are kept as the text the user typed.
type LineItem struct {
	ID       uuid.UUID `json:"id"`
	Product  string    `json:"product"`
	Size     Size      `json:"size"`
	Price    string    `json:"price"`
	Quantity string    `json:"quantity"`
	Unit     Unit      `json:"unit"`
}

// NewLineItem creates an empty line item with a fresh id and the default tags
func NewLineItem() LineItem {
	return LineItem{
		ID:   uuid.New(),
		Size: DefaultSize(),
		Unit: DefaultUnit(),
	}
}

// DisplayName returns the product name, followed by quantity and unit
// when both are filled in
func (li LineItem) DisplayName() string {
	if li.Quantity != "" && li.Unit != "" {
		return li.Product + li.Quantity + string(li.Unit)
	}
	return li.Product
}

// HasProduct returns true if the product name is filled in
func (li LineItem) HasProduct() bool {
	return li.Product != ""
}

// HasPrice returns true if the price is filled in
func (li LineItem) HasPrice() bool {
	return li.Price != ""
}

// set replaces one field; tags outside the fixed sets are rejected
func (li *LineItem) set(field LineItemField, value string) error {
	switch field {
	case FieldProduct:
		li.Product = value
	case FieldPrice:
		li.Price = value
	case FieldQuantity:
		li.Quantity = value
	case FieldSize:
		size := Size(value)
		if !size.IsValid() {
			return shared.NewValidationError(string(field), "Unknown size: "+value)
		}
		li.Size = size
	case FieldUnit:
		unit := Unit(value)
		if !unit.IsValid() {
			return shared.NewValidationError(string(field), "Unknown unit: "+value)
		}
		li.Unit = unit
	default:
		return shared.NewValidationError(string(field), "Unknown line item field: "+string(field))
	}
	return nil
}
