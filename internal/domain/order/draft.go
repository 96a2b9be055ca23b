package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/exoorder/backend/internal/domain/shared"
)

// DefaultShippingFee is the shipping fee of a fresh draft
const DefaultShippingFee = "0"

// DateLabel formats t as the MM/DD label used on orders
func DateLabel(t time.Time) string {
	return fmt.Sprintf("%02d/%02d", int(t.Month()), t.Day())
}

// Draft is the in-progress order being assembled in a form.
// A draft always holds at least one line item.
type Draft struct {
	CustomerID     string     `json:"customer_id"`
	DateLabel      string     `json:"date_label"`
	TimeNote       string     `json:"time_note"`
	LineItems      []LineItem `json:"line_items"`
	ShippingFee    string     `json:"shipping_fee"`
	SelectedBankID string     `json:"selected_bank_id"`
	RemittanceTail string     `json:"remittance_tail"`
	OrderNumber    string     `json:"order_number"`
}

// NewDraft creates a draft with one empty line item, dated now, that
// settles to the given bank account
func NewDraft(now time.Time, bankID string) *Draft {
	return &Draft{
		DateLabel:      DateLabel(now),
		LineItems:      []LineItem{NewLineItem()},
		ShippingFee:    DefaultShippingFee,
		SelectedBankID: bankID,
	}
}

// Clone returns a deep copy of the draft
func (d *Draft) Clone() *Draft {
	c := *d
	c.LineItems = append([]LineItem(nil), d.LineItems...)
	return &c
}

// AddLineItem appends an empty line item and returns it
func (d *Draft) AddLineItem() LineItem {
	item := NewLineItem()
	d.LineItems = append(d.LineItems, item)
	return item
}

// RemoveLineItem removes the item with the given id. The last remaining
// item is never removed. Returns true if an item was removed.
func (d *Draft) RemoveLineItem(id uuid.UUID) bool {
	if len(d.LineItems) <= 1 {
		return false
	}
	idx := d.indexOf(id)
	if idx < 0 {
		return false
	}
	d.LineItems = append(d.LineItems[:idx], d.LineItems[idx+1:]...)
	return true
}

// UpdateLineItem replaces one field of the item with the given id.
// Returns false without error when no item matches.
func (d *Draft) UpdateLineItem(id uuid.UUID, field LineItemField, value string) (bool, error) {
	idx := d.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	item := d.LineItems[idx]
	if err := item.set(field, value); err != nil {
		return false, err
	}
	d.LineItems[idx] = item
	return true, nil
}

// LineItem returns the item with the given id
func (d *Draft) LineItem(id uuid.UUID) (LineItem, bool) {
	idx := d.indexOf(id)
	if idx < 0 {
		return LineItem{}, false
	}
	return d.LineItems[idx], true
}

func (d *Draft) indexOf(id uuid.UUID) int {
	for i, item := range d.LineItems {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// ComputeTotal sums every item price and the shipping fee.
// Empty or malformed values count as zero.
func (d *Draft) ComputeTotal() decimal.Decimal {
	total := ParseAmount(d.ShippingFee)
	for _, item := range d.LineItems {
		total = total.Add(ParseAmount(item.Price))
	}
	return total
}

// SetCustomerID sets the customer identifier
func (d *Draft) SetCustomerID(id string) { d.CustomerID = id }

// SetDateLabel overrides the MM/DD order date
func (d *Draft) SetDateLabel(label string) { d.DateLabel = label }

// SetTimeNote sets the free-form time note
func (d *Draft) SetTimeNote(note string) { d.TimeNote = note }

// SetShippingFee sets the shipping fee text
func (d *Draft) SetShippingFee(fee string) { d.ShippingFee = fee }

// SetRemittanceTail sets the customer's remittance account digits
func (d *Draft) SetRemittanceTail(tail string) { d.RemittanceTail = tail }

// SetOrderNumber sets the external order number
func (d *Draft) SetOrderNumber(number string) { d.OrderNumber = number }

// SelectBank selects the settlement account; the id must resolve in dir
func (d *Draft) SelectBank(dir *BankDirectory, id string) error {
	if _, ok := dir.Lookup(id); !ok {
		return shared.NewValidationError("selected_bank_id", "Unknown bank account: "+id)
	}
	d.SelectedBankID = id
	return nil
}

// Reset clears the draft after a successful submission. The selected bank
// account is kept.
func (d *Draft) Reset(now time.Time) {
	d.CustomerID = ""
	d.DateLabel = DateLabel(now)
	d.TimeNote = ""
	d.LineItems = []LineItem{NewLineItem()}
	d.ShippingFee = DefaultShippingFee
	d.RemittanceTail = ""
	d.OrderNumber = ""
}

// ValidateItems checks that every item names a product and, when
// requirePrice is set, carries a price
func (d *Draft) ValidateItems(requirePrice bool) error {
	for i, item := range d.LineItems {
		if !item.HasProduct() {
			return shared.NewValidationError(fmt.Sprintf("line_items[%d].product", i), "Every line item needs a product name")
		}
		if requirePrice && !item.HasPrice() {
			return shared.NewValidationError(fmt.Sprintf("line_items[%d].price", i), "Every line item needs a price")
		}
	}
	return nil
}

// ResolveBank returns the selected bank account
func (d *Draft) ResolveBank(dir *BankDirectory) (BankAccount, error) {
	acc, ok := dir.Lookup(d.SelectedBankID)
	if !ok {
		return BankAccount{}, shared.NewValidationError("selected_bank_id", "Unknown bank account: "+d.SelectedBankID)
	}
	return acc, nil
}

// ValidateForSubmission checks every precondition of sending the draft:
// a customer id, a product and price on every item, and a bank that resolves
func (d *Draft) ValidateForSubmission(dir *BankDirectory) error {
	if d.CustomerID == "" {
		return shared.NewValidationError("customer_id", "Customer ID is required")
	}
	if err := d.ValidateItems(true); err != nil {
		return err
	}
	_, err := d.ResolveBank(dir)
	return err
}
