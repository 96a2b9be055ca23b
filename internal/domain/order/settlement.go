package order

import (
	"strings"
)

const (
	shippingOptionsBlock = "711寄送60（不包寄送風險）\n黑貓寄送200（全程開箱錄影，包寄送風險）"
	closingBlock         = "匯款後請留下匯款截圖\n與\n相對應的寄送資料\n感謝你😊"
	pendingShippingText  = "運費=?"
)

// SettlementOptions selects a variant of the settlement text
type SettlementOptions struct {
	// RequirePrices rejects drafts with an item that has no price
	RequirePrices bool
	// PendingShipping prints "+運費=?" instead of the fee and total
	PendingShipping bool
}

// ItemLine renders one item for the settlement message
func ItemLine(item LineItem) string {
	if item.Quantity != "" && item.Unit != "" {
		return "#" + item.Product + " * " + item.Quantity + string(item.Unit) + " = $" + item.Price
	}
	return "#" + item.Product + " = $" + item.Price
}

// CalculationLine renders the price arithmetic, e.g. "300+200+60=560"
func CalculationLine(d *Draft, pendingShipping bool) string {
	var b strings.Builder
	for i, item := range d.LineItems {
		if i > 0 {
			b.WriteByte('+')
		}
		if item.Price == "" {
			b.WriteByte('0')
		} else {
			b.WriteString(item.Price)
		}
	}
	b.WriteByte('+')
	if pendingShipping {
		b.WriteString(pendingShippingText)
		return b.String()
	}
	b.WriteString(d.ShippingFee)
	b.WriteByte('=')
	b.WriteString(d.ComputeTotal().String())
	return b.String()
}

// GenerateSettlementText builds the message sent to the customer: the
// items, the shipping options, the calculation and the remittance details
func GenerateSettlementText(d *Draft, dir *BankDirectory, opts SettlementOptions) (string, error) {
	if err := d.ValidateItems(opts.RequirePrices); err != nil {
		return "", err
	}
	acc, err := d.ResolveBank(dir)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(d.LineItems))
	for _, item := range d.LineItems {
		lines = append(lines, ItemLine(item))
	}

	sections := []string{
		strings.Join(lines, "\n"),
		shippingOptionsBlock,
		CalculationLine(d, opts.PendingShipping),
		acc.BankName + "\n銀行代碼(" + acc.BankCode + ")\n" + acc.AccountNumber,
		closingBlock,
	}
	return strings.TrimSpace(strings.Join(sections, "\n\n")), nil
}
