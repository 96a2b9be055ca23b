package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exoorder/backend/internal/domain/shared"
)

var testNow = time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC)

func newTestDraft() *Draft {
	return NewDraft(testNow, "A")
}

// ============================================
// Construction
// ============================================

func TestNewDraft(t *testing.T) {
	d := newTestDraft()

	require.Len(t, d.LineItems, 1)
	item := d.LineItems[0]
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, SizeOver03cm, item.Size)
	assert.Equal(t, UnitHead, item.Unit)
	assert.Empty(t, item.Product)
	assert.Empty(t, item.Price)
	assert.Empty(t, item.Quantity)
	assert.Equal(t, "03/07", d.DateLabel)
	assert.Equal(t, "0", d.ShippingFee)
	assert.Equal(t, "A", d.SelectedBankID)
}

func TestDateLabel(t *testing.T) {
	assert.Equal(t, "12/25", DateLabel(time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "01/01", DateLabel(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

// ============================================
// Line item mutation
// ============================================

func TestDraft_AddLineItem(t *testing.T) {
	d := newTestDraft()

	added := d.AddLineItem()

	require.Len(t, d.LineItems, 2)
	assert.Equal(t, added, d.LineItems[1])
	assert.NotEqual(t, d.LineItems[0].ID, d.LineItems[1].ID)
	assert.Equal(t, SizeOver03cm, added.Size)
	assert.Equal(t, UnitHead, added.Unit)
}

func TestDraft_RemoveLineItem(t *testing.T) {
	t.Run("never removes the last item", func(t *testing.T) {
		d := newTestDraft()
		only := d.LineItems[0].ID

		assert.False(t, d.RemoveLineItem(only))
		require.Len(t, d.LineItems, 1)
		assert.Equal(t, only, d.LineItems[0].ID)
	})

	t.Run("removes one of several items", func(t *testing.T) {
		d := newTestDraft()
		first := d.LineItems[0].ID
		second := d.AddLineItem().ID
		third := d.AddLineItem().ID

		assert.True(t, d.RemoveLineItem(second))
		require.Len(t, d.LineItems, 2)
		assert.Equal(t, first, d.LineItems[0].ID)
		assert.Equal(t, third, d.LineItems[1].ID)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		d := newTestDraft()
		d.AddLineItem()

		assert.False(t, d.RemoveLineItem(uuid.New()))
		assert.Len(t, d.LineItems, 2)
	})
}

func TestDraft_UpdateLineItem(t *testing.T) {
	t.Run("updates each field", func(t *testing.T) {
		d := newTestDraft()
		id := d.LineItems[0].ID

		for field, value := range map[LineItemField]string{
			FieldProduct:  "蟻后",
			FieldPrice:    "500",
			FieldQuantity: "3",
			FieldSize:     string(SizeSubadult),
			FieldUnit:     string(UnitGram),
		} {
			ok, err := d.UpdateLineItem(id, field, value)
			require.NoError(t, err)
			assert.True(t, ok)
		}

		item, ok := d.LineItem(id)
		require.True(t, ok)
		assert.Equal(t, "蟻后", item.Product)
		assert.Equal(t, "500", item.Price)
		assert.Equal(t, "3", item.Quantity)
		assert.Equal(t, SizeSubadult, item.Size)
		assert.Equal(t, UnitGram, item.Unit)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		d := newTestDraft()
		before := d.Clone()

		ok, err := d.UpdateLineItem(uuid.New(), FieldProduct, "x")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, before, d)
	})

	t.Run("rejects unknown field", func(t *testing.T) {
		d := newTestDraft()
		ok, err := d.UpdateLineItem(d.LineItems[0].ID, LineItemField("colour"), "red")
		assert.False(t, ok)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("rejects size outside the tag set", func(t *testing.T) {
		d := newTestDraft()
		ok, err := d.UpdateLineItem(d.LineItems[0].ID, FieldSize, "XL")
		assert.False(t, ok)
		assert.True(t, shared.IsValidation(err))
		assert.Equal(t, SizeOver03cm, d.LineItems[0].Size)
	})

	t.Run("rejects unit outside the tag set", func(t *testing.T) {
		d := newTestDraft()
		ok, err := d.UpdateLineItem(d.LineItems[0].ID, FieldUnit, "kg")
		assert.False(t, ok)
		assert.True(t, shared.IsValidation(err))
	})
}

// ============================================
// Totals
// ============================================

func TestDraft_ComputeTotal(t *testing.T) {
	tests := []struct {
		name   string
		prices []string
		fee    string
		want   string
	}{
		{"single item with fee", []string{"500"}, "60", "560"},
		{"several items", []string{"300", "200"}, "60", "560"},
		{"empty price counts as zero", []string{"300", ""}, "0", "300"},
		{"malformed price counts as zero", []string{"300", "abc"}, "60", "360"},
		{"malformed fee counts as zero", []string{"100"}, "free", "100"},
		{"full-width digits", []string{"５００"}, "６０", "560"},
		{"decimals stay exact", []string{"0.1", "0.2"}, "0", "0.3"},
		{"exponent price counts as zero", []string{"1e999999999", "100"}, "60", "160"},
		{"exponent fee counts as zero", []string{"100"}, "1e999999999", "100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDraft()
			d.LineItems = nil
			for _, p := range tt.prices {
				item := NewLineItem()
				item.Price = p
				d.LineItems = append(d.LineItems, item)
			}
			d.SetShippingFee(tt.fee)
			assert.Equal(t, tt.want, d.ComputeTotal().String())
		})
	}
}

// ============================================
// Bank selection and reset
// ============================================

func TestDraft_SelectBank(t *testing.T) {
	dir := DefaultBankDirectory()
	d := newTestDraft()

	require.NoError(t, d.SelectBank(dir, "D"))
	assert.Equal(t, "D", d.SelectedBankID)

	err := d.SelectBank(dir, "Z")
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, "D", d.SelectedBankID)
}

func TestDraft_Reset(t *testing.T) {
	d := newTestDraft()
	d.SetCustomerID("cust-1")
	d.SetTimeNote("evening")
	d.SetShippingFee("60")
	d.SetRemittanceTail("12345")
	d.SetOrderNumber("ORD-9")
	d.SelectedBankID = "C"
	d.AddLineItem()

	later := time.Date(2024, 11, 2, 9, 0, 0, 0, time.UTC)
	d.Reset(later)

	require.Len(t, d.LineItems, 1)
	assert.Empty(t, d.LineItems[0].Product)
	assert.Empty(t, d.CustomerID)
	assert.Empty(t, d.TimeNote)
	assert.Empty(t, d.RemittanceTail)
	assert.Empty(t, d.OrderNumber)
	assert.Equal(t, "0", d.ShippingFee)
	assert.Equal(t, "11/02", d.DateLabel)
	assert.Equal(t, "C", d.SelectedBankID)
}

// ============================================
// Validation
// ============================================

func TestDraft_ValidateForSubmission(t *testing.T) {
	dir := DefaultBankDirectory()

	valid := func() *Draft {
		d := newTestDraft()
		d.SetCustomerID("cust-1")
		d.LineItems[0].Product = "蟻后"
		d.LineItems[0].Price = "500"
		return d
	}

	t.Run("accepts a complete draft", func(t *testing.T) {
		assert.NoError(t, valid().ValidateForSubmission(dir))
	})

	t.Run("requires a customer id", func(t *testing.T) {
		d := valid()
		d.SetCustomerID("")
		assert.True(t, shared.IsValidation(d.ValidateForSubmission(dir)))
	})

	t.Run("requires a product on every item", func(t *testing.T) {
		d := valid()
		d.AddLineItem()
		assert.True(t, shared.IsValidation(d.ValidateForSubmission(dir)))
	})

	t.Run("requires a price on every item", func(t *testing.T) {
		d := valid()
		d.LineItems[0].Price = ""
		assert.True(t, shared.IsValidation(d.ValidateForSubmission(dir)))
	})

	t.Run("requires a resolvable bank", func(t *testing.T) {
		d := valid()
		d.SelectedBankID = "Z"
		assert.True(t, shared.IsValidation(d.ValidateForSubmission(dir)))
	})
}

func TestLineItem_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want string
	}{
		{"quantity and unit", LineItem{Product: "蟻后", Quantity: "3", Unit: UnitGram}, "蟻后3克"},
		{"no quantity", LineItem{Product: "蟻后", Unit: UnitGram}, "蟻后"},
		{"no unit", LineItem{Product: "蟻后", Quantity: "3"}, "蟻后"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.DisplayName())
		})
	}
}
