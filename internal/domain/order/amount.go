package order

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"github.com/exoorder/backend/internal/domain/shared"
)

// maxAmountLength bounds the digits an amount may carry so totals stay
// cheap to compute.
const maxAmountLength = 32

// ParseAmount reads user-entered numeric text. Surrounding whitespace is
// trimmed and full-width digits are folded to ASCII. Empty or malformed
// text is worth zero, and so is exponent notation or text longer than
// maxAmountLength.
func ParseAmount(text string) decimal.Decimal {
	normalized := strings.TrimSpace(width.Fold.String(text))
	if normalized == "" || len(normalized) > maxAmountLength || strings.ContainsAny(normalized, "eE") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NumericText is numeric text as it appears in a backup. It decodes from a
// JSON string, a JSON number or null, and always encodes as a string.
type NumericText string

// MarshalJSON encodes the text as a JSON string
func (n NumericText) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

// UnmarshalJSON accepts a string, a number or null
func (n *NumericText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = NumericText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(trimmed, &num); err != nil {
		return shared.NewParseError("Expected a number or numeric text", err)
	}
	*n = NumericText(num.String())
	return nil
}
