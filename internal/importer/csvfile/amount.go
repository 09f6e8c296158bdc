package csvfile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads a formatted amount. Thousands separators and a currency
// symbol prefix are ignored: "1.234,56" in decimalComma style and
// "$1,234.56" in decimalPoint style both give 1234.56.
func parseAmount(s string, style decimalStyle) (float64, error) {
	clean := strings.TrimSpace(s)

	sign := ""
	if rest, ok := strings.CutPrefix(clean, "-"); ok {
		sign, clean = "-", rest
	}

	clean = sign + strings.TrimLeft(clean, "$€£₹ ")

	switch style {
	case decimalComma:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case decimalPoint:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(clean, " ", ""))
	if err != nil {
		return 0, err
	}

	return d.Round(2).InexactFloat64(), nil
}
