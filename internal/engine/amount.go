package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseDisplayAmount converts a displayed two-decimal amount like
// "1 234,56" or "-45.00" into minor units. Decimal arithmetic keeps the
// conversion exact; float parsing would drift on typical amounts.
func parseDisplayAmount(s string) (int64, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).IntPart(), nil
}
