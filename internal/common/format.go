package common

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount in the given ISO currency (e.g. "₹1,200.00").
// Unknown currency codes fall back to a plain two-decimal string with the code appended.
func FormatMoney(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(currency)
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}

// FormatPercent renders a percentage with two decimals, or "n/a" when undefined.
func FormatPercent(pct *float64) string {
	if pct == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *pct)
}
