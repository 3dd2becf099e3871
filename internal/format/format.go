package format

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Money formats an amount in dollars with two decimals. Negative amounts are
// wrapped in parentheses instead of carrying a minus sign.
// Example: Money(-5) => "($5.00)"
func Money(amount decimal.Decimal) string {
	s := "$" + amount.Abs().StringFixed(2)
	if amount.IsNegative() {
		return "(" + s + ")"
	}
	return s
}

// Percent renders a fractional rate with one decimal, e.g. 0.102 => "10.2%".
func Percent(rate decimal.Decimal) string {
	return rate.Shift(2).StringFixed(1) + "%"
}

// Qty renders the quantity badge text used by the catalog and cart rows.
func Qty(n int) string {
	if n <= 0 {
		return ""
	}
	return "Qty: " + strconv.Itoa(n)
}

// PerUnit renders a unit price as "$12.50/ea".
func PerUnit(amount decimal.Decimal) string {
	return Money(amount) + "/ea"
}
