// Package money formats whole-unit peso amounts for display.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Symbol is the currency symbol prefixed to every amount.
const Symbol = "₱"

// Free is shown instead of a zero shipping fee.
const Free = "FREE"

var printer = message.NewPrinter(language.English)

// Format renders an amount with thousands separators, e.g. ₱12,345.
func Format(amount int64) string {
	if amount < 0 {
		return "-" + Symbol + printer.Sprintf("%d", -amount)
	}
	return Symbol + printer.Sprintf("%d", amount)
}

// FormatShipping renders a shipping fee, showing FREE when nothing is charged.
func FormatShipping(fee int64) string {
	if fee == 0 {
		return Free
	}
	return Format(fee)
}
