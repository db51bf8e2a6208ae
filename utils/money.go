package utils

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney formats an amount as a string like "$12,500".
// Amounts are rounded to whole units; no decimals are shown.
func FormatMoney(amount float64) string {
	rounded := int64(math.Round(amount))
	if rounded < 0 {
		return moneyPrinter.Sprintf("-$%d", -rounded)
	}
	return moneyPrinter.Sprintf("$%d", rounded)
}

// FormatPercent formats a percentage with one decimal, e.g. "60.0%"
func FormatPercent(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		pct = 0
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatNumber renders a number the way the order endpoint expects it in
// text fields: integers without a decimal point, fractions without padding.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
