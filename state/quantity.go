package state

import (
	"strconv"
	"strings"

	"trader-storefront/models"
)

// ParseQuantity turns raw user input into a quantity.
// Non-digit characters are stripped, an empty remainder is 0 and the
// result is clamped to [0, models.MaxQuantity].
func ParseQuantity(raw string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	// Leading zeros never change the value; dropping them keeps long inputs
	// from overflowing before the clamp.
	digits = strings.TrimLeftFunc(digits, func(r rune) bool { return r == '0' })
	if digits == "" {
		return 0
	}
	if len(digits) > len(strconv.Itoa(models.MaxQuantity)) {
		return models.MaxQuantity
	}

	qty, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	if qty > models.MaxQuantity {
		return models.MaxQuantity
	}
	return qty
}
