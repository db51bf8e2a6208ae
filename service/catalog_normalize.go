package service

import (
	"math"
	"strconv"
	"strings"

	"trader-storefront/models"
)

// NormalizeEntry converts a loosely typed catalog record into a CatalogEntry.
// Records without an item name are dropped. Price fields that are missing,
// non-numeric or negative become 0.
func NormalizeEntry(fields map[string]any) (models.CatalogEntry, bool) {
	item := itemName(fields["item"])
	if item == "" {
		return models.CatalogEntry{}, false
	}
	return models.CatalogEntry{
		Item:   item,
		WeBuy:  toPrice(fields["weBuy"]),
		ToBuy:  toPrice(fields["toBuy"]),
		ToSell: toPrice(fields["toSell"]),
	}, true
}

func itemName(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func toPrice(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}
