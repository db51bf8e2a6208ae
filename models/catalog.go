package models

import "strings"

// CatalogEntry represents a single priced item in the trader catalog
type CatalogEntry struct {
	Item   string  `json:"item"`   // Unique key and display name (e.g., "Nails (box)")
	WeBuy  float64 `json:"weBuy"`  // Price the trader pays the player
	ToBuy  float64 `json:"toBuy"`  // Price the player pays the trader
	ToSell float64 `json:"toSell"` // Resale price, present in later catalogs only
}

// Catalog is the ordered list of entries loaded from the catalog source
type Catalog []CatalogEntry

// Find returns the first entry whose name matches item exactly
func (c Catalog) Find(item string) (CatalogEntry, bool) {
	for _, entry := range c {
		if entry.Item == item {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

// PriceMode selects which catalog field is used as the unit price
type PriceMode string

// PriceMode constants
const (
	PriceModeWeBuy  PriceMode = "weBuy"
	PriceModeToBuy  PriceMode = "toBuy"
	PriceModeToSell PriceMode = "toSell"
)

// ParsePriceMode normalizes a price mode string.
// Unknown or empty values fall back to weBuy.
func ParsePriceMode(s string) PriceMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tobuy":
		return PriceModeToBuy
	case "tosell":
		return PriceModeToSell
	default:
		return PriceModeWeBuy
	}
}

// MaxQuantity is the largest quantity accepted for a single item
const MaxQuantity = 9999

// QuantityMap maps item name to requested quantity. Missing keys mean 0.
type QuantityMap map[string]int

// Get returns the quantity for item, 0 when absent
func (q QuantityMap) Get(item string) int {
	return q[item]
}

// Clone returns an independent copy of the map
func (q QuantityMap) Clone() QuantityMap {
	out := make(QuantityMap, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}

// DemoCatalog is the fixed catalog installed when the "demo" fallback policy is configured
func DemoCatalog() Catalog {
	return Catalog{
		{Item: "Nails (box)", WeBuy: 1000, ToBuy: 1500},
		{Item: "Planks (bundle)", WeBuy: 500, ToBuy: 800},
		{Item: "Bandage", WeBuy: 150, ToBuy: 250},
		{Item: "Tetracycline", WeBuy: 300, ToBuy: 500},
		{Item: "Armband (color)", WeBuy: 0, ToBuy: 1000},
	}
}
