// Package pricing derives line and aggregate totals from a catalog and a quantity map.
// All functions are pure; display formatting lives in the render package.
package pricing

import "trader-storefront/models"

// Totals represents the aggregate figures shown in the order summary
type Totals struct {
	GrandTotal           float64 `json:"grandTotal"`           // Σ unit price * qty
	TotalItemCount       int     `json:"totalItemCount"`       // Σ qty
	BuyBaseline          float64 `json:"buyBaseline"`          // Σ toBuy * qty
	PercentOfBuyBaseline float64 `json:"percentOfBuyBaseline"` // GrandTotal / BuyBaseline * 100, 0 when baseline is 0
}

// UnitPrice returns the price field selected by mode. Unknown modes use weBuy.
func UnitPrice(entry models.CatalogEntry, mode models.PriceMode) float64 {
	switch mode {
	case models.PriceModeToBuy:
		return entry.ToBuy
	case models.PriceModeToSell:
		return entry.ToSell
	default:
		return entry.WeBuy
	}
}

// LineTotal returns unit price times quantity
func LineTotal(entry models.CatalogEntry, qty int, mode models.PriceMode) float64 {
	return UnitPrice(entry, mode) * float64(qty)
}

// Lines builds the order lines for every entry with qty > 0, in catalog order
func Lines(catalog models.Catalog, quantities models.QuantityMap, mode models.PriceMode) []models.OrderLine {
	var lines []models.OrderLine
	for _, entry := range catalog {
		qty := quantities.Get(entry.Item)
		if qty <= 0 {
			continue
		}
		lines = append(lines, models.OrderLine{
			Item:      entry.Item,
			Qty:       qty,
			UnitPrice: UnitPrice(entry, mode),
			LineTotal: LineTotal(entry, qty, mode),
		})
	}
	return lines
}

// Compute calculates the summary totals for the whole catalog
func Compute(catalog models.Catalog, quantities models.QuantityMap, mode models.PriceMode) Totals {
	var t Totals
	for _, entry := range catalog {
		qty := quantities.Get(entry.Item)
		if qty <= 0 {
			continue
		}
		t.TotalItemCount += qty
		t.GrandTotal += LineTotal(entry, qty, mode)
		t.BuyBaseline += entry.ToBuy * float64(qty)
	}

	if t.BuyBaseline > 0 {
		t.PercentOfBuyBaseline = t.GrandTotal / t.BuyBaseline * 100
	}
	return t
}

// GrandTotal sums the line totals of lines
func GrandTotal(lines []models.OrderLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.LineTotal
	}
	return total
}
