// Package render projects storefront state into display rows and summary
// fields, and renders the storefront and receipt pages.
//
// Render is a pure function of its inputs. Calling it again after a filter
// change or catalog reload yields a complete new row set; RenderRow is the
// incremental path used after a single quantity change and always agrees
// with the matching row of a full Render.
package render

import (
	"html"
	"strings"

	"trader-storefront/models"
	"trader-storefront/pricing"
	"trader-storefront/utils"
)

// Row is one visible catalog line
type Row struct {
	Item      string  `json:"item"`
	WeBuy     float64 `json:"weBuy"`
	ToBuy     float64 `json:"toBuy"`
	ToSell    float64 `json:"toSell"`
	UnitPrice float64 `json:"unitPrice"`
	Qty       int     `json:"qty"`
	LineTotal float64 `json:"lineTotal"`
}

// EscapedItem returns the item name escaped for safe HTML display
func (r Row) EscapedItem() string {
	return html.EscapeString(r.Item)
}

// WeBuyText returns the formatted weBuy price
func (r Row) WeBuyText() string { return utils.FormatMoney(r.WeBuy) }

// ToBuyText returns the formatted toBuy price
func (r Row) ToBuyText() string { return utils.FormatMoney(r.ToBuy) }

// ToSellText returns the formatted toSell price
func (r Row) ToSellText() string { return utils.FormatMoney(r.ToSell) }

// LineTotalText returns the formatted line total
func (r Row) LineTotalText() string { return utils.FormatMoney(r.LineTotal) }

// Summary holds the footer figures
type Summary struct {
	CatalogSize          int     `json:"catalogSize"`
	TotalItems           int     `json:"totalItems"`
	GrandTotal           float64 `json:"grandTotal"`
	PercentOfBuyBaseline float64 `json:"percentOfBuyBaseline"`
}

// GrandTotalText returns the formatted grand total
func (s Summary) GrandTotalText() string { return utils.FormatMoney(s.GrandTotal) }

// PercentText returns the percent-of-buy-baseline with one decimal
func (s Summary) PercentText() string { return utils.FormatPercent(s.PercentOfBuyBaseline) }

// View is the full projection of the storefront state
type View struct {
	Filter  string           `json:"filter"`
	Mode    models.PriceMode `json:"mode"`
	Rows    []Row            `json:"rows"`
	Summary Summary          `json:"summary"`
}

// Matches reports whether item passes the filter (trimmed, case-insensitive substring)
func Matches(item, filter string) bool {
	q := strings.ToLower(strings.TrimSpace(filter))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item), q)
}

// Render builds the full row set and summary
func Render(catalog models.Catalog, quantities models.QuantityMap, filter string, mode models.PriceMode) View {
	rows := make([]Row, 0, len(catalog))
	for _, entry := range catalog {
		if !Matches(entry.Item, filter) {
			continue
		}
		rows = append(rows, buildRow(entry, quantities.Get(entry.Item), mode))
	}

	return View{
		Filter:  strings.TrimSpace(filter),
		Mode:    mode,
		Rows:    rows,
		Summary: Summarize(catalog, quantities, mode),
	}
}

// RenderRow rebuilds the row for a single item plus the summary.
// It reports false when the item is not in the catalog.
func RenderRow(catalog models.Catalog, quantities models.QuantityMap, item string, mode models.PriceMode) (Row, Summary, bool) {
	entry, ok := catalog.Find(item)
	summary := Summarize(catalog, quantities, mode)
	if !ok {
		return Row{}, summary, false
	}
	return buildRow(entry, quantities.Get(item), mode), summary, true
}

// Summarize recomputes the summary fields through the pricing engine
func Summarize(catalog models.Catalog, quantities models.QuantityMap, mode models.PriceMode) Summary {
	totals := pricing.Compute(catalog, quantities, mode)
	return Summary{
		CatalogSize:          len(catalog),
		TotalItems:           totals.TotalItemCount,
		GrandTotal:           totals.GrandTotal,
		PercentOfBuyBaseline: totals.PercentOfBuyBaseline,
	}
}

func buildRow(entry models.CatalogEntry, qty int, mode models.PriceMode) Row {
	return Row{
		Item:      entry.Item,
		WeBuy:     entry.WeBuy,
		ToBuy:     entry.ToBuy,
		ToSell:    entry.ToSell,
		UnitPrice: pricing.UnitPrice(entry, mode),
		Qty:       qty,
		LineTotal: pricing.LineTotal(entry, qty, mode),
	}
}

// ApplyRow replaces the row with the same item in view and updates the
// summary. Rows filtered out of the view are left alone.
func (v *View) ApplyRow(row Row, summary Summary) {
	for i := range v.Rows {
		if v.Rows[i].Item == row.Item {
			v.Rows[i] = row
		}
	}
	v.Summary = summary
}
