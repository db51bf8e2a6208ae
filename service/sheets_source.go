package service

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"trader-storefront/models"
)

// SheetsCatalogSource reads the catalog straight from a Google Sheet.
// The first row of the range is a header naming the item, weBuy, toBuy and
// toSell columns (case and spaces are ignored).
type SheetsCatalogSource struct {
	client        *sheets.Service
	spreadsheetID string
	readRange     string
}

// Ensure SheetsCatalogSource implements CatalogSource
var _ CatalogSource = (*SheetsCatalogSource)(nil)

// NewSheetsCatalogSource creates a source authenticated with a service account file
func NewSheetsCatalogSource(ctx context.Context, credentialsPath, spreadsheetID, readRange string) (*SheetsCatalogSource, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsCatalogSource{
		client:        svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
	}, nil
}

// FetchCatalog reads the configured range and converts it to a catalog
func (s *SheetsCatalogSource) FetchCatalog(ctx context.Context) (models.Catalog, error) {
	resp, err := s.client.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet range %s: %w", s.readRange, err)
	}
	return RowsToCatalog(resp.Values)
}

// sheetColumns maps normalized header names to catalog field keys
var sheetColumns = map[string]string{
	"item":   "item",
	"webuy":  "weBuy",
	"tobuy":  "toBuy",
	"tosell": "toSell",
}

// RowsToCatalog converts sheet rows (header first) into a catalog
func RowsToCatalog(rows [][]interface{}) (models.Catalog, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet range is empty", ErrBadCatalogResponse)
	}

	columns := make(map[int]string)
	hasItem := false
	for i, cell := range rows[0] {
		header := strings.ToLower(strings.ReplaceAll(fmt.Sprint(cell), " ", ""))
		if key, ok := sheetColumns[header]; ok {
			columns[i] = key
			hasItem = hasItem || key == "item"
		}
	}
	if !hasItem {
		return nil, fmt.Errorf("%w: no item column in sheet header", ErrBadCatalogResponse)
	}

	catalog := make(models.Catalog, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fields := make(map[string]any, len(columns))
		for i, cell := range row {
			if key, ok := columns[i]; ok {
				fields[key] = cell
			}
		}
		if entry, ok := NormalizeEntry(fields); ok {
			catalog = append(catalog, entry)
		}
	}
	return catalog, nil
}
