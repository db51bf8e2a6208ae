package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trader-storefront/models"
)

func TestNormalizeEntry(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		want   models.CatalogEntry
		ok     bool
	}{
		{"complete", map[string]any{"item": "Bandage", "weBuy": 150.0, "toBuy": 250.0, "toSell": 200.0},
			models.CatalogEntry{Item: "Bandage", WeBuy: 150, ToBuy: 250, ToSell: 200}, true},
		{"numeric strings", map[string]any{"item": " Rope ", "weBuy": " 12.5 ", "toBuy": "20"},
			models.CatalogEntry{Item: "Rope", WeBuy: 12.5, ToBuy: 20}, true},
		{"garbage prices", map[string]any{"item": "Rope", "weBuy": "n/a", "toBuy": true, "toSell": -4.0},
			models.CatalogEntry{Item: "Rope"}, true},
		{"numeric item", map[string]any{"item": 556.0, "weBuy": 1.0},
			models.CatalogEntry{Item: "556", WeBuy: 1}, true},
		{"missing item", map[string]any{"weBuy": 1.0}, models.CatalogEntry{}, false},
		{"blank item", map[string]any{"item": "   "}, models.CatalogEntry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeEntry(tt.fields)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRowsToCatalog(t *testing.T) {
	rows := [][]interface{}{
		{"Item", "We Buy", "To Buy", "To Sell", "Notes"},
		{"Nails (box)", 1000.0, 1500.0, "", "popular"},
		{"", 5.0},
		{"Bandage", "150", 250.0},
	}

	catalog, err := RowsToCatalog(rows)
	require.NoError(t, err)
	assert.Equal(t, models.Catalog{
		{Item: "Nails (box)", WeBuy: 1000, ToBuy: 1500},
		{Item: "Bandage", WeBuy: 150, ToBuy: 250},
	}, catalog)
}

func TestRowsToCatalog_Errors(t *testing.T) {
	_, err := RowsToCatalog(nil)
	assert.ErrorIs(t, err, ErrBadCatalogResponse)

	_, err = RowsToCatalog([][]interface{}{{"name", "price"}})
	assert.ErrorIs(t, err, ErrBadCatalogResponse)
}
