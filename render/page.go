package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"trader-storefront/models"
	"trader-storefront/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money":   utils.FormatMoney,
	"percent": utils.FormatPercent,
	"stamp": func(s models.CatalogStatus) string {
		if s.LastLoaded.IsZero() {
			return "—"
		}
		stamp := s.LastLoaded.Format("2006-01-02 15:04:05")
		if s.Demo {
			stamp += " (demo catalog)"
		}
		return stamp
	},
}).ParseFS(templateFS, "templates/*.html"))

// PriceModes lists the selectable price bases in display order
var PriceModes = []models.PriceMode{models.PriceModeWeBuy, models.PriceModeToBuy, models.PriceModeToSell}

// PageData is everything the storefront page needs
type PageData struct {
	View        View
	Status      models.CatalogStatus
	Message     string
	MessageGood bool
	InFlight    bool // Disables the submit button while an order is being sent
	PlayerName  string
	Server      string
	Discord     string
	Modes       []models.PriceMode
}

// Page renders the storefront HTML
func Page(data PageData) ([]byte, error) {
	if data.Modes == nil {
		data.Modes = PriceModes
	}
	return execute("storefront.html", data)
}

// ReceiptPage renders the receipt view for a submitted order
func ReceiptPage(receipt *models.Receipt) ([]byte, error) {
	return execute("receipt.html", receipt)
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
