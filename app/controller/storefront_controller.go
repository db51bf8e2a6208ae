package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"trader-storefront/models"
	"trader-storefront/render"
	"trader-storefront/state"
)

// qtyFieldPrefix prefixes quantity inputs in the HTML order form ("qty:<item>")
const qtyFieldPrefix = "qty:"

// CatalogLoader is the part of the loader the controller needs
type CatalogLoader interface {
	Load(ctx context.Context) models.Catalog
}

// OrderSubmitter is the part of the submitter the controller needs
type OrderSubmitter interface {
	Submit(ctx context.Context, req models.SubmitRequest) models.SubmissionResult
	InFlight() bool
}

// StorefrontController handles the storefront page and its JSON API
type StorefrontController struct {
	store     *state.Store
	loader    CatalogLoader
	submitter OrderSubmitter
	logger    *zap.Logger
}

// NewStorefrontController creates a new StorefrontController
func NewStorefrontController(store *state.Store, loader CatalogLoader, submitter OrderSubmitter, logger *zap.Logger) *StorefrontController {
	return &StorefrontController{
		store:     store,
		loader:    loader,
		submitter: submitter,
		logger:    logger,
	}
}

// QuantityRequest is the body of POST /api/quantity
// Example: {"item": "Bandage", "raw": "7", "mode": "weBuy"}
type QuantityRequest struct {
	Item string `json:"item"`
	Raw  string `json:"raw"`
	Mode string `json:"mode"`
}

// QuantityResponse is the incremental update returned after a quantity change
// Example response:
//
//	{
//	  "item": "Bandage",
//	  "qty": 7,
//	  "found": true,
//	  "row": {"item": "Bandage", "weBuy": 150, "toBuy": 250, "toSell": 0, "unitPrice": 150, "qty": 7, "lineTotal": 1050},
//	  "summary": {"catalogSize": 5, "totalItems": 7, "grandTotal": 1050, "percentOfBuyBaseline": 60},
//	  "lineTotalText": "$1,050",
//	  "grandTotalText": "$1,050",
//	  "percentText": "60.0%"
//	}
type QuantityResponse struct {
	Item           string         `json:"item"`
	Qty            int            `json:"qty"`
	Found          bool           `json:"found"`
	Row            *render.Row    `json:"row,omitempty"`
	Summary        render.Summary `json:"summary"`
	LineTotalText  string         `json:"lineTotalText,omitempty"`
	GrandTotalText string         `json:"grandTotalText"`
	PercentText    string         `json:"percentText"`
}

// StatusResponse is returned by refresh and clear
type StatusResponse struct {
	Status  models.CatalogStatus `json:"status"`
	Summary render.Summary       `json:"summary"`
}

func (c *StorefrontController) view(r *http.Request) render.View {
	q := r.URL.Query()
	catalog, quantities := c.store.Snapshot()
	return render.Render(catalog, quantities, q.Get("filter"), models.ParsePriceMode(q.Get("mode")))
}

// Index handles GET /?filter=&mode=
func (c *StorefrontController) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	c.writePage(w, c.view(r), models.SubmitRequest{})
}

func (c *StorefrontController) writePage(w http.ResponseWriter, view render.View, form models.SubmitRequest) {
	status := c.store.Status()
	page, err := render.Page(render.PageData{
		View:        view,
		Status:      status,
		Message:     status.Message,
		MessageGood: status.Good,
		InFlight:    c.submitter.InFlight(),
		PlayerName:  form.PlayerName,
		Server:      form.Server,
		Discord:     form.Discord,
	})
	if err != nil {
		c.logger.Error("❌ failed to render storefront page", zap.Error(err))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		c.logger.Error("❌ failed to write page", zap.Error(err))
	}
}

// View handles GET /api/view?filter=&mode=
func (c *StorefrontController) View(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c.writeJSON(w, http.StatusOK, c.view(r))
}

// SetQuantity handles POST /api/quantity
func (c *StorefrontController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Item) == "" {
		http.Error(w, "item is required", http.StatusBadRequest)
		return
	}

	qty := c.store.SetQuantity(req.Item, req.Raw)
	catalog, quantities := c.store.Snapshot()
	row, summary, found := render.RenderRow(catalog, quantities, req.Item, models.ParsePriceMode(req.Mode))

	resp := QuantityResponse{
		Item:           req.Item,
		Qty:            qty,
		Found:          found,
		Summary:        summary,
		GrandTotalText: summary.GrandTotalText(),
		PercentText:    summary.PercentText(),
	}
	if found {
		resp.Row = &row
		resp.LineTotalText = row.LineTotalText()
	}
	c.writeJSON(w, http.StatusOK, resp)
}

// Clear handles POST /api/clear (JSON) and POST /clear (form, redirects back)
func (c *StorefrontController) Clear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c.store.Clear()
	c.store.SetMessage("Quantities cleared.", true)

	if !isAPI(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	c.writeStatus(w, r)
}

// RefreshCatalog handles POST /api/catalog/refresh and POST /catalog/refresh
func (c *StorefrontController) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	c.loader.Load(r.Context())

	if !isAPI(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	c.writeStatus(w, r)
}

func (c *StorefrontController) writeStatus(w http.ResponseWriter, r *http.Request) {
	catalog, quantities := c.store.Snapshot()
	c.writeJSON(w, http.StatusOK, StatusResponse{
		Status:  c.store.Status(),
		Summary: render.Summarize(catalog, quantities, models.ParsePriceMode(r.URL.Query().Get("mode"))),
	})
}

// SubmitOrder handles POST /api/orders with a JSON or form body
func (c *StorefrontController) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.SubmitRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, fmt.Sprintf("Invalid form: %v", err), http.StatusBadRequest)
			return
		}
		req = submitRequestFromForm(r.PostForm)
	}

	result := c.submitter.Submit(r.Context(), req)
	status := http.StatusOK
	if !result.OK {
		status = http.StatusUnprocessableEntity
	}
	c.writeJSON(w, status, result)
}

// OrderForm handles POST /order from the HTML page. Quantities in the form
// are applied first; on success the browser is sent to the receipt view.
func (c *StorefrontController) OrderForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid form: %v", err), http.StatusBadRequest)
		return
	}

	c.applyQuantities(r.PostForm)

	req := submitRequestFromForm(r.PostForm)
	result := c.submitter.Submit(r.Context(), req)
	if result.OK {
		target := "/"
		if result.ReceiptURL != "" {
			target = result.ReceiptURL
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	catalog, quantities := c.store.Snapshot()
	view := render.Render(catalog, quantities, r.PostForm.Get("filter"), models.ParsePriceMode(req.PriceMode))
	c.writePage(w, view, req)
}

// UpdateQuantities handles POST /quantities from the HTML page: it applies the
// posted quantities and redirects back with the filter and price mode kept.
func (c *StorefrontController) UpdateQuantities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, fmt.Sprintf("Invalid form: %v", err), http.StatusBadRequest)
		return
	}

	c.applyQuantities(r.PostForm)

	query := url.Values{}
	if filter := strings.TrimSpace(r.PostForm.Get("filter")); filter != "" {
		query.Set("filter", filter)
	}
	query.Set("mode", string(models.ParsePriceMode(r.PostForm.Get("priceMode"))))
	http.Redirect(w, r, "/?"+query.Encode(), http.StatusSeeOther)
}

func (c *StorefrontController) applyQuantities(form url.Values) {
	for key, values := range form {
		if item, ok := strings.CutPrefix(key, qtyFieldPrefix); ok && len(values) > 0 {
			c.store.SetQuantity(item, values[len(values)-1])
		}
	}
}

func submitRequestFromForm(form url.Values) models.SubmitRequest {
	return models.SubmitRequest{
		PlayerName: form.Get("playerName"),
		Server:     form.Get("server"),
		Discord:    form.Get("discord"),
		PriceMode:  form.Get("priceMode"),
		Website:    form.Get("website"),
	}
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func (c *StorefrontController) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.Error("❌ failed to encode JSON response", zap.Error(err))
	}
}
