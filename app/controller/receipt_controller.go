package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"trader-storefront/render"
	"trader-storefront/repository"
	"trader-storefront/service"
)

// ReceiptController serves receipts and their PDF/PNG exports
type ReceiptController struct {
	receipts repository.ReceiptRepositoryInterface
	exporter service.ReceiptExporterInterface
	logger   *zap.Logger
}

// NewReceiptController creates a new ReceiptController
func NewReceiptController(receipts repository.ReceiptRepositoryInterface, exporter service.ReceiptExporterInterface, logger *zap.Logger) *ReceiptController {
	return &ReceiptController{
		receipts: receipts,
		exporter: exporter,
		logger:   logger,
	}
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	orderID := strings.TrimSpace(r.URL.Query().Get("orderId"))
	if orderID == "" {
		http.Error(w, "orderId parameter is required", http.StatusBadRequest)
		return "", false
	}
	return orderID, true
}

// Receipt handles GET /receipt?orderId=
func (c *ReceiptController) Receipt(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	receipt, err := c.receipts.GetByOrderID(r.Context(), orderID)
	if errors.Is(err, repository.ErrReceiptNotFound) {
		http.Error(w, fmt.Sprintf("No receipt for order %s", orderID), http.StatusNotFound)
		return
	}
	if err != nil {
		c.logger.Error("❌ failed to load receipt", zap.String("order_id", orderID), zap.Error(err))
		http.Error(w, "Failed to load receipt", http.StatusInternalServerError)
		return
	}

	page, err := render.ReceiptPage(receipt)
	if err != nil {
		c.logger.Error("❌ failed to render receipt", zap.String("order_id", orderID), zap.Error(err))
		http.Error(w, "Failed to render receipt", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// PDF handles GET /receipt/pdf?orderId=
func (c *ReceiptController) PDF(w http.ResponseWriter, r *http.Request) {
	c.export(w, r, "pdf", "application/pdf", c.exporter.GeneratePDF)
}

// PNG handles GET /receipt/png?orderId=
func (c *ReceiptController) PNG(w http.ResponseWriter, r *http.Request) {
	c.export(w, r, "png", "image/png", c.exporter.GeneratePNG)
}

func (c *ReceiptController) export(
	w http.ResponseWriter,
	r *http.Request,
	ext, contentType string,
	generate func(ctx context.Context, orderID string) ([]byte, error),
) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	if _, err := c.receipts.GetByOrderID(r.Context(), orderID); err != nil {
		if errors.Is(err, repository.ErrReceiptNotFound) {
			http.Error(w, fmt.Sprintf("No receipt for order %s", orderID), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load receipt", http.StatusInternalServerError)
		return
	}

	data, err := generate(r.Context(), orderID)
	if err != nil {
		c.logger.Error("❌ receipt export failed", zap.String("order_id", orderID), zap.String("format", ext), zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to generate %s", strings.ToUpper(ext)), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"receipt_%s.%s\"", sanitizeFilename(orderID), ext))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		c.logger.Error("❌ failed to write export", zap.Error(err))
	}
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
