package service

import "context"

// ReceiptExporterInterface defines the contract for receipt document exports
type ReceiptExporterInterface interface {
	GeneratePDF(ctx context.Context, orderID string) ([]byte, error)
	GeneratePNG(ctx context.Context, orderID string) ([]byte, error)
}
