package repository

import (
	"context"
	"errors"

	"trader-storefront/models"
)

// ErrReceiptNotFound is returned when no receipt exists for an order id
var ErrReceiptNotFound = errors.New("receipt not found")

// ReceiptRepositoryInterface defines the contract for receipt storage
type ReceiptRepositoryInterface interface {
	Save(ctx context.Context, receipt *models.Receipt) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Receipt, error)
}
