package repository

import (
	"context"
	"fmt"
	"sync"

	"trader-storefront/models"
)

// MemoryReceiptRepository keeps receipts for the lifetime of the process
type MemoryReceiptRepository struct {
	mu       sync.RWMutex
	receipts map[string]models.Receipt
}

// NewMemoryReceiptRepository creates an empty MemoryReceiptRepository
func NewMemoryReceiptRepository() *MemoryReceiptRepository {
	return &MemoryReceiptRepository{
		receipts: make(map[string]models.Receipt),
	}
}

// Ensure MemoryReceiptRepository implements ReceiptRepositoryInterface
var _ ReceiptRepositoryInterface = (*MemoryReceiptRepository)(nil)

// Save stores a copy of receipt, replacing any receipt with the same order id
func (r *MemoryReceiptRepository) Save(ctx context.Context, receipt *models.Receipt) error {
	if receipt == nil || receipt.OrderID == "" {
		return fmt.Errorf("receipt order id is required")
	}
	stored := *receipt
	stored.Lines = append([]models.OrderLine(nil), receipt.Lines...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts[receipt.OrderID] = stored
	return nil
}

// GetByOrderID returns the receipt for orderID
func (r *MemoryReceiptRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	receipt, ok := r.receipts[orderID]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	return &receipt, nil
}
