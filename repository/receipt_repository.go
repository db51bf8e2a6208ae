package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"trader-storefront/models"
)

// ReceiptRepository stores receipts in PostgreSQL
type ReceiptRepository struct {
	db *sql.DB
}

// NewReceiptRepository creates a ReceiptRepository on an open database
func NewReceiptRepository(db *sql.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Ensure ReceiptRepository implements ReceiptRepositoryInterface
var _ ReceiptRepositoryInterface = (*ReceiptRepository)(nil)

const createReceiptsTable = `
	CREATE TABLE IF NOT EXISTS order_receipts (
		order_id     TEXT PRIMARY KEY,
		player_name  TEXT NOT NULL,
		server       TEXT NOT NULL,
		discord      TEXT NOT NULL DEFAULT '',
		price_mode   TEXT NOT NULL,
		lines        JSONB NOT NULL,
		total        NUMERIC NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL
	)
`

// EnsureSchema creates the order_receipts table if it doesn't exist
func (r *ReceiptRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReceiptsTable); err != nil {
		return fmt.Errorf("failed to create order_receipts table: %w", err)
	}
	return nil
}

// Save inserts or replaces the receipt for its order id
func (r *ReceiptRepository) Save(ctx context.Context, receipt *models.Receipt) error {
	if receipt == nil || receipt.OrderID == "" {
		return fmt.Errorf("receipt order id is required")
	}

	lines, err := json.Marshal(receipt.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode receipt lines: %w", err)
	}

	query := `
		INSERT INTO order_receipts (order_id, player_name, server, discord, price_mode, lines, total, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO UPDATE SET
			player_name = EXCLUDED.player_name,
			server = EXCLUDED.server,
			discord = EXCLUDED.discord,
			price_mode = EXCLUDED.price_mode,
			lines = EXCLUDED.lines,
			total = EXCLUDED.total,
			submitted_at = EXCLUDED.submitted_at
	`

	_, err = r.db.ExecContext(ctx, query,
		receipt.OrderID,
		receipt.PlayerName,
		receipt.Server,
		receipt.Discord,
		string(receipt.PriceMode),
		lines,
		receipt.Total,
		receipt.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save receipt %s: %w", receipt.OrderID, err)
	}
	return nil
}

// GetByOrderID loads the receipt for orderID
func (r *ReceiptRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Receipt, error) {
	query := `
		SELECT order_id, player_name, server, discord, price_mode, lines, total, submitted_at
		FROM order_receipts
		WHERE order_id = $1
	`

	var receipt models.Receipt
	var priceMode string
	var lines []byte
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&receipt.OrderID,
		&receipt.PlayerName,
		&receipt.Server,
		&receipt.Discord,
		&priceMode,
		&lines,
		&receipt.Total,
		&receipt.SubmittedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt: %w", err)
	}

	receipt.PriceMode = models.ParsePriceMode(priceMode)
	if err := json.Unmarshal(lines, &receipt.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode receipt lines: %w", err)
	}
	return &receipt, nil
}
