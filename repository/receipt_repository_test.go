package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trader-storefront/models"
)

func sampleReceipt() *models.Receipt {
	return &models.Receipt{
		OrderID:     "X123",
		PlayerName:  "Survivor",
		Server:      "EU-1",
		PriceMode:   models.PriceModeWeBuy,
		Lines:       []models.OrderLine{{Item: "Bandage", Qty: 7, UnitPrice: 150, LineTotal: 1050}},
		Total:       1050,
		SubmittedAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryReceiptRepository(t *testing.T) {
	repo := NewMemoryReceiptRepository()
	ctx := context.Background()

	_, err := repo.GetByOrderID(ctx, "X123")
	assert.ErrorIs(t, err, ErrReceiptNotFound)

	receipt := sampleReceipt()
	require.NoError(t, repo.Save(ctx, receipt))

	// Mutating the caller's value must not leak into the store.
	receipt.Lines[0].Qty = 1

	got, err := repo.GetByOrderID(ctx, "X123")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Lines[0].Qty)
	assert.Equal(t, 1050.0, got.Total)

	assert.Error(t, repo.Save(ctx, &models.Receipt{}))
}

func TestReceiptRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReceiptRepository(db)
	receipt := sampleReceipt()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_receipts")).
		WithArgs("X123", "Survivor", "EU-1", "", "weBuy", sqlmock.AnyArg(), 1050.0, receipt.SubmittedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Save(context.Background(), receipt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepository_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_receipts")).
		WillReturnError(errors.New("connection reset"))

	err = NewReceiptRepository(db).Save(context.Background(), sampleReceipt())
	assert.ErrorContains(t, err, "connection reset")
}

func TestReceiptRepository_GetByOrderID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewReceiptRepository(db)
	submitted := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"order_id", "player_name", "server", "discord", "price_mode", "lines", "total", "submitted_at"}).
		AddRow("X123", "Survivor", "EU-1", "surv#1", "toBuy", []byte(`[{"item":"Bandage","qty":7,"unitPrice":250,"lineTotal":1750}]`), 1750.0, submitted)

	mock.ExpectQuery(regexp.QuoteMeta("FROM order_receipts")).
		WithArgs("X123").
		WillReturnRows(rows)

	got, err := repo.GetByOrderID(context.Background(), "X123")
	require.NoError(t, err)
	assert.Equal(t, models.PriceModeToBuy, got.PriceMode)
	assert.Equal(t, "surv#1", got.Discord)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 1750.0, got.Lines[0].LineTotal)
	assert.Equal(t, submitted, got.SubmittedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReceiptRepository_GetByOrderIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM order_receipts")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = NewReceiptRepository(db).GetByOrderID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestReceiptRepository_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS order_receipts")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewReceiptRepository(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
