package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trader-storefront/models"
	"trader-storefront/repository"
	"trader-storefront/state"
)

type fakePoster struct {
	mu      sync.Mutex
	forms   []url.Values
	orderID string
	err     error
	started chan struct{} // closed on first call when set
	release chan struct{} // first call waits on it when set
}

func (p *fakePoster) PostOrder(ctx context.Context, form url.Values) (string, error) {
	p.mu.Lock()
	p.forms = append(p.forms, form)
	first := len(p.forms) == 1
	p.mu.Unlock()

	if first && p.started != nil {
		close(p.started)
	}
	if first && p.release != nil {
		<-p.release
	}
	return p.orderID, p.err
}

func (p *fakePoster) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.forms)
}

func bandageStore() *state.Store {
	store := state.NewStore()
	store.ApplyCatalog(store.BeginLoad(), models.Catalog{
		{Item: "Nails (box)", WeBuy: 1000, ToBuy: 1500},
		{Item: "Bandage", WeBuy: 150, ToBuy: 250},
	}, models.CatalogStatus{})
	return store
}

func validRequest() models.SubmitRequest {
	return models.SubmitRequest{PlayerName: " Survivor ", Server: "EU-1", Discord: "surv#0001"}
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SubmitRequest)
		qty    string
		want   string
	}{
		{"empty player name", func(r *models.SubmitRequest) { r.PlayerName = "   " }, "7", "Player name is required."},
		{"empty server", func(r *models.SubmitRequest) { r.Server = "" }, "7", "Server is required."},
		{"player checked before server", func(r *models.SubmitRequest) { r.PlayerName = ""; r.Server = "" }, "7", "Player name is required."},
		{"no quantities", func(r *models.SubmitRequest) {}, "0", "Add at least one item quantity."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := bandageStore()
			store.SetQuantity("Bandage", tt.qty)
			poster := &fakePoster{orderID: "X123"}
			submitter := NewOrderSubmitter(store, poster, nil, "test", zap.NewNop())

			req := validRequest()
			tt.mutate(&req)
			result := submitter.Submit(context.Background(), req)

			assert.False(t, result.OK)
			assert.Equal(t, tt.want, result.Message)
			assert.Equal(t, tt.want, store.Status().Message)
			assert.Zero(t, poster.calls())
			var verr *ValidationError
			assert.ErrorAs(t, result.Err, &verr)
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	store := bandageStore()
	store.SetQuantity("Bandage", "7")
	store.SetQuantity("Nails (box)", "1")
	poster := &fakePoster{orderID: "X123"}
	receipts := repository.NewMemoryReceiptRepository()
	submitter := NewOrderSubmitter(store, poster, receipts, "github-pages", zap.NewNop())

	result := submitter.Submit(context.Background(), validRequest())

	assert.True(t, result.OK)
	assert.Equal(t, "X123", result.OrderID)
	assert.Contains(t, result.Message, "X123")
	assert.Equal(t, "/receipt?orderId=X123", result.ReceiptURL)
	assert.Empty(t, store.Quantities())
	assert.Contains(t, store.Status().Message, "X123")
	assert.True(t, store.Status().Good)
	assert.False(t, submitter.InFlight())

	require.Equal(t, 1, poster.calls())
	form := poster.forms[0]
	assert.Equal(t, "Survivor", form.Get("playerName"))
	assert.Equal(t, "EU-1", form.Get("server"))
	assert.Equal(t, "surv#0001", form.Get("discord"))
	assert.Equal(t, "weBuy", form.Get("priceMode"))
	assert.Equal(t, "2050", form.Get("total"))
	assert.Equal(t, "github-pages", form.Get("source"))
	assert.Equal(t, "1x Nails (box) @ 1000 = 1000\n7x Bandage @ 150 = 1050", form.Get("items_text"))

	receipt, err := receipts.GetByOrderID(context.Background(), "X123")
	require.NoError(t, err)
	assert.Equal(t, 2050.0, receipt.Total)
	assert.Len(t, receipt.Lines, 2)
}

func TestSubmit_SuccessWithoutOrderID(t *testing.T) {
	store := bandageStore()
	store.SetQuantity("Bandage", "1")
	submitter := NewOrderSubmitter(store, &fakePoster{}, repository.NewMemoryReceiptRepository(), "test", zap.NewNop())

	result := submitter.Submit(context.Background(), validRequest())

	assert.True(t, result.OK)
	assert.Equal(t, "Order submitted!", result.Message)
	assert.Empty(t, result.ReceiptURL)
	assert.Empty(t, store.Quantities())
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", &SubmissionError{Message: "Server closed"}, "Submit failed: Server closed"},
		{"http", &SubmissionError{StatusCode: 502, Message: "HTTP 502: upstream down"}, "Submit failed: HTTP 502: upstream down"},
		{"transport", errors.New("dial tcp: connection refused"), "Submit failed: could not reach the order endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := bandageStore()
			store.SetQuantity("Bandage", "7")
			submitter := NewOrderSubmitter(store, &fakePoster{err: tt.err}, nil, "test", zap.NewNop())

			result := submitter.Submit(context.Background(), validRequest())

			assert.False(t, result.OK)
			assert.Equal(t, tt.want, result.Message)
			assert.Equal(t, 7, store.Quantity("Bandage"))
			assert.False(t, submitter.InFlight())
		})
	}
}

func TestSubmit_HoneypotNeverReachesNetwork(t *testing.T) {
	store := bandageStore()
	store.SetQuantity("Bandage", "7")
	poster := &fakePoster{orderID: "X123"}
	submitter := NewOrderSubmitter(store, poster, nil, "test", zap.NewNop())

	req := validRequest()
	req.Website = "http://spam.example"
	result := submitter.Submit(context.Background(), req)

	assert.False(t, result.OK)
	assert.Zero(t, poster.calls())
	assert.ErrorIs(t, result.Err, ErrHoneypotFilled)
	assert.Equal(t, 7, store.Quantity("Bandage"))
}

func TestSubmit_InFlightGuardAndSnapshot(t *testing.T) {
	store := bandageStore()
	store.SetQuantity("Bandage", "7")
	poster := &fakePoster{
		orderID: "X123",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	submitter := NewOrderSubmitter(store, poster, nil, "test", zap.NewNop())

	done := make(chan models.SubmissionResult, 1)
	go func() {
		done <- submitter.Submit(context.Background(), validRequest())
	}()
	<-poster.started

	assert.True(t, submitter.InFlight())

	// Edits made while in flight are not part of the pending request.
	store.SetQuantity("Nails (box)", "3")

	second := submitter.Submit(context.Background(), validRequest())
	assert.False(t, second.OK)
	assert.Equal(t, MsgInFlight, second.Message)
	assert.ErrorIs(t, second.Err, ErrSubmissionInFlight)
	assert.Equal(t, 1, poster.calls())

	close(poster.release)
	select {
	case first := <-done:
		assert.True(t, first.OK)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "submission did not complete")
	}

	assert.False(t, submitter.InFlight())
	assert.Equal(t, "7x Bandage @ 150 = 1050", poster.forms[0].Get("items_text"))

	// The submitted line is cleared; the edit made meanwhile carries over.
	assert.Zero(t, store.Quantity("Bandage"))
	assert.Equal(t, 3, store.Quantity("Nails (box)"))
}

func TestBuildForm(t *testing.T) {
	sub := models.OrderSubmission{
		PlayerName: "Survivor",
		Server:     "EU-1",
		PriceMode:  models.PriceModeToBuy,
		Lines: []models.OrderLine{
			{Item: "Rope", Qty: 2, UnitPrice: 12.5, LineTotal: 25},
		},
		Total: 25,
	}

	form, err := BuildForm(sub, "trader-storefront")
	require.NoError(t, err)

	assert.Equal(t, "toBuy", form.Get("priceMode"))
	assert.Equal(t, "2x Rope @ 12.5 = 25", form.Get("items_text"))
	assert.Equal(t, "25", form.Get("total"))
	assert.Equal(t, "trader-storefront", form.Get("source"))
	assert.Contains(t, form, "website")
	assert.Equal(t, "", form.Get("website"))
	assert.Contains(t, form, "discord")

	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(form.Get("items_json")), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Rope", items[0]["item"])
	assert.Equal(t, 2.0, items[0]["qty"])
	assert.Equal(t, 12.5, items[0]["unitPrice"])
	assert.Equal(t, 25.0, items[0]["lineTotal"])
	assert.NotContains(t, items[0], "weBuy")
}

func TestBuildForm_WeBuyModeIncludesWeBuyField(t *testing.T) {
	sub := models.OrderSubmission{
		PriceMode: models.PriceModeWeBuy,
		Lines:     []models.OrderLine{{Item: "Bandage", Qty: 7, UnitPrice: 150, LineTotal: 1050}},
		Total:     1050,
	}

	form, err := BuildForm(sub, "x")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"item":"Bandage","qty":7,"weBuy":150,"unitPrice":150,"lineTotal":1050}]`, form.Get("items_json"))
}
