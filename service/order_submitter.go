package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"trader-storefront/models"
	"trader-storefront/pricing"
	"trader-storefront/repository"
	"trader-storefront/state"
	"trader-storefront/utils"
)

// User-facing submission messages
const (
	MsgPlayerNameRequired = "Player name is required."
	MsgServerRequired     = "Server is required."
	MsgNoItems            = "Add at least one item quantity."
	MsgInFlight           = "A submission is already in progress."
	msgSubmitting         = "Submitting order…"
	msgSubmitted          = "Order submitted!"
	msgSubmitFailed       = "Submit failed: "
	msgGenericFailure     = "could not reach the order endpoint"
	msgRejected           = "Order rejected"
)

// OrderSubmitter validates, encodes and posts orders built from the store
type OrderSubmitter struct {
	store     *state.Store
	poster    OrderPoster
	receipts  repository.ReceiptRepositoryInterface
	sourceTag string
	logger    *zap.Logger
	now       func() time.Time

	slot     *semaphore.Weighted
	inFlight atomic.Bool
}

// NewOrderSubmitter creates an OrderSubmitter. receipts may be nil.
func NewOrderSubmitter(
	store *state.Store,
	poster OrderPoster,
	receipts repository.ReceiptRepositoryInterface,
	sourceTag string,
	logger *zap.Logger,
) *OrderSubmitter {
	return &OrderSubmitter{
		store:     store,
		poster:    poster,
		receipts:  receipts,
		sourceTag: sourceTag,
		logger:    logger,
		now:       time.Now,
		slot:      semaphore.NewWeighted(1),
	}
}

// InFlight reports whether a submission is currently being sent
func (s *OrderSubmitter) InFlight() bool {
	return s.inFlight.Load()
}

// Validate checks the request against the given lines, in the order the
// user sees the fields. It returns nil or a *ValidationError.
func Validate(req models.SubmitRequest, lines []models.OrderLine) error {
	if strings.TrimSpace(req.PlayerName) == "" {
		return &ValidationError{Message: MsgPlayerNameRequired}
	}
	if strings.TrimSpace(req.Server) == "" {
		return &ValidationError{Message: MsgServerRequired}
	}
	if len(lines) == 0 {
		return &ValidationError{Message: MsgNoItems}
	}
	return nil
}

// Submit validates the request, posts the order and resets the submitted
// quantities on success.
// The result message is also written to the store's status line.
func (s *OrderSubmitter) Submit(ctx context.Context, req models.SubmitRequest) models.SubmissionResult {
	if !s.slot.TryAcquire(1) {
		s.logger.Warn("⚠️  duplicate submission rejected", zap.Error(ErrSubmissionInFlight))
		return s.fail(MsgInFlight, ErrSubmissionInFlight)
	}
	s.inFlight.Store(true)
	defer func() {
		s.inFlight.Store(false)
		s.slot.Release(1)
	}()

	mode := models.ParsePriceMode(req.PriceMode)
	catalog, quantities := s.store.Snapshot()
	lines := pricing.Lines(catalog, quantities, mode)

	if err := Validate(req, lines); err != nil {
		return s.fail(err.Error(), err)
	}

	if req.Website != "" {
		s.logger.Warn("⚠️  honeypot field filled, dropping submission",
			zap.String("player", strings.TrimSpace(req.PlayerName)),
		)
		return s.fail(msgSubmitFailed+msgRejected, ErrHoneypotFilled)
	}

	sub := models.OrderSubmission{
		PlayerName: strings.TrimSpace(req.PlayerName),
		Server:     strings.TrimSpace(req.Server),
		Discord:    strings.TrimSpace(req.Discord),
		PriceMode:  mode,
		Lines:      lines,
		Total:      pricing.GrandTotal(lines),
	}

	form, err := BuildForm(sub, s.sourceTag)
	if err != nil {
		s.logger.Error("❌ failed to encode order", zap.Error(err))
		return s.fail(msgSubmitFailed+msgGenericFailure, err)
	}

	s.store.SetMessage(msgSubmitting, false)
	s.logger.Info("📥 submitting order",
		zap.String("player", sub.PlayerName),
		zap.String("server", sub.Server),
		zap.Int("lines", len(sub.Lines)),
		zap.Float64("total", sub.Total),
	)

	orderID, err := s.poster.PostOrder(ctx, form)
	if err != nil {
		s.logger.Error("❌ order submission failed", zap.Error(err))
		var subErr *SubmissionError
		if errors.As(err, &subErr) {
			return s.fail(msgSubmitFailed+subErr.Message, err)
		}
		return s.fail(msgSubmitFailed+msgGenericFailure, err)
	}

	s.store.ClearSubmitted(quantities)

	result := models.SubmissionResult{OK: true, OrderID: orderID, Message: msgSubmitted}
	if orderID != "" {
		result.Message = fmt.Sprintf("%s ID: %s", msgSubmitted, orderID)
		result.ReceiptURL = "/receipt?orderId=" + url.QueryEscape(orderID)
		s.saveReceipt(ctx, orderID, sub)
	}

	s.store.SetMessage(result.Message, true)
	s.logger.Info("✓ order submitted", zap.String("order_id", orderID))
	return result
}

func (s *OrderSubmitter) saveReceipt(ctx context.Context, orderID string, sub models.OrderSubmission) {
	if s.receipts == nil {
		return
	}
	receipt := &models.Receipt{
		OrderID:     orderID,
		PlayerName:  sub.PlayerName,
		Server:      sub.Server,
		Discord:     sub.Discord,
		PriceMode:   sub.PriceMode,
		Lines:       sub.Lines,
		Total:       sub.Total,
		SubmittedAt: s.now(),
	}
	if err := s.receipts.Save(ctx, receipt); err != nil {
		s.logger.Warn("⚠️  failed to store receipt", zap.String("order_id", orderID), zap.Error(err))
	}
}

func (s *OrderSubmitter) fail(message string, err error) models.SubmissionResult {
	s.store.SetMessage(message, false)
	return models.SubmissionResult{OK: false, Message: message, Err: err}
}

// lineJSON is one element of the items_json form field
type lineJSON struct {
	Item      string   `json:"item"`
	Qty       int      `json:"qty"`
	WeBuy     *float64 `json:"weBuy,omitempty"`
	UnitPrice float64  `json:"unitPrice"`
	LineTotal float64  `json:"lineTotal"`
}

// BuildForm encodes a submission as the endpoint's form body
func BuildForm(sub models.OrderSubmission, sourceTag string) (url.Values, error) {
	items := make([]lineJSON, 0, len(sub.Lines))
	text := make([]string, 0, len(sub.Lines))
	for _, line := range sub.Lines {
		item := lineJSON{
			Item:      line.Item,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		}
		if sub.PriceMode == models.PriceModeWeBuy {
			unit := line.UnitPrice
			item.WeBuy = &unit
		}
		items = append(items, item)
		text = append(text, FormatLine(line))
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}

	form := url.Values{}
	form.Set("playerName", sub.PlayerName)
	form.Set("server", sub.Server)
	form.Set("discord", sub.Discord)
	form.Set("priceMode", string(sub.PriceMode))
	form.Set("items_json", string(itemsJSON))
	form.Set("items_text", strings.Join(text, "\n"))
	form.Set("total", utils.FormatNumber(sub.Total))
	form.Set("source", sourceTag)
	form.Set("website", "")
	return form, nil
}

// FormatLine renders a line as "{qty}x {item} @ {unitPrice} = {lineTotal}"
func FormatLine(line models.OrderLine) string {
	return strconv.Itoa(line.Qty) + "x " + line.Item +
		" @ " + utils.FormatNumber(line.UnitPrice) +
		" = " + utils.FormatNumber(line.LineTotal)
}
