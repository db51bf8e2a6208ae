package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trader-storefront/models"
)

// maxErrorSnippet is how much of a non-JSON error body is echoed back to the user
const maxErrorSnippet = 200

// EndpointClient talks to the remote catalog/order endpoint
type EndpointClient struct {
	endpointURL string
	httpClient  *http.Client
	logger      *zap.Logger
}

// Ensure EndpointClient implements the source and poster contracts
var (
	_ CatalogSource = (*EndpointClient)(nil)
	_ OrderPoster   = (*EndpointClient)(nil)
)

// EndpointOption configures an EndpointClient
type EndpointOption func(*EndpointClient)

// NewEndpointClient creates a client for the given endpoint URL
func NewEndpointClient(endpointURL string, opts ...EndpointOption) *EndpointClient {
	c := &EndpointClient{
		endpointURL: endpointURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) EndpointOption {
	return func(c *EndpointClient) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) EndpointOption {
	return func(c *EndpointClient) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) EndpointOption {
	return func(c *EndpointClient) {
		c.logger = logger
	}
}

// catalogResponse is the envelope returned by GET ?mode=catalog
type catalogResponse struct {
	OK      bool            `json:"ok"`
	Catalog json.RawMessage `json:"catalog"`
}

// FetchCatalog issues GET <endpoint>?mode=catalog and normalizes the entries
func (c *EndpointClient) FetchCatalog(ctx context.Context) (models.Catalog, error) {
	u, err := url.Parse(c.endpointURL)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint url: %w", err)
	}
	q := u.Query()
	q.Set("mode", "catalog")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrBadCatalogResponse, resp.StatusCode)
	}

	var envelope catalogResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCatalogResponse, err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("%w: ok=false", ErrBadCatalogResponse)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(envelope.Catalog, &raw); err != nil || raw == nil {
		return nil, fmt.Errorf("%w: catalog is not an array", ErrBadCatalogResponse)
	}

	catalog := make(models.Catalog, 0, len(raw))
	for _, element := range raw {
		var fields map[string]any
		if err := json.Unmarshal(element, &fields); err != nil {
			continue
		}
		if entry, ok := NormalizeEntry(fields); ok {
			catalog = append(catalog, entry)
		}
	}

	c.logger.Debug("catalog fetched",
		zap.Int("entries", len(catalog)),
		zap.Int("dropped", len(raw)-len(catalog)),
	)
	return catalog, nil
}

// orderResponse is the JSON answer to an order POST
type orderResponse struct {
	OK      *bool           `json:"ok"`
	OrderID json.RawMessage `json:"orderId"`
	ID      json.RawMessage `json:"id"`
	Message string          `json:"message"`
}

// PostOrder sends the form-encoded order and returns the order id (may be empty).
// Non-2xx answers and ok=false answers are returned as *SubmissionError.
func (c *EndpointClient) PostOrder(ctx context.Context, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	// A body that isn't JSON is tolerated; only the status code decides then.
	var data *orderResponse
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		var parsed orderResponse
		if err := json.Unmarshal(trimmed, &parsed); err == nil {
			data = &parsed
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if data != nil && data.Message != "" {
			msg = data.Message
		} else if snippet := snippetOf(body); snippet != "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, snippet)
		}
		return "", &SubmissionError{StatusCode: resp.StatusCode, Message: msg}
	}

	if data != nil && data.OK != nil && !*data.OK {
		msg := data.Message
		if msg == "" {
			msg = "Order rejected"
		}
		return "", &SubmissionError{Message: msg}
	}

	var orderID string
	if data != nil {
		orderID = rawID(data.OrderID)
		if orderID == "" {
			orderID = rawID(data.ID)
		}
	}

	c.logger.Info("order posted",
		zap.String("request_id", requestID),
		zap.String("order_id", orderID),
	)
	return orderID, nil
}

// rawID accepts a JSON string or number
func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

func snippetOf(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		s = strings.ToValidUTF8(s[:maxErrorSnippet], "")
	}
	return s
}
