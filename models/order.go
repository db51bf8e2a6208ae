package models

import "time"

// OrderLine represents one priced line of an order (only built for qty > 0)
type OrderLine struct {
	Item      string  `json:"item"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

// OrderSubmission is the ephemeral payload sent to the order endpoint
type OrderSubmission struct {
	PlayerName string      `json:"playerName"`
	Server     string      `json:"server"`
	Discord    string      `json:"discord,omitempty"`
	PriceMode  PriceMode   `json:"priceMode"`
	Lines      []OrderLine `json:"lines"`
	Total      float64     `json:"total"`
	Website    string      `json:"-"` // Honeypot, must stay empty
}

// SubmitRequest is the user input for an order submission
// Example: {"playerName": "Survivor", "server": "EU-1", "discord": "surv#0001", "priceMode": "weBuy"}
type SubmitRequest struct {
	PlayerName string `json:"playerName"`
	Server     string `json:"server"`
	Discord    string `json:"discord"`
	PriceMode  string `json:"priceMode"`
	Website    string `json:"website"`
}

// SubmissionResult is the outcome reported back to the user
// Example response:
//
//	{
//	  "ok": true,
//	  "orderId": "X123",
//	  "message": "Order submitted! ID: X123",
//	  "receiptUrl": "/receipt?orderId=X123"
//	}
type SubmissionResult struct {
	OK         bool   `json:"ok"`
	OrderID    string `json:"orderId,omitempty"`
	Message    string `json:"message"`
	ReceiptURL string `json:"receiptUrl,omitempty"`
	Err        error  `json:"-"` // Underlying failure, nil on success
}

// Receipt is the local record of a successful submission
type Receipt struct {
	OrderID     string      `json:"orderId"`
	PlayerName  string      `json:"playerName"`
	Server      string      `json:"server"`
	Discord     string      `json:"discord,omitempty"`
	PriceMode   PriceMode   `json:"priceMode"`
	Lines       []OrderLine `json:"lines"`
	Total       float64     `json:"total"`
	SubmittedAt time.Time   `json:"submittedAt"`
}

// CatalogStatus is the user-facing status of the last catalog load
type CatalogStatus struct {
	Message    string    `json:"message"`
	Good       bool      `json:"good"`
	Online     bool      `json:"online"`
	Demo       bool      `json:"demo"`
	LastLoaded time.Time `json:"lastLoaded"`
	Generation uint64    `json:"generation"`
}
