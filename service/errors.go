package service

import (
	"errors"
	"fmt"
)

// ErrBadCatalogResponse is returned when the catalog payload is unsuccessful or malformed
var ErrBadCatalogResponse = errors.New("bad catalog response")

// ErrSubmissionInFlight is returned when an order is submitted while another is still pending
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// ErrHoneypotFilled is returned when the hidden anti-automation field carries a value
var ErrHoneypotFilled = errors.New("honeypot field filled")

// ValidationError is a local validation failure; it never reaches the network
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// SubmissionError is a failed order submission reported by the endpoint
type SubmissionError struct {
	StatusCode int    // 0 when the endpoint answered 2xx with ok=false
	Message    string // Server message or fallback text
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("order endpoint error %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}
