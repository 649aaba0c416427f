// Package scan models the external receipt-scanning collaborator. The
// engine only consumes its resolved draft; accuracy and transport are out
// of scope, so the package ships a deterministic stub for local use and
// tests.
package scan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deductfinder/backend/internal/model"
)

// ErrorCode represents specific scan error types.
type ErrorCode string

const (
	ErrScanTimeout  ErrorCode = "SCAN_TIMEOUT"
	ErrInvalidImage ErrorCode = "INVALID_IMAGE"
	ErrScanFailed   ErrorCode = "SCAN_FAILED"
)

// Error is a structured error for scan failures.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// File describes an uploaded receipt image.
type File struct {
	Name        string
	SizeBytes   int64
	ContentType string
}

// Draft is the best-effort expense draft a scan resolves to. It is ordinary
// input: the service re-validates it like any user-entered expense, and
// unknown currencies or categories surface as errors rather than defaults.
type Draft struct {
	Description string         `json:"description"`
	Amount      float64        `json:"amount"`
	Category    model.Category `json:"category"`
	Currency    model.Currency `json:"currency"`
}

// Scanner is the receipt-scan collaborator.
type Scanner interface {
	Scan(ctx context.Context, file File) (*Draft, error)
}

// cannedDrafts are the stub's candidate results.
var cannedDrafts = []Draft{
	{Description: "Office Depot - Paper", Amount: 45.99, Category: model.CategoryOfficeSupplies, Currency: model.CurrencyUSD},
	{Description: "Client Dinner", Amount: 127.50, Category: model.CategoryMeals, Currency: model.CurrencyUSD},
}

// StubScanner returns canned drafts after a configurable delay. Pick
// selects among the candidates; tests inject a fixed pick instead of
// relying on randomness.
type StubScanner struct {
	Delay time.Duration
	Pick  func(n int) int
}

// Scan resolves to one of the canned drafts, or fails when the context
// expires first or the file is not an image.
func (s *StubScanner) Scan(ctx context.Context, file File) (*Draft, error) {
	if !strings.HasPrefix(file.ContentType, "image/") {
		return nil, &Error{Code: ErrInvalidImage, Message: fmt.Sprintf("unsupported content type %q", file.ContentType)}
	}

	delay := s.Delay
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, &Error{Code: ErrScanTimeout, Message: "scan cancelled", Cause: ctx.Err()}
		case <-time.After(delay):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, &Error{Code: ErrScanTimeout, Message: "scan cancelled", Cause: err}
	}

	idx := 0
	if s.Pick != nil {
		idx = s.Pick(len(cannedDrafts))
	}
	if idx < 0 || idx >= len(cannedDrafts) {
		return nil, &Error{Code: ErrScanFailed, Message: fmt.Sprintf("pick out of range: %d", idx)}
	}
	draft := cannedDrafts[idx]
	return &draft, nil
}
