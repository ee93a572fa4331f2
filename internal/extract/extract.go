// Package extract wraps the AI vision call that reads a photographed bill.
// The adapter is untrusted: every returned value is advisory and user-editable
// before anything reaches the store.
package extract

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Result is the adapter's best-effort guess at the bill's fields. PartyName
// and Amount are required; Items and Date may be absent.
type Result struct {
	PartyName string
	Amount    decimal.Decimal
	Items     []string
	Date      string // YYYY-MM-DD, empty if the model omitted it
}

// BillExtractor turns an image into a Result. Pure request/response, no state.
type BillExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string) (Result, error)
}

// Error means the extraction failed or returned unusable data. It is
// recovered at the workflow: the draft is discarded or corrected manually,
// and the store is never touched.
type Error struct {
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Unavailable is the adapter used when no API key is configured. Scans fail
// with a hint; manual entry still works.
type Unavailable struct{}

func (Unavailable) Extract(context.Context, []byte, string) (Result, error) {
	return Result{}, &Error{Reason: "no API key configured, set GEMINI_API_KEY or enter the bill manually"}
}
