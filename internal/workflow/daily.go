// Package workflow holds the two user-facing flows over the bill store: the
// per-category daily log with its capture pipeline, and the PIN-gated
// archive browser.
package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/merchanthub/merchantbook/internal/extract"
	"github.com/merchanthub/merchantbook/internal/ledger"
)

// ErrExtractionPending means an extraction request is already outstanding
// for the current draft. No cancellation: the workflow waits for completion
// before accepting another image.
var ErrExtractionPending = errors.New("extraction already in progress")

// DailyLog drives one category's today view and the capture -> extract ->
// confirm -> save pipeline. Sale and Purchase are two instances of this one
// type; the category is a parameter, never a code path.
type DailyLog struct {
	log       zerolog.Logger
	store     *ledger.Store
	extractor extract.BillExtractor
	category  ledger.Category

	mu      sync.Mutex
	pending bool
	draft   *ledger.Draft
}

func NewDailyLog(store *ledger.Store, extractor extract.BillExtractor, category ledger.Category, log zerolog.Logger) *DailyLog {
	return &DailyLog{log: log, store: store, extractor: extractor, category: category}
}

func (w *DailyLog) Category() ledger.Category { return w.category }

// Today returns this category's records for the given date, oldest first.
func (w *DailyLog) Today(now time.Time) []ledger.BillRecord {
	return ledger.DayRecords(w.store.List(), w.category, now)
}

// PendingCount counts today's staging records.
func (w *DailyLog) PendingCount(now time.Time) int {
	return ledger.PendingCount(w.store.List(), w.category, now)
}

// SessionTotal sums today's amounts regardless of lifecycle state.
func (w *DailyLog) SessionTotal(now time.Time) decimal.Decimal {
	return ledger.DailyTotal(w.store.List(), w.category, now)
}

// Busy reports whether an extraction is outstanding. The capture control is
// disabled while it is.
func (w *DailyLog) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Submit runs the image through the extractor and, on success, installs an
// editable draft. On failure the current capture is aborted, the error is
// returned for the user to see, and the store is untouched — the user can
// retry or fall back to manual entry.
func (w *DailyLog) Submit(ctx context.Context, image []byte, mimeType string, now time.Time) (ledger.Draft, error) {
	w.mu.Lock()
	if w.pending {
		w.mu.Unlock()
		return ledger.Draft{}, ErrExtractionPending
	}
	w.pending = true
	w.mu.Unlock()

	res, err := w.extractor.Extract(ctx, image, mimeType)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = false
	if err != nil {
		w.draft = nil
		w.log.Warn().Err(err).Str("category", string(w.category)).Msg("extraction failed")
		return ledger.Draft{}, err
	}

	date := ledger.Day(now)
	if res.Date != "" {
		if d, perr := time.ParseInLocation(time.DateOnly, res.Date, time.UTC); perr == nil {
			date = d
		}
	}
	draft := ledger.Draft{
		PartyName: res.PartyName,
		Amount:    res.Amount,
		Date:      date,
		Items:     res.Items,
	}
	w.draft = &draft
	return draft, nil
}

// BeginManual starts an empty draft for hand entry, replacing any current one.
func (w *DailyLog) BeginManual(now time.Time) ledger.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft := ledger.Draft{Amount: decimal.Zero, Date: ledger.Day(now)}
	w.draft = &draft
	return draft
}

// Draft returns the current editable draft, if any.
func (w *DailyLog) Draft() (ledger.Draft, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft == nil {
		return ledger.Draft{}, false
	}
	return *w.draft, true
}

// SetDraft stores the user's edits to the draft.
func (w *DailyLog) SetDraft(d ledger.Draft) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = &d
}

// Discard abandons the current draft.
func (w *DailyLog) Discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = nil
}

// Confirm validates the draft and creates a staging record with the
// workflow's category. The draft survives a validation failure so the user
// can correct it.
func (w *DailyLog) Confirm(ctx context.Context, now time.Time) (ledger.BillRecord, error) {
	w.mu.Lock()
	if w.draft == nil {
		w.mu.Unlock()
		return ledger.BillRecord{}, &ledger.ValidationError{Field: "draft", Reason: "nothing to confirm"}
	}
	draft := *w.draft
	w.mu.Unlock()

	if err := draft.Validate(); err != nil {
		return ledger.BillRecord{}, err
	}
	rec := draft.Record(uuid.NewString(), w.category, now)
	if err := w.store.Create(ctx, rec); err != nil {
		return ledger.BillRecord{}, err
	}

	w.mu.Lock()
	w.draft = nil
	w.mu.Unlock()
	w.log.Info().Str("id", rec.ID).Str("party", rec.PartyName).Str("category", string(w.category)).Msg("bill recorded")
	return rec, nil
}

// Finalize settles one record.
func (w *DailyLog) Finalize(ctx context.Context, id string) error {
	return w.store.SetFinal(ctx, id)
}

// FinalizeAll settles every staging record for this category today. Returns
// how many records changed.
func (w *DailyLog) FinalizeAll(ctx context.Context, now time.Time) int {
	return w.store.FinalizeAll(ctx, w.category, now)
}

// Delete removes one of today's records.
func (w *DailyLog) Delete(ctx context.Context, id string) error {
	return w.store.Delete(ctx, id)
}
