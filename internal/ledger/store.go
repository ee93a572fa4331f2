package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound means a mutation referenced an id no longer in the store.
	ErrNotFound = errors.New("bill not found")
	// ErrDuplicateID should not occur with generated ids; checked defensively.
	ErrDuplicateID = errors.New("duplicate bill id")
)

// Persister durably stores and retrieves the full record set. The store
// rewrites the whole set after every mutation; there is no incremental
// persistence at the scale this runs at (hundreds of records).
type Persister interface {
	Load(ctx context.Context) ([]BillRecord, error)
	SaveAll(ctx context.Context, records []BillRecord) error
}

// Store owns the record set. It is the single source of truth: every view
// (daily log, archive, aggregation) is a filter or reduce over List.
//
// A persistence failure never rolls back memory state; the in-memory set
// stays authoritative for the session and the error is kept in LastSaveErr.
type Store struct {
	log     zerolog.Logger
	persist Persister

	mu      sync.Mutex
	records map[string]*BillRecord
	order   []string
	saveErr error
}

// NewStore seeds the store from the persister. A load failure starts the
// store empty rather than failing the process.
func NewStore(ctx context.Context, persist Persister, log zerolog.Logger) *Store {
	s := &Store{
		log:     log,
		persist: persist,
		records: make(map[string]*BillRecord),
	}
	loaded, err := persist.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load bills failed, starting empty")
		return s
	}
	for _, r := range loaded {
		r := r.clone()
		s.records[r.ID] = &r
		s.order = append(s.order, r.ID)
	}
	return s
}

// Create inserts a new record.
func (s *Store) Create(ctx context.Context, r BillRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
	}
	rec := r.clone()
	s.records[rec.ID] = &rec
	s.order = append(s.order, rec.ID)
	s.sync(ctx)
	return nil
}

// Patch is a partial update. Nil fields are left alone. ID and Category are
// not patchable.
type Patch struct {
	PartyName *string
	Amount    *decimal.Decimal
	Date      *time.Time
	Items     *[]string
	ImageRef  *string
}

// Update applies a patch to the record with the given id. The patch is
// applied to a copy and swapped in only when every field validates, so a
// rejected patch leaves the record untouched.
func (s *Store) Update(ctx context.Context, id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := rec.clone()
	if p.PartyName != nil {
		if *p.PartyName == "" {
			return &ValidationError{Field: "party name", Reason: "must not be empty"}
		}
		next.PartyName = *p.PartyName
	}
	if p.Amount != nil {
		if p.Amount.IsNegative() {
			return &ValidationError{Field: "amount", Reason: "must not be negative"}
		}
		next.Amount = *p.Amount
	}
	if p.Date != nil {
		next.Date = Day(*p.Date)
	}
	if p.Items != nil {
		next.Items = append([]string(nil), (*p.Items)...)
	}
	if p.ImageRef != nil {
		next.ImageRef = *p.ImageRef
	}
	*rec = next
	s.sync(ctx)
	return nil
}

// SetFinal moves a record to the final state. Idempotent: finalizing a final
// record changes nothing. The reverse transition does not exist.
func (s *Store) SetFinal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if rec.State == StateFinal {
		return nil
	}
	rec.State = StateFinal
	s.sync(ctx)
	return nil
}

// FinalizeAll finalizes every staging record matching category and date.
// It is a fold over the single-record transition: order independent,
// idempotent per record. Returns how many records changed state.
func (s *Store) FinalizeAll(ctx context.Context, category Category, date time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for _, id := range s.order {
		rec := s.records[id]
		if rec.Category == category && SameDay(rec.Date, date) && rec.State == StateStaging {
			rec.State = StateFinal
			changed++
		}
	}
	if changed > 0 {
		s.sync(ctx)
	}
	return changed
}

// Delete removes a record. Deleting an absent id returns ErrNotFound; the
// caller surfaces that as a soft warning, not a failure.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.records, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.sync(ctx)
	return nil
}

// Get returns a copy of one record.
func (s *Store) Get(id string) (BillRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return BillRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.clone(), nil
}

// List returns a snapshot of the full record set in insertion order. The
// snapshot does not alias store state across later mutations.
func (s *Store) List() []BillRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// LastSaveErr reports the most recent persistence failure, or nil. It resets
// on the next successful save.
func (s *Store) LastSaveErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

func (s *Store) snapshot() []BillRecord {
	out := make([]BillRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].clone())
	}
	return out
}

// sync rewrites the full set through the persister. Called with the lock held
// after every successful mutation.
func (s *Store) sync(ctx context.Context) {
	if err := s.persist.SaveAll(ctx, s.snapshot()); err != nil {
		s.saveErr = err
		s.log.Warn().Err(err).Msg("save bills failed, in-memory state kept")
		return
	}
	s.saveErr = nil
}
