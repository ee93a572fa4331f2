package storage

import (
	"context"

	"github.com/merchanthub/merchantbook/internal/ledger"
)

// Memory keeps the record set in process. Used by tests and useful for a
// throwaway session with no database on disk.
type Memory struct {
	records []ledger.BillRecord

	// SaveErr, when set, makes every SaveAll fail with it. Lets tests
	// exercise the persistence-failure policy.
	SaveErr error
	// Saves counts successful SaveAll calls.
	Saves int
}

// NewMemory seeds the adapter with an initial record set.
func NewMemory(records []ledger.BillRecord) *Memory {
	return &Memory{records: append([]ledger.BillRecord(nil), records...)}
}

func (m *Memory) Load(_ context.Context) ([]ledger.BillRecord, error) {
	return append([]ledger.BillRecord(nil), m.records...), nil
}

func (m *Memory) SaveAll(_ context.Context, records []ledger.BillRecord) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.records = append([]ledger.BillRecord(nil), records...)
	m.Saves++
	return nil
}
