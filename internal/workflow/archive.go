package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"github.com/merchanthub/merchantbook/internal/ledger"
)

// ErrLocked means the archive gate has not been passed this session.
var ErrLocked = errors.New("archive is locked")

// Archive is the read-mostly browser over the whole store, independent of
// today. The PIN gate in front of it is a deterrent for shoulder-surfers,
// not a security boundary: the PIN sits in plain config.
type Archive struct {
	log      zerolog.Logger
	store    *ledger.Store
	pin      string
	unlocked bool
}

func NewArchive(store *ledger.Store, pin string, log zerolog.Logger) *Archive {
	return &Archive{log: log, store: store, pin: pin}
}

// Unlock checks the PIN. A wrong PIN leaves the archive locked and exposes
// no record data.
func (a *Archive) Unlock(pin string) bool {
	if pin == a.pin {
		a.unlocked = true
	}
	return a.unlocked
}

// Lock re-arms the gate.
func (a *Archive) Lock() { a.unlocked = false }

func (a *Archive) Unlocked() bool { return a.unlocked }

// Search applies the conjunction filter over the full record set.
func (a *Archive) Search(f ledger.Filter) ([]ledger.BillRecord, error) {
	if !a.unlocked {
		return nil, ErrLocked
	}
	return f.Apply(a.store.List()), nil
}

// Suggest returns the stored party name closest to the query when a name
// filter matched nothing, or "" if nothing is close enough.
func (a *Archive) Suggest(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || !a.unlocked {
		return ""
	}
	best, bestDist := "", -1
	for _, r := range a.store.List() {
		cand := strings.ToLower(r.PartyName)
		dist := levenshtein.ComputeDistance(name, cand)
		if bestDist == -1 || dist < bestDist {
			best, bestDist = r.PartyName, dist
		}
	}
	// close enough to be a typo, not a different party
	if bestDist == -1 || bestDist > len(name)/2+1 {
		return ""
	}
	return best
}

// Edit applies a patch through the store contract. Any field except id and
// category, on any record, sale or purchase.
func (a *Archive) Edit(ctx context.Context, id string, p ledger.Patch) error {
	if !a.unlocked {
		return ErrLocked
	}
	return a.store.Update(ctx, id, p)
}

// Delete is unconditional and immediate: no soft delete, no undo.
func (a *Archive) Delete(ctx context.Context, id string) error {
	if !a.unlocked {
		return ErrLocked
	}
	return a.store.Delete(ctx, id)
}
