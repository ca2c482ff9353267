// internal/theme/mutator.go
//
// Write operations on theme rows.
//
// Context
// -------
// Two invariants hold per business: at most one row has is_active = true,
// and at most one has is_default = true.  Every mutation that could touch
// a flag runs as clear-others-then-write under a per-business mutex, so
// two concurrent activations cannot both observe "no active yet" and both
// proceed.  The insert or update is always the *last* statement: a crash
// mid-sequence leaves a temporary "no active theme" state (resolved by the
// default/fallback chain), never two active rows.
//
// Unlike the read paths, nothing here degrades silently—every failure is
// returned to the caller, since a half-applied write cannot be papered
// over with a fallback.
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Mutator applies invariant-preserving writes.  Safe for concurrent use;
// operations on distinct businesses never contend.
type Mutator struct {
	store Store

	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

// NewMutator wraps the store.
func NewMutator(store Store) *Mutator {
	return &Mutator{store: store, locks: make(map[uint64]*sync.Mutex)}
}

// lockBusiness serialises flag-touching sequences for one business.  The
// returned function releases the lock.
func (m *Mutator) lockBusiness(businessID uint64) func() {
	m.mu.Lock()
	l, ok := m.locks[businessID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[businessID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Create inserts a new canonical-format theme.  When makeActive or
// makeDefault is set, the corresponding flag is cleared on every existing
// row first; the insert lands last.
func (m *Mutator) Create(ctx context.Context, businessID uint64, name string, tokens Canonical, makeActive, makeDefault bool) (*Row, error) {
	blob, err := json.Marshal(fillCanonical(tokens))
	if err != nil {
		return nil, fmt.Errorf("encode tokens: %w", err)
	}

	unlock := m.lockBusiness(businessID)
	defer unlock()

	if makeActive {
		if err := m.store.ClearActive(ctx, businessID); err != nil {
			return nil, fmt.Errorf("clear active: %w", err)
		}
	}
	if makeDefault {
		if err := m.store.ClearDefault(ctx, businessID); err != nil {
			return nil, fmt.Errorf("clear default: %w", err)
		}
	}

	return m.store.Insert(ctx, &Row{
		BusinessID: businessID,
		Name:       name,
		IsActive:   makeActive,
		IsDefault:  makeDefault,
		Format:     FormatCanonical,
		Tokens:     blob,
	})
}

// Activate makes the given theme the single active one for its business.
func (m *Mutator) Activate(ctx context.Context, id uint64) (*Row, error) {
	return m.raiseFlag(ctx, id, true)
}

// SetDefault makes the given theme the single default for its business.
func (m *Mutator) SetDefault(ctx context.Context, id uint64) (*Row, error) {
	return m.raiseFlag(ctx, id, false)
}

// raiseFlag implements Activate and SetDefault; active selects which flag.
func (m *Mutator) raiseFlag(ctx context.Context, id uint64, active bool) (*Row, error) {
	row, err := m.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := m.lockBusiness(row.BusinessID)
	defer unlock()

	t := true
	patch := Patch{}
	if active {
		if err := m.store.ClearActive(ctx, row.BusinessID); err != nil {
			return nil, fmt.Errorf("clear active: %w", err)
		}
		patch.IsActive = &t
	} else {
		if err := m.store.ClearDefault(ctx, row.BusinessID); err != nil {
			return nil, fmt.Errorf("clear default: %w", err)
		}
		patch.IsDefault = &t
	}
	return m.store.Update(ctx, id, patch)
}

// Update applies a partial payload.  Raising is_active or is_default on a
// row that does not already hold the flag triggers the same clear-others
// step as Activate/SetDefault before the row itself is written.
func (m *Mutator) Update(ctx context.Context, id uint64, patch Patch) (*Row, error) {
	row, err := m.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := m.lockBusiness(row.BusinessID)
	defer unlock()

	// The pre-lock read only located the business; flags may have moved
	// while we waited for the lock, so re-read before comparing them.
	row, err = m.store.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsActive != nil && *patch.IsActive && !row.IsActive {
		if err := m.store.ClearActive(ctx, row.BusinessID); err != nil {
			return nil, fmt.Errorf("clear active: %w", err)
		}
	}
	if patch.IsDefault != nil && *patch.IsDefault && !row.IsDefault {
		if err := m.store.ClearDefault(ctx, row.BusinessID); err != nil {
			return nil, fmt.Errorf("clear default: %w", err)
		}
	}
	return m.store.Update(ctx, id, patch)
}

// Delete removes a theme.  Deleting the current default is rejected with
// ErrDefaultTheme; the caller must promote another default first.
func (m *Mutator) Delete(ctx context.Context, id uint64) error {
	row, err := m.store.ByID(ctx, id)
	if err != nil {
		return err
	}

	unlock := m.lockBusiness(row.BusinessID)
	defer unlock()

	// The is_default check must see the row as it stands under the lock:
	// a SetDefault finishing between the first read and lock acquisition
	// would otherwise let the current default slip through.
	row, err = m.store.ByID(ctx, id)
	if err != nil {
		return err
	}
	if row.IsDefault {
		return ErrDefaultTheme
	}

	return m.store.Delete(ctx, id)
}
