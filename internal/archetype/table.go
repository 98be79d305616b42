package archetype

import (
	"errors"
	"fmt"
)

// ErrUnknownArchetype is returned for ids the table never issued.
var ErrUnknownArchetype = errors.New("unknown archetype")

// ID indexes the archetype table. Zero is never valid.
type ID uint32

// Table owns every compiled archetype of a simulation.
type Table struct {
	entries []*Archetype
}

// NewTable constructs an empty table.
func NewTable() *Table {
	return &Table{entries: []*Archetype{nil}}
}

// Register appends an archetype and returns its id.
func (t *Table) Register(a *Archetype) ID {
	if t == nil || a == nil {
		return 0
	}
	if len(t.entries) == 0 {
		t.entries = append(t.entries, nil)
	}
	t.entries = append(t.entries, a)
	return ID(len(t.entries) - 1)
}

// Replace swaps the snapshot stored under id.
func (t *Table) Replace(id ID, a *Archetype) error {
	if !t.valid(id) {
		return fmt.Errorf("replace archetype %d: %w", id, ErrUnknownArchetype)
	}
	if a == nil {
		return fmt.Errorf("replace archetype %d: nil archetype", id)
	}
	t.entries[id] = a
	return nil
}

// Get returns the archetype stored under id.
func (t *Table) Get(id ID) (*Archetype, bool) {
	if !t.valid(id) {
		return nil, false
	}
	return t.entries[id], true
}

// Len reports the number of registered archetypes.
func (t *Table) Len() int {
	if t == nil || len(t.entries) == 0 {
		return 0
	}
	return len(t.entries) - 1
}

// IDs returns every registered id in registration order.
func (t *Table) IDs() []ID {
	n := t.Len()
	if n == 0 {
		return nil
	}
	ids := make([]ID, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, ID(i))
	}
	return ids
}

// ByWeapon returns the ids compiled for weaponID.
func (t *Table) ByWeapon(weaponID string) []ID {
	var ids []ID
	for _, id := range t.IDs() {
		if t.entries[id].WeaponID == weaponID {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *Table) valid(id ID) bool {
	return t != nil && id != 0 && int(id) < len(t.entries)
}
