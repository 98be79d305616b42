package projectile

import (
	"sort"

	"salvo/server/internal/vecmath"
)

// Pool is a dense list of projectiles belonging to one archetype. Entities are
// stored by value and kept in spawn order; released slots are squeezed out by
// Compact without reallocating.
type Pool struct {
	entities []Entity
}

// NewPool constructs a pool with room for capacity entities.
func NewPool(capacity int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{entities: make([]Entity, 0, capacity)}
}

// Spawn appends e and returns a pointer valid until the next Spawn or Compact.
func (p *Pool) Spawn(e Entity) *Entity {
	if p == nil {
		return nil
	}
	e.released = false
	p.entities = append(p.entities, e)
	return &p.entities[len(p.entities)-1]
}

// Len reports the number of stored entities, including released ones not yet
// compacted.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entities)
}

// At returns the entity in slot i.
func (p *Pool) At(i int) *Entity {
	if p == nil || i < 0 || i >= len(p.entities) {
		return nil
	}
	return &p.entities[i]
}

// Compact removes released entities in place, preserving the order of the
// survivors, and returns how many were removed.
func (p *Pool) Compact() int {
	if p == nil {
		return 0
	}
	write := 0
	for read := range p.entities {
		if p.entities[read].released {
			continue
		}
		if write != read {
			p.entities[write] = p.entities[read]
		}
		write++
	}
	removed := len(p.entities) - write
	clear(p.entities[write:])
	p.entities = p.entities[:write]
	return removed
}

// Find returns the slot holding id. Spawn order keeps ids sorted.
func (p *Pool) Find(id EntityID) (int, bool) {
	if p == nil {
		return 0, false
	}
	i := sort.Search(len(p.entities), func(i int) bool {
		return p.entities[i].ID >= id
	})
	if i < len(p.entities) && p.entities[i].ID == id {
		return i, true
	}
	return 0, false
}

// Unregister removes id immediately. It must not be called mid-tick.
func (p *Pool) Unregister(id EntityID) bool {
	i, ok := p.Find(id)
	if !ok {
		return false
	}
	p.entities[i].released = true
	p.Compact()
	return true
}

// Active reports the number of entities not awaiting compaction.
func (p *Pool) Active() int {
	if p == nil {
		return 0
	}
	n := 0
	for i := range p.entities {
		if !p.entities[i].released {
			n++
		}
	}
	return n
}

// Positions appends the position of every live entity to dst.
func (p *Pool) Positions(dst []vecmath.Vec3) []vecmath.Vec3 {
	if p == nil {
		return dst
	}
	for i := range p.entities {
		if p.entities[i].released {
			continue
		}
		dst = append(dst, p.entities[i].Position)
	}
	return dst
}

// Each calls fn for every live entity in slot order.
func (p *Pool) Each(fn func(*Entity)) {
	if p == nil || fn == nil {
		return
	}
	for i := range p.entities {
		if p.entities[i].released {
			continue
		}
		fn(&p.entities[i])
	}
}
