package world

import "sync"

// ImpactRecord is one EmitImpact call.
type ImpactRecord struct {
	Position  Vec3
	Normal    Vec3
	TravelDir Vec3
}

// DamageRecord is one EmitDamageDealt call.
type DamageRecord struct {
	Target            ActorID
	Snapshot          DamageSnapshot
	KnockbackDir      Vec3
	KnockbackStrength float64
}

// ExpiryRecord is one EmitExpired call.
type ExpiryRecord struct {
	Archetype uint32
	Entity    uint64
	Position  Vec3
}

// Recorder is an Events implementation that keeps every notification in
// memory. Tests read it directly; the server drains it for diagnostics.
type Recorder struct {
	mu       sync.Mutex
	impacts  []ImpactRecord
	damage   []DamageRecord
	expiries []ExpiryRecord
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) EmitImpact(position, normal, travelDir Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.impacts = append(r.impacts, ImpactRecord{Position: position, Normal: normal, TravelDir: travelDir})
}

func (r *Recorder) EmitDamageDealt(target ActorID, snapshot DamageSnapshot, knockbackDir Vec3, knockbackStrength float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.damage = append(r.damage, DamageRecord{
		Target:            target,
		Snapshot:          snapshot,
		KnockbackDir:      knockbackDir,
		KnockbackStrength: knockbackStrength,
	})
}

func (r *Recorder) EmitExpired(archetype uint32, entity uint64, position Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expiries = append(r.expiries, ExpiryRecord{Archetype: archetype, Entity: entity, Position: position})
}

// Impacts returns a copy of the recorded impacts.
func (r *Recorder) Impacts() []ImpactRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ImpactRecord(nil), r.impacts...)
}

// Damage returns a copy of the recorded damage notifications.
func (r *Recorder) Damage() []DamageRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DamageRecord(nil), r.damage...)
}

// Expiries returns a copy of the recorded expiries.
func (r *Recorder) Expiries() []ExpiryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ExpiryRecord(nil), r.expiries...)
}

// Counts reports how many of each notification were recorded.
func (r *Recorder) Counts() (impacts, damage, expiries int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.impacts), len(r.damage), len(r.expiries)
}

// Reset discards every recorded notification.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.impacts = r.impacts[:0]
	r.damage = r.damage[:0]
	r.expiries = r.expiries[:0]
}
