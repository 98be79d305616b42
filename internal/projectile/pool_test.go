package projectile

import (
	"testing"

	"salvo/server/internal/vecmath"
)

func spawnN(p *Pool, n int) {
	for i := 1; i <= n; i++ {
		p.Spawn(Entity{ID: EntityID(i), Position: vecmath.V(float64(i), 0, 0)})
	}
}

func TestPoolCompactPreservesSpawnOrder(t *testing.T) {
	pool := NewPool(8)
	spawnN(pool, 6)

	pool.At(1).Release()
	pool.At(3).Release()
	pool.At(4).Release()

	if removed := pool.Compact(); removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
	want := []EntityID{1, 3, 6}
	if pool.Len() != len(want) {
		t.Fatalf("expected %d entities, got %d", len(want), pool.Len())
	}
	for i, id := range want {
		if got := pool.At(i).ID; got != id {
			t.Fatalf("expected slot %d to hold %d, got %d", i, id, got)
		}
	}
}

func TestPoolFindAndUnregister(t *testing.T) {
	pool := NewPool(4)
	spawnN(pool, 4)

	idx, ok := pool.Find(3)
	if !ok || idx != 2 {
		t.Fatalf("expected id 3 at slot 2, got %d (%v)", idx, ok)
	}
	if _, ok := pool.Find(99); ok {
		t.Fatalf("expected unknown id lookup to fail")
	}

	if !pool.Unregister(2) {
		t.Fatalf("expected unregister to succeed")
	}
	if pool.Unregister(2) {
		t.Fatalf("expected second unregister to fail")
	}
	if _, ok := pool.Find(2); ok {
		t.Fatalf("expected id 2 to be gone")
	}
	if idx, _ := pool.Find(4); idx != 2 {
		t.Fatalf("expected id 4 to shift to slot 2, got %d", idx)
	}
}

func TestPoolPositionsSkipsReleased(t *testing.T) {
	pool := NewPool(4)
	spawnN(pool, 3)
	pool.At(0).Release()

	if pool.Active() != 2 {
		t.Fatalf("expected 2 active entities, got %d", pool.Active())
	}
	positions := pool.Positions(nil)
	if len(positions) != 2 || positions[0].X != 2 || positions[1].X != 3 {
		t.Fatalf("unexpected positions %+v", positions)
	}
}

func TestPoolCompactDoesNotAllocate(t *testing.T) {
	pool := NewPool(256)
	var next EntityID
	allocs := testing.AllocsPerRun(100, func() {
		for pool.Len() < 128 {
			next++
			pool.Spawn(Entity{ID: next})
		}
		for i := 0; i < pool.Len(); i += 2 {
			pool.At(i).Release()
		}
		pool.Compact()
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations per tick, got %v", allocs)
	}
}

func TestEntityCooldownSuppression(t *testing.T) {
	var e Entity
	e.ArmCooldown(5, 0.1)
	if !e.Suppressed(5) {
		t.Fatalf("expected collider 5 to be suppressed")
	}
	if e.Suppressed(6) {
		t.Fatalf("expected other colliders to pass")
	}
	e.Cooldown = 0
	if e.Suppressed(5) {
		t.Fatalf("expected expired cooldown to stop suppressing")
	}
}
