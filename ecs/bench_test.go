package ecs_test

import (
	"testing"

	"github.com/plus3/packecs/ecs"
)

func BenchmarkCreateEntity(b *testing.B) {
	w, _ := newTestWorld(b.N)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.CreateEntity()
	}
}

func BenchmarkDelete(b *testing.B) {
	w, _ := newTestWorld(b.N)

	ids := make([]ecs.EntityId, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = w.CreateEntity()
		_ = ecs.Add[Position](w, ids[i])
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.Delete(ids[i])
	}
}

func BenchmarkGet(b *testing.B) {
	w, _ := newTestWorld(16)
	id := w.CreateEntity()
	_ = ecs.Add[Position](w, id)
	_ = ecs.Add[Velocity](w, id)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.Get[Position](w, id)
	}
}

func BenchmarkAddComponent(b *testing.B) {
	w, _ := newTestWorld(b.N)

	ids := make([]ecs.EntityId, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = w.CreateEntity()
		_ = ecs.Add[Position](w, ids[i])
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.Add[Velocity](w, ids[i])
	}
}

func BenchmarkRemoveComponent(b *testing.B) {
	w, _ := newTestWorld(b.N)

	ids := make([]ecs.EntityId, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = w.CreateEntity()
		_ = ecs.Add[Position](w, ids[i])
		_ = ecs.Add[Velocity](w, ids[i])
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ecs.Remove[Velocity](w, ids[i])
	}
}

func benchWorld(b *testing.B, n int) (*ecs.World, *ecs.PackedArchetype, []ecs.EntityId) {
	b.Helper()
	w, packed := newTestWorld(n)
	ids := make([]ecs.EntityId, n)
	for i := range n {
		ids[i] = w.CreateEntity()
		_ = ecs.Add[Position](w, ids[i])
		if i > n/2 {
			_ = ecs.Add[Velocity](w, ids[i])
		}
		if i > n*3/4 {
			_ = ecs.Add[PositionVelocity](w, ids[i])
		}
	}
	return w, packed, ids
}

func BenchmarkForEntitiesWith(b *testing.B) {
	w, _, _ := benchWorld(b, 10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.ForEntitiesWith(w, func(_ ecs.EntityId, p *Position) {
			p.A++
		})
	}
}

func BenchmarkForEntitiesWith2(b *testing.B) {
	w, _, _ := benchWorld(b, 10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ecs.ForEntitiesWith2(w, func(_ ecs.EntityId, p *Position, v *Velocity) {
			p.A += v.B
		})
	}
}

func BenchmarkPackedOn(b *testing.B) {
	w, _, ids := benchWorld(b, 10000)
	bump := func(v ecs.PackedView) { v.AddInt32(fieldA, 1) }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, id := range ids {
			ecs.On[PositionVelocity](w, id, bump)
		}
	}
}

func BenchmarkPackedUpdateAllAlive(b *testing.B) {
	_, packed, _ := benchWorld(b, 10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		packed.UpdateAllAlive()
	}
}
