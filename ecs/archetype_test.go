package ecs_test

import (
	"testing"

	"github.com/plus3/packecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchetypeExactMatch(t *testing.T) {
	w := ecs.NewWorld(8)
	sub := ecs.RegisterComponent[SubComponent](w)
	p0 := ecs.RegisterComponent[P0](w)
	p1 := ecs.RegisterComponent[P1](w)

	id := w.CreateEntity()
	require.NoError(t, ecs.Add[SubComponent](w, id))

	arch, ok := w.ArchetypeFor(sub)
	require.True(t, ok)

	assert.True(t, arch.CorrespondsTo(sub))
	assert.False(t, arch.CorrespondsTo(p0))
	assert.False(t, arch.CorrespondsTo(p1))
	assert.False(t, arch.CorrespondsToAll(sub, p0))

	_, ok = w.ArchetypeFor(p0)
	assert.False(t, ok)
}

func TestArchetypeSignatureIsStable(t *testing.T) {
	w, _ := newTestWorld(8)
	pos, _ := ecs.ComponentIdOf[Position](w)
	vel, _ := ecs.ComponentIdOf[Velocity](w)

	a := w.CreateEntity()
	require.NoError(t, ecs.Add[Position](w, a))
	flat, _ := w.ArchetypeOf(a)

	require.NoError(t, ecs.Add[Velocity](w, a))
	table, _ := w.ArchetypeOf(a)

	assert.NotEqual(t, flat.ID(), table.ID())
	assert.Equal(t, []ecs.ComponentId{pos}, flat.Components())
	assert.Equal(t, []ecs.ComponentId{pos, vel}, table.Components())
	assert.False(t, flat.Has(a))
	assert.True(t, table.Has(a))

	b := w.CreateEntity()
	require.NoError(t, ecs.Add[Position](w, b))
	again, _ := w.ArchetypeOf(b)
	assert.Equal(t, flat.ID(), again.ID())
}

func TestArchetypeRowsAndIteration(t *testing.T) {
	w, _ := newTestWorld(8)
	pos, _ := ecs.ComponentIdOf[Position](w)
	vel, _ := ecs.ComponentIdOf[Velocity](w)

	var ids []ecs.EntityId
	for i := range 4 {
		id := w.CreateEntity()
		require.NoError(t, ecs.AddWith(w, id, Position{A: int32(i)}))
		require.NoError(t, ecs.AddWith(w, id, Velocity{B: int32(i * 10)}))
		ids = append(ids, id)
	}
	table, _ := w.ArchetypeFor(pos, vel)
	require.Equal(t, 4, table.Len())

	row, ok := table.GetFor(ids[2])
	require.True(t, ok)
	value, ok := row.Get(vel)
	require.True(t, ok)
	assert.Equal(t, int32(20), value.(*Velocity).B)

	t.Run("for each visits in row order", func(t *testing.T) {
		var seen []ecs.EntityId
		table.ForEach(pos, func(id ecs.EntityId, v any) {
			seen = append(seen, id)
		})
		assert.Equal(t, ids, seen)
	})

	t.Run("for each 2 yields both components", func(t *testing.T) {
		sum := int32(0)
		table.ForEach2(pos, vel, func(id ecs.EntityId, a, b any) {
			sum += a.(*Position).A + b.(*Velocity).B
		})
		assert.Equal(t, int32(0+1+2+3+0+10+20+30), sum)
	})

	t.Run("deleted rows are skipped and reused", func(t *testing.T) {
		require.NoError(t, w.Delete(ids[1]))
		count := 0
		table.ForEach(pos, func(id ecs.EntityId, _ any) {
			assert.NotEqual(t, ids[1], id)
			count++
		})
		assert.Equal(t, 3, count)

		fresh := w.CreateEntity()
		require.NoError(t, ecs.Add[Position](w, fresh))
		require.NoError(t, ecs.Add[Velocity](w, fresh))
		assert.Equal(t, int32(0), ecs.Get[Position](w, fresh).A, "reused row is zeroed")
		assert.Equal(t, 4, table.Len())
	})
}

func TestFlatArchetype(t *testing.T) {
	w, _ := newTestWorld(8)
	pos, _ := ecs.ComponentIdOf[Position](w)

	id := w.CreateEntity()
	require.NoError(t, ecs.AddWith(w, id, Position{A: 5}))
	flat, ok := w.ArchetypeFor(pos)
	require.True(t, ok)

	row, ok := flat.GetFor(id)
	require.True(t, ok)
	assert.Equal(t, []ecs.ComponentId{pos}, row.Components)
	assert.Equal(t, &Position{A: 5}, row.Values[0])

	count := 0
	flat.ForEach(pos, func(got ecs.EntityId, v any) {
		assert.Equal(t, id, got)
		assert.Equal(t, int32(5), v.(*Position).A)
		count++
	})
	assert.Equal(t, 1, count)

	flat.DeleteFor(id)
	assert.False(t, flat.Has(id))
	_, ok = flat.GetFor(id)
	assert.False(t, ok)
}

func TestFlatArchetypeVisitsEachEntityOnce(t *testing.T) {
	w, _ := newTestWorld(64)
	pos, _ := ecs.ComponentIdOf[Position](w)

	var ids []ecs.EntityId
	for i := range 40 {
		id := w.CreateEntity()
		require.NoError(t, ecs.AddWith(w, id, Position{A: int32(i)}))
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i += 3 {
		require.NoError(t, w.Delete(ids[i]))
	}
	var live []ecs.EntityId
	for _, id := range ids {
		if w.IsAlive(id) {
			live = append(live, id)
		}
	}

	flat, _ := w.ArchetypeFor(pos)
	var seen []ecs.EntityId
	flat.ForEach(pos, func(id ecs.EntityId, _ any) {
		seen = append(seen, id)
	})
	assert.ElementsMatch(t, live, seen)
}

func TestInvalidIterationArity(t *testing.T) {
	w, packed := newTestWorld(8)
	pos, _ := ecs.ComponentIdOf[Position](w)
	pv, _ := ecs.ComponentIdOf[PositionVelocity](w)

	id := w.CreateEntity()
	require.NoError(t, ecs.Add[Position](w, id))
	flat, _ := w.ArchetypeFor(pos)

	assert.Panics(t, func() {
		flat.ForEach2(pos, pos, func(ecs.EntityId, any, any) {})
	})
	assert.Panics(t, func() {
		packed.ForEach2(pv, pv, func(ecs.EntityId, any, any) {})
	})
}

func TestCreateForWithCarriesValues(t *testing.T) {
	w, _ := newTestWorld(8)
	pos, _ := ecs.ComponentIdOf[Position](w)
	vel, _ := ecs.ComponentIdOf[Velocity](w)

	a := w.CreateEntity()
	require.NoError(t, ecs.Add[Position](w, a))
	require.NoError(t, ecs.Add[Velocity](w, a))
	table, _ := w.ArchetypeFor(pos, vel)

	b := w.CreateEntity()
	table.CreateForWith(b, ecs.Row{
		Components: []ecs.ComponentId{vel},
		Values:     []any{&Velocity{B: 11}},
	})

	assert.Equal(t, &Position{}, table.Component(b, pos))
	assert.Equal(t, &Velocity{B: 11}, table.Component(b, vel))
	assert.Nil(t, table.Component(b, ecs.NewComponentId(99, false)))
}
