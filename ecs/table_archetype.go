package ecs

import (
	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// tableArchetype holds two or more normal component types, one typed column
// per component. Rows are recycled through a free list so row numbers stay
// stable while an entity lives here.
type tableArchetype struct {
	archetypeBase

	infos   []*componentInfo
	columns []column

	rows     *intmap.Map[uint32, int] // entity index -> row
	owners   []EntityId               // row -> entity, 0 for a free row
	freeRows []int
}

var _ Archetype = (*tableArchetype)(nil)

func newTableArchetype(id ArchetypeId, infos []*componentInfo, m mask.Mask, alive liveness, capacity int) *tableArchetype {
	a := &tableArchetype{
		archetypeBase: archetypeBase{
			id:         id,
			components: make([]ComponentId, len(infos)),
			mask:       m,
			alive:      alive,
		},
		infos:   infos,
		columns: make([]column, len(infos)),
		rows:    intmap.New[uint32, int](capacity),
	}
	for i, info := range infos {
		a.components[i] = info.id
		a.columns[i] = info.newColumn()
	}
	return a
}

func (a *tableArchetype) allocRow(id EntityId) int {
	if n := len(a.freeRows); n > 0 {
		row := a.freeRows[n-1]
		a.freeRows = a.freeRows[:n-1]
		a.owners[row] = id
		return row
	}
	a.owners = append(a.owners, id)
	return len(a.owners) - 1
}

func (a *tableArchetype) rowOf(id EntityId) (int, bool) {
	row, ok := a.rows.Get(id.Index())
	if !ok || a.owners[row] != id {
		return -1, false
	}
	return row, true
}

func (a *tableArchetype) CreateFor(id EntityId) {
	a.CreateForWith(id, Row{})
}

func (a *tableArchetype) CreateForWith(id EntityId, carried Row) {
	if old, ok := a.rows.Get(id.Index()); ok {
		a.release(old)
	}

	row := a.allocRow(id)
	a.rows.Put(id.Index(), row)
	for i, c := range a.components {
		value, ok := carried.Get(c)
		if !ok {
			value = nil
		}
		a.columns[i].Set(row, value)
	}
}

func (a *tableArchetype) release(row int) {
	for _, col := range a.columns {
		col.Clear(row)
	}
	a.owners[row] = 0
	a.freeRows = append(a.freeRows, row)
}

func (a *tableArchetype) DeleteFor(id EntityId) {
	row, ok := a.rowOf(id)
	if !ok {
		return
	}
	a.rows.Del(id.Index())
	a.release(row)
}

func (a *tableArchetype) Has(id EntityId) bool {
	_, ok := a.rowOf(id)
	return ok
}

func (a *tableArchetype) GetFor(id EntityId) (Row, bool) {
	row, ok := a.rowOf(id)
	if !ok {
		return Row{}, false
	}
	values := make([]any, len(a.columns))
	for i, col := range a.columns {
		values[i] = col.Get(row)
	}
	return Row{Components: a.components, Values: values}, true
}

func (a *tableArchetype) Component(id EntityId, c ComponentId) any {
	idx := a.columnOf(c)
	if idx < 0 {
		return nil
	}
	row, ok := a.rowOf(id)
	if !ok {
		return nil
	}
	return a.columns[idx].Get(row)
}

// ForEach visits rows in row order, skipping free rows and dead owners
func (a *tableArchetype) ForEach(c ComponentId, fn func(EntityId, any)) {
	idx := a.columnOf(c)
	if idx < 0 {
		return
	}
	col := a.columns[idx]
	for row, owner := range a.owners {
		if owner == 0 || !a.alive.IsAlive(owner) {
			continue
		}
		fn(owner, col.Get(row))
	}
}

func (a *tableArchetype) ForEach2(ca, cb ComponentId, fn func(EntityId, any, any)) {
	ia, ib := a.columnOf(ca), a.columnOf(cb)
	if ia < 0 || ib < 0 {
		return
	}
	colA, colB := a.columns[ia], a.columns[ib]
	for row, owner := range a.owners {
		if owner == 0 || !a.alive.IsAlive(owner) {
			continue
		}
		fn(owner, colA.Get(row), colB.Get(row))
	}
}

// eachRow is the typed fast path used by the query helpers
func eachRow[A any](a *tableArchetype, c ComponentId, fn func(EntityId, *A)) {
	idx := a.columnOf(c)
	if idx < 0 {
		return
	}
	col, ok := a.columns[idx].(*typedColumn[A])
	if !ok {
		fail(eris.Errorf("column for %s does not hold %T", c, *new(A)))
	}
	for row, owner := range a.owners {
		if owner == 0 || !a.alive.IsAlive(owner) {
			continue
		}
		fn(owner, col.at(row))
	}
}

func (a *tableArchetype) Len() int {
	return a.rows.Len()
}
