package ecs

import (
	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

type flatEntry struct {
	id    EntityId
	value any // *T
}

// flatArchetype holds exactly one normal component type. Each entity's value
// is allocated on its own and looked up by entity index.
type flatArchetype struct {
	archetypeBase

	info    *componentInfo
	entries *intmap.Map[uint32, flatEntry]
}

var _ Archetype = (*flatArchetype)(nil)

func newFlatArchetype(id ArchetypeId, info *componentInfo, m mask.Mask, alive liveness, capacity int) *flatArchetype {
	return &flatArchetype{
		archetypeBase: archetypeBase{
			id:         id,
			components: []ComponentId{info.id},
			mask:       m,
			alive:      alive,
		},
		info:    info,
		entries: intmap.New[uint32, flatEntry](capacity),
	}
}

func (a *flatArchetype) entry(id EntityId) (flatEntry, bool) {
	e, ok := a.entries.Get(id.Index())
	if !ok || e.id != id {
		return flatEntry{}, false
	}
	return e, true
}

func (a *flatArchetype) CreateFor(id EntityId) {
	a.entries.Put(id.Index(), flatEntry{id: id, value: a.info.newValue()})
}

func (a *flatArchetype) CreateForWith(id EntityId, carried Row) {
	value, ok := carried.Get(a.info.id)
	if !ok || value == nil {
		a.CreateFor(id)
		return
	}
	a.entries.Put(id.Index(), flatEntry{id: id, value: a.info.clone(value)})
}

func (a *flatArchetype) DeleteFor(id EntityId) {
	if _, ok := a.entry(id); ok {
		a.entries.Del(id.Index())
	}
}

func (a *flatArchetype) Has(id EntityId) bool {
	_, ok := a.entry(id)
	return ok
}

func (a *flatArchetype) GetFor(id EntityId) (Row, bool) {
	e, ok := a.entry(id)
	if !ok {
		return Row{}, false
	}
	return Row{Components: a.components, Values: []any{e.value}}, true
}

func (a *flatArchetype) Component(id EntityId, c ComponentId) any {
	if c != a.info.id {
		return nil
	}
	e, ok := a.entry(id)
	if !ok {
		return nil
	}
	return e.value
}

// ForEach visits every live entry once, in map order rather than insertion
// order. The order is stable for one pass but not across structural changes.
func (a *flatArchetype) ForEach(c ComponentId, fn func(EntityId, any)) {
	if c != a.info.id {
		return
	}
	a.entries.ForEach(func(_ uint32, e flatEntry) bool {
		if a.alive.IsAlive(e.id) {
			fn(e.id, e.value)
		}
		return true
	})
}

func (a *flatArchetype) ForEach2(_, _ ComponentId, _ func(EntityId, any, any)) {
	fail(eris.Wrapf(ErrInvalidIterationArity, "archetype %d holds the single component %s", a.id, a.info.name()))
}

func (a *flatArchetype) Len() int {
	return a.entries.Len()
}
