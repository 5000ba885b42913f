package ecs

import (
	"reflect"
	"slices"

	"github.com/TheBitDrifter/mask"
	"github.com/rotisserie/eris"
)

// Query caches the archetypes whose signature contains every requested
// component. The cache is rebuilt whenever the World's archetype count changes.
type Query struct {
	world              *World
	components         []ComponentId
	mask               mask.Mask
	cachedArchetypes   []Archetype
	lastArchetypeCount int
}

// NewQuery creates a query over components. Queries with the same component
// set are shared within a World.
func NewQuery(w *World, components ...ComponentId) *Query {
	for _, c := range components {
		if _, ok := w.registry.lookup(c); !ok {
			fail(eris.Wrapf(ErrUnregisteredComponent, "component %s", c))
		}
	}
	m := w.registry.maskOf(components)
	if q, ok := w.queries[m]; ok {
		return q
	}
	q := &Query{
		world:              w,
		components:         slices.Clone(components),
		mask:               m,
		lastArchetypeCount: -1,
	}
	w.queries[m] = q
	return q
}

func (q *Query) Components() []ComponentId {
	return q.components
}

func (q *Query) invalidateIfNeeded() {
	currentCount := len(q.world.archetypes)
	if currentCount != q.lastArchetypeCount {
		q.cachedArchetypes = nil
		q.lastArchetypeCount = currentCount
	}
}

func (q *Query) ensureArchetypeCache() {
	if q.cachedArchetypes != nil {
		return
	}

	q.cachedArchetypes = make([]Archetype, 0)
	for _, archetype := range q.world.archetypes {
		if archetype.Mask().ContainsAll(q.mask) {
			q.cachedArchetypes = append(q.cachedArchetypes, archetype)
		}
	}
}

// Archetypes returns every archetype the query matches, in creation order
func (q *Query) Archetypes() []Archetype {
	q.invalidateIfNeeded()
	q.ensureArchetypeCache()
	return q.cachedArchetypes
}

// Count returns the number of entities across all matching archetypes
func (q *Query) Count() int {
	n := 0
	for _, a := range q.Archetypes() {
		n += a.Len()
	}
	return n
}

// ForEach visits every matching entity with its value for c
func (q *Query) ForEach(c ComponentId, fn func(EntityId, any)) {
	for _, a := range q.Archetypes() {
		a.ForEach(c, fn)
	}
}

// ForEach2 visits every matching entity with its values for a and b. Matching
// archetypes hold both components, so the arity check never trips here.
func (q *Query) ForEach2(a, b ComponentId, fn func(EntityId, any, any)) {
	for _, arch := range q.Archetypes() {
		arch.ForEach2(a, b, fn)
	}
}

// ForEntitiesWith visits every live entity carrying A, across every archetype
// whose signature contains A. A must be a normal component; packed types go
// through ForEntitiesWithPacked.
func ForEntitiesWith[A any](w *World, fn func(EntityId, *A)) {
	info := mustInfoFor[A](w)
	if info.packed {
		fail(eris.Wrapf(ErrInvalidPackedType, "%s is packed, use ForEntitiesWithPacked", info.name()))
	}

	for _, arch := range NewQuery(w, info.id).Archetypes() {
		switch a := arch.(type) {
		case *tableArchetype:
			eachRow(a, info.id, fn)
		default:
			a.ForEach(info.id, func(id EntityId, v any) {
				fn(id, v.(*A))
			})
		}
	}
}

// ForEntitiesWith2 visits every live entity carrying both A and B
func ForEntitiesWith2[A, B any](w *World, fn func(EntityId, *A, *B)) {
	ia, ib := mustInfoFor[A](w), mustInfoFor[B](w)
	if ia.packed || ib.packed {
		fail(eris.Wrapf(ErrInvalidPackedType, "cannot iterate packed %s with %s", ia.name(), ib.name()))
	}
	if ia == ib {
		fail(eris.Wrapf(ErrInvalidIterationArity, "ForEntitiesWith2 given %s twice", ia.name()))
	}

	for _, arch := range NewQuery(w, ia.id, ib.id).Archetypes() {
		arch.ForEach2(ia.id, ib.id, func(id EntityId, a, b any) {
			fn(id, a.(*A), b.(*B))
		})
	}
}

// ForEntitiesWithPacked visits every live row of T's packed archetype. The
// view is only valid inside fn.
func ForEntitiesWithPacked[T any](w *World, fn func(EntityId, PackedView)) {
	a := packedArchetypeFor[T](w)
	if a == nil {
		fail(eris.Wrapf(ErrMissingArchetype, "{%s}", reflect.TypeFor[T]()))
	}
	a.ForEachView(fn)
}
