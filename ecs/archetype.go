package ecs

import (
	"slices"

	"github.com/TheBitDrifter/mask"
)

// ArchetypeId is assigned by the owning World in creation order
type ArchetypeId uint32

// Archetype stores the components of every entity whose signature is exactly
// its component set. The set never changes after creation; adding or removing
// a component moves the entity to another archetype.
//
// Callbacks passed to ForEach and ForEach2 run inline and must not delete or
// re-home the entity being visited. Use Commands for structural changes.
type Archetype interface {
	ID() ArchetypeId
	Components() []ComponentId
	Mask() mask.Mask

	// CorrespondsTo is an exact membership test on the declared component set
	CorrespondsTo(c ComponentId) bool
	// CorrespondsToAll reports whether every given component is declared here
	CorrespondsToAll(cs ...ComponentId) bool

	CreateFor(id EntityId)
	// CreateForWith creates a row, taking values from carried where a component
	// is present there and default-constructing the rest
	CreateForWith(id EntityId, carried Row)
	DeleteFor(id EntityId)
	Has(id EntityId) bool
	GetFor(id EntityId) (Row, bool)
	Component(id EntityId, c ComponentId) any

	ForEach(c ComponentId, fn func(EntityId, any))
	ForEach2(a, b ComponentId, fn func(EntityId, any, any))

	Len() int
}

// Row is one entity's components within an archetype, in the archetype's
// component order. Values are pointers into archetype storage (or a
// PackedView for packed archetypes) and are only valid until the next
// structural change of that archetype.
type Row struct {
	Components []ComponentId
	Values     []any
}

// Get returns the value stored for c in this row
func (r Row) Get(c ComponentId) (any, bool) {
	if i := slices.Index(r.Components, c); i >= 0 {
		return r.Values[i], true
	}
	return nil, false
}

// liveness is the read-only view of the World's slot table handed to archetypes
type liveness interface {
	IsAlive(id EntityId) bool
}

// archetypeBase carries the identity shared by every storage strategy
type archetypeBase struct {
	id         ArchetypeId
	components []ComponentId
	mask       mask.Mask
	alive      liveness
}

func (a *archetypeBase) ID() ArchetypeId {
	return a.id
}

func (a *archetypeBase) Components() []ComponentId {
	return a.components
}

func (a *archetypeBase) Mask() mask.Mask {
	return a.mask
}

func (a *archetypeBase) CorrespondsTo(c ComponentId) bool {
	return slices.Contains(a.components, c)
}

func (a *archetypeBase) CorrespondsToAll(cs ...ComponentId) bool {
	for _, c := range cs {
		if !a.CorrespondsTo(c) {
			return false
		}
	}
	return true
}

func (a *archetypeBase) columnOf(c ComponentId) int {
	return slices.Index(a.components, c)
}
