package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Get returns id's T, falling back to the entity id is an instance of. It
// returns nil when the entity is dead or has no T. Panics if T was never
// registered.
func Get[T any](w *World, id EntityId) *T {
	info := mustInfoFor[T](w)
	if info.packed {
		return nil
	}
	v, _ := w.Component(id, info.id).(*T)
	return v
}

// Add attaches a zero T to id
func Add[T any](w *World, id EntityId) error {
	return w.AddComponent(id, mustInfoFor[T](w).id)
}

// AddWith attaches T to id and sets its value. For a packed T the value's
// fields are written into the entity's row. Like Add, it does nothing for a
// dead entity.
func AddWith[T any](w *World, id EntityId, value T) error {
	info := mustInfoFor[T](w)
	if err := w.AddComponent(id, info.id); err != nil {
		return err
	}
	if info.packed {
		if a := w.packed[info.id]; a != nil {
			a.On(id, func(v PackedView) {
				v.store(reflect.ValueOf(value))
			})
		}
		return nil
	}

	rec, err := w.record(id)
	if err != nil || rec == nil || rec.archetype == nil {
		return err
	}
	if p, ok := rec.archetype.Component(id, info.id).(*T); ok {
		*p = value
	}
	return nil
}

func Remove[T any](w *World, id EntityId) error {
	return w.RemoveComponent(id, mustInfoFor[T](w).id)
}

// HasComponent reports whether id carries its own T. Instance-of fallbacks
// are not considered.
func HasComponent[T any](w *World, id EntityId) bool {
	return w.Has(id, mustInfoFor[T](w).id)
}

// On runs fn against id's packed T row. It reports whether fn ran.
func On[T any](w *World, id EntityId, fn func(PackedView)) bool {
	a := packedArchetypeFor[T](w)
	if a == nil {
		return false
	}
	return a.On(id, fn)
}

// GetPacked positions a view at id's packed T row
func GetPacked[T any](w *World, id EntityId) (PackedView, bool) {
	a := packedArchetypeFor[T](w)
	if a == nil {
		return PackedView{}, false
	}
	return a.GetPackedFor(id)
}

func packedArchetypeFor[T any](w *World) *PackedArchetype {
	info := mustInfoFor[T](w)
	if !info.packed {
		fail(eris.Wrapf(ErrInvalidPackedType, "%s is a normal component", info.name()))
	}
	return w.packed[info.id]
}
