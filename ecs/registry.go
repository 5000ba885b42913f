package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MaxComponentTypes is the number of distinct component types one World can register.
const MaxComponentTypes = 64

// componentInfo describes one registered component type
type componentInfo struct {
	id     ComponentId
	bit    uint32
	typ    reflect.Type
	packed bool

	// normal components
	newColumn func() column
	newValue  func() any
	clone     func(src any) any

	// packed components
	layout *PackedLayout
}

func (info *componentInfo) name() string {
	return info.typ.String()
}

// ComponentRegistry maps component types to the ids a World assigned them.
// Each World owns its registry; archetypes only read from it.
type ComponentRegistry struct {
	byType map[reflect.Type]*componentInfo
	byId   map[ComponentId]*componentInfo
	byBit  []*componentInfo
}

func newComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byType: make(map[reflect.Type]*componentInfo),
		byId:   make(map[ComponentId]*componentInfo),
	}
}

func (r *ComponentRegistry) lookupType(t reflect.Type) (*componentInfo, bool) {
	info, ok := r.byType[t]
	return info, ok
}

func (r *ComponentRegistry) lookup(id ComponentId) (*componentInfo, bool) {
	info, ok := r.byId[id]
	return info, ok
}

// Len returns the number of registered component types
func (r *ComponentRegistry) Len() int {
	return len(r.byBit)
}

func (r *ComponentRegistry) maskOf(ids []ComponentId) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		if info, ok := r.byId[id]; ok {
			m.Mark(info.bit)
		}
	}
	return m
}

// RegisterComponent registers T as a normal component. New instances start as
// the zero value of T. Registering the same type again returns the existing id;
// registering a type already registered as packed panics.
func RegisterComponent[T any](w *World) ComponentId {
	t := reflect.TypeFor[T]()
	if info, ok := w.registry.lookupType(t); ok {
		if info.packed {
			fail(eris.Wrapf(ErrInvalidPackedType, "%s is already registered as a packed component", t))
		}
		return info.id
	}

	info := w.register(t, false)
	info.newColumn = func() column {
		return &typedColumn[T]{}
	}
	info.newValue = func() any {
		return new(T)
	}
	info.clone = func(src any) any {
		v := new(T)
		switch s := src.(type) {
		case *T:
			if s != nil {
				*v = *s
			}
		case T:
			*v = s
		}
		return v
	}
	return info.id
}

// RegisterPacked registers T as a packed component. T must be a struct made
// only of fixed-width numeric or bool fields; its byte layout is derived once
// here. A packed archetype still has to be created with NewPackedArchetype
// before entities can carry T.
func RegisterPacked[T any](w *World) (ComponentId, error) {
	t := reflect.TypeFor[T]()
	if info, ok := w.registry.lookupType(t); ok {
		if !info.packed {
			return 0, eris.Wrapf(ErrInvalidPackedType, "%s is already registered as a normal component", t)
		}
		return info.id, nil
	}

	layout, err := LayoutOf(t)
	if err != nil {
		return 0, err
	}

	info := w.register(t, true)
	info.layout = layout
	return info.id, nil
}

// ComponentIdOf returns the id assigned to T, if T was registered
func ComponentIdOf[T any](w *World) (ComponentId, bool) {
	info, ok := w.registry.lookupType(reflect.TypeFor[T]())
	if !ok {
		return 0, false
	}
	return info.id, true
}

func (w *World) register(t reflect.Type, packed bool) *componentInfo {
	r := w.registry
	if len(r.byBit) >= MaxComponentTypes {
		fail(eris.Errorf("cannot register %s: limit of %d component types reached", t, MaxComponentTypes))
	}

	info := &componentInfo{
		id:     w.slots.allocateComponent(packed),
		bit:    uint32(len(r.byBit)),
		typ:    t,
		packed: packed,
	}
	r.byType[t] = info
	r.byId[info.id] = info
	r.byBit = append(r.byBit, info)
	w.ensureRecords()

	w.logger.Debug("registered component",
		zap.String("type", t.String()),
		zap.Stringer("id", info.id),
		zap.Bool("packed", packed),
	)
	return info
}

// mustInfoFor resolves T or panics; used by typed accessors where an
// unregistered type is a setup bug.
func mustInfoFor[T any](w *World) *componentInfo {
	t := reflect.TypeFor[T]()
	info, ok := w.registry.lookupType(t)
	if !ok {
		fail(eris.Wrapf(ErrUnregisteredComponent, "type %s", t))
	}
	return info
}
