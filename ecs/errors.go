package ecs

import "github.com/rotisserie/eris"

var (
	// ErrUnregisteredComponent is returned when a component type is used before registration.
	ErrUnregisteredComponent = eris.New("component type not registered")

	// ErrMissingArchetype is returned when a packed component is added but no
	// packed archetype was registered for it.
	ErrMissingArchetype = eris.New("no archetype registered for signature")

	// ErrInvalidIterationArity is raised when two-component iteration is
	// requested from an archetype that holds fewer than two component types.
	ErrInvalidIterationArity = eris.New("archetype cannot iterate two components")

	// ErrUnknownEntity is returned for ids whose index was never allocated as an entity.
	ErrUnknownEntity = eris.New("entity was never allocated")

	ErrDuplicateArchetype = eris.New("packed archetype already registered")
	ErrInvalidPackedType  = eris.New("type cannot be stored as a packed component")
	ErrStaleView          = eris.New("packed view used after its archetype was repositioned")
	ErrClosed             = eris.New("storage has been closed")
)

// fail panics with the full error trace. Used for programming errors that a
// caller cannot recover from, such as iterating with the wrong arity.
func fail(err error) {
	panic(eris.ToString(err, true))
}
