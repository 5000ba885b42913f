package ecs

// System represents a behavior that operates on entities with specific components.
// Systems iterate through the frame's World and queue structural changes on
// the frame's Commands.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to System
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}

// PackedUpdateSystem runs UpdateAllAlive on one packed archetype each frame
type PackedUpdateSystem struct {
	Archetype *PackedArchetype
}

func (s PackedUpdateSystem) Execute(*UpdateFrame) {
	s.Archetype.UpdateAllAlive()
}
