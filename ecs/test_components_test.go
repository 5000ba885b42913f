package ecs_test

import (
	"fmt"

	"github.com/plus3/packecs/ecs"
)

// Common test component types
type Position struct {
	A int32
}

type Velocity struct {
	B int32
}

type Name struct {
	Value string
}

// PositionVelocity is registered packed
type PositionVelocity struct {
	A int32
	B int32
}

type Component0 struct {
	Value int
}

type Component1 struct {
	Value int
}

type P0 interface{ p0() }
type P1 interface{ p1() }

// SubComponent implements both P0 and P1
type SubComponent struct{}

func (SubComponent) p0() {}
func (SubComponent) p1() {}

const (
	fieldA = 0
	fieldB = 1
)

// newTestWorld registers Position, Velocity and Name, plus PositionVelocity
// with a packed archetype that adds 1 to a and 2 to b per update
func newTestWorld(maxEntityCount int, opts ...ecs.Option) (*ecs.World, *ecs.PackedArchetype) {
	w := ecs.NewWorld(maxEntityCount, opts...)
	ecs.RegisterComponent[Position](w)
	ecs.RegisterComponent[Velocity](w)
	ecs.RegisterComponent[Name](w)
	if _, err := ecs.RegisterPacked[PositionVelocity](w); err != nil {
		panic(err)
	}
	packed, err := ecs.NewPackedArchetype[PositionVelocity](w, func(v ecs.PackedView) {
		v.AddInt32(fieldA, 1)
		v.AddInt32(fieldB, 2)
	})
	if err != nil {
		panic(err)
	}
	return w, packed
}

// panicText runs fn and returns what it panicked with, or "" if it returned
func panicText(fn func()) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprint(r)
		}
	}()
	fn()
	return ""
}
