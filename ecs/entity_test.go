package ecs_test

import (
	"fmt"
	"testing"

	"github.com/plus3/packecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestEntityIdEncoding(t *testing.T) {
	id := ecs.NewEntityId(67890, 12)

	assert.Equal(t, uint32(67890), id.Index())
	assert.Equal(t, uint16(12), id.Generation())
	assert.True(t, id.IsEntity())
	assert.False(t, id.IsComponent())
	assert.False(t, id.IsPacked())
}

func TestEntityIdEdgeCases(t *testing.T) {
	tests := []struct {
		index      uint32
		generation uint16
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABC},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("index=%d,generation=%d", tt.index, tt.generation), func(t *testing.T) {
			id := ecs.NewEntityId(tt.index, tt.generation)
			assert.Equal(t, tt.index, id.Index())
			assert.Equal(t, tt.generation, id.Generation())
			assert.True(t, id.IsEntity())
		})
	}
}

func TestEntityIdGenerations(t *testing.T) {
	id := ecs.NewEntityId(7, 3)
	next := id.WithGeneration(id.Generation() + 1)

	assert.NotEqual(t, id, next)
	assert.Equal(t, id.Index(), next.Index())
	assert.Equal(t, uint16(4), next.Generation())

	last := ecs.NewEntityId(7, 0xFFFF)
	wrapped := last.WithGeneration(last.Generation() + 1)
	assert.Equal(t, uint16(0), wrapped.Generation())
	assert.Equal(t, uint32(7), wrapped.Index())
}

func TestComponentIdTags(t *testing.T) {
	normal := ecs.NewComponentId(5, false)
	packed := ecs.NewComponentId(6, true)

	assert.True(t, normal.IsComponent())
	assert.False(t, normal.IsEntity())
	assert.False(t, normal.IsPacked())

	assert.True(t, packed.IsComponent())
	assert.True(t, packed.IsPacked())
	assert.Equal(t, uint32(6), packed.Index())
}

func TestEntityIdString(t *testing.T) {
	assert.Equal(t, "Entity(3:1)", ecs.NewEntityId(3, 1).String())
	assert.Equal(t, "Component(4)", ecs.NewComponentId(4, false).String())
	assert.Equal(t, "PackedComponent(4)", ecs.NewComponentId(4, true).String())

	bits := ecs.NewEntityId(1, 0).BinaryString()
	assert.Contains(t, bits, "index:")
	assert.Contains(t, bits, "gen  :")
	assert.Contains(t, bits, "tags :")
}
