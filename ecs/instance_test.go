package ecs_test

import (
	"testing"

	"github.com/plus3/packecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceOf(t *testing.T) {
	w := ecs.NewWorld(8)
	ecs.RegisterComponent[Component0](w)
	ecs.RegisterComponent[Component1](w)

	e0 := w.CreateEntity()
	require.NoError(t, ecs.AddWith(w, e0, Component0{Value: 5}))

	e1 := w.CreateEntity()
	require.NoError(t, w.SetInstanceOf(e1, e0))

	target, ok := w.InstanceOf(e1)
	require.True(t, ok)
	assert.Equal(t, e0, target)

	t.Run("reads fall back to the target", func(t *testing.T) {
		c := ecs.Get[Component0](w, e1)
		require.NotNil(t, c)
		assert.Same(t, ecs.Get[Component0](w, e0), c)
		assert.False(t, ecs.HasComponent[Component0](w, e1))

		ecs.Get[Component0](w, e0).Value = 6
		assert.Equal(t, 6, ecs.Get[Component0](w, e1).Value)
	})

	t.Run("own component overrides", func(t *testing.T) {
		require.NoError(t, ecs.AddWith(w, e1, Component0{Value: 1}))
		assert.Equal(t, 1, ecs.Get[Component0](w, e1).Value)
		assert.Equal(t, 6, ecs.Get[Component0](w, e0).Value)
	})

	t.Run("missing on both sides", func(t *testing.T) {
		assert.Nil(t, ecs.Get[Component1](w, e1))
	})

	t.Run("clear", func(t *testing.T) {
		require.NoError(t, ecs.Remove[Component0](w, e1))
		assert.Equal(t, 6, ecs.Get[Component0](w, e1).Value)

		w.ClearInstanceOf(e1)
		assert.Nil(t, ecs.Get[Component0](w, e1))
		_, ok := w.InstanceOf(e1)
		assert.False(t, ok)
	})
}

func TestInstanceOfLifecycle(t *testing.T) {
	w := ecs.NewWorld(8)
	ecs.RegisterComponent[Component0](w)

	e0 := w.CreateEntity()
	require.NoError(t, ecs.AddWith(w, e0, Component0{Value: 3}))
	e1 := w.CreateEntity()
	require.NoError(t, w.SetInstanceOf(e1, e0))

	t.Run("self reference is rejected", func(t *testing.T) {
		assert.Error(t, w.SetInstanceOf(e0, e0))
	})

	t.Run("dead target reads as absent", func(t *testing.T) {
		require.NoError(t, w.Delete(e0))
		assert.Nil(t, ecs.Get[Component0](w, e1))

		// the recycled index is a different entity
		e2 := w.CreateEntity()
		require.Equal(t, e0.Index(), e2.Index())
		require.NoError(t, ecs.AddWith(w, e2, Component0{Value: 4}))
		assert.Nil(t, ecs.Get[Component0](w, e1))
	})

	t.Run("deleting the instance drops the link", func(t *testing.T) {
		require.NoError(t, w.Delete(e1))
		_, ok := w.InstanceOf(e1)
		assert.False(t, ok)

		e3 := w.CreateEntity()
		require.Equal(t, e1.Index(), e3.Index())
		_, ok = w.InstanceOf(e3)
		assert.False(t, ok)
	})
}
