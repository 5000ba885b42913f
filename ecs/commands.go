package ecs

import "errors"

// Commands provides a buffer for deferred structural changes that are applied
// after every system of a frame ran. Adding, removing or deleting while an
// archetype is being iterated is not supported; queue the change here instead.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	adds    []componentCommand
	removes []componentCommand
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []ComponentId
	then       func(EntityId)
}

type componentCommand struct {
	entity    EntityId
	component ComponentId
}

// Defer queues a function to run after every other command of the frame.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues the creation of an entity carrying the given components.
func (c *Commands) Spawn(components ...ComponentId) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// SpawnThen is Spawn with a callback receiving the new entity once it exists
func (c *Commands) SpawnThen(then func(EntityId), components ...ComponentId) {
	c.spawns = append(c.spawns, spawnCommand{components: components, then: then})
}

// Delete queues an entity deletion.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(entity EntityId, component ComponentId) {
	c.adds = append(c.adds, componentCommand{entity: entity, component: component})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(entity EntityId, component ComponentId) {
	c.removes = append(c.removes, componentCommand{entity: entity, component: component})
}

// Len is the number of queued commands
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies every queued command to w in the order deletes, removes,
// adds, spawns, defers, then resets the buffer. Changes targeting an entity
// deleted in the same flush are dropped. Every error is collected; one
// failing command does not stop the others.
func (c *Commands) Flush(w *World) error {
	var errs []error
	deletedEntities := make(map[EntityId]bool)

	for _, cmd := range c.deletes {
		errs = append(errs, w.Delete(cmd))
		deletedEntities[cmd] = true
	}

	for _, cmd := range c.removes {
		if !deletedEntities[cmd.entity] {
			errs = append(errs, w.RemoveComponent(cmd.entity, cmd.component))
		}
	}

	for _, cmd := range c.adds {
		if !deletedEntities[cmd.entity] {
			errs = append(errs, w.AddComponent(cmd.entity, cmd.component))
		}
	}

	for _, cmd := range c.spawns {
		id := w.CreateEntity()
		for _, component := range cmd.components {
			errs = append(errs, w.AddComponent(id, component))
		}
		if cmd.then != nil {
			cmd.then(id)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
	return errors.Join(errs...)
}
