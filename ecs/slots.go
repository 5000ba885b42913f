package ecs

type slotKind uint8

const (
	slotUnused slotKind = iota
	slotEntity
	slotComponent
)

type slot struct {
	generation uint16
	kind       slotKind
	alive      bool
}

// slotTable hands out indices for entities and component ids from one counter.
// Entity indices are recycled through a LIFO free list; each release bumps the
// slot's generation so older handles stop resolving.
type slotTable struct {
	slots       []slot
	freeList    []uint32
	entityCount int
}

func newSlotTable(capacity int) *slotTable {
	return &slotTable{
		slots:    make([]slot, 0, capacity),
		freeList: make([]uint32, 0, capacity/4),
	}
}

func (t *slotTable) allocateEntity() EntityId {
	t.entityCount++
	if n := len(t.freeList); n > 0 {
		index := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		s := &t.slots[index]
		s.alive = true
		return NewEntityId(index, s.generation)
	}

	index := uint32(len(t.slots))
	t.slots = append(t.slots, slot{kind: slotEntity, alive: true})
	return NewEntityId(index, 0)
}

func (t *slotTable) allocateComponent(packed bool) ComponentId {
	index := uint32(len(t.slots))
	t.slots = append(t.slots, slot{kind: slotComponent})
	return NewComponentId(index, packed)
}

// known reports whether the index of id was ever handed out as an entity
func (t *slotTable) known(id EntityId) bool {
	if !id.IsEntity() {
		return false
	}
	index := id.Index()
	return int(index) < len(t.slots) && t.slots[index].kind == slotEntity
}

// IsAlive reports whether id is the current generation of a live entity slot
func (t *slotTable) IsAlive(id EntityId) bool {
	if !t.known(id) {
		return false
	}
	s := t.slots[id.Index()]
	return s.alive && s.generation == id.Generation()
}

// current returns the live handle for an index, if any
func (t *slotTable) current(index uint32) (EntityId, bool) {
	if int(index) >= len(t.slots) {
		return 0, false
	}
	s := t.slots[index]
	if s.kind != slotEntity || !s.alive {
		return 0, false
	}
	return NewEntityId(index, s.generation), true
}

// release frees the slot of a live id. Returns false for stale or unknown ids.
func (t *slotTable) release(id EntityId) bool {
	if !t.IsAlive(id) {
		return false
	}
	index := id.Index()
	s := &t.slots[index]
	s.alive = false
	s.generation++
	t.freeList = append(t.freeList, index)
	t.entityCount--
	return true
}

func (t *slotTable) len() int {
	return len(t.slots)
}
