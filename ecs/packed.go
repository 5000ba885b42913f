package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultPackedGrowth is the factor a packed buffer grows by when it runs out of rows
const DefaultPackedGrowth = 2.0

// PackedArchetype stores one packed component type as raw rows in a single
// contiguous byte buffer, addressed by slot*rowSize+offset. Entities map to
// slots by index; slots freed on delete are reused before the buffer grows.
//
// Each packed archetype owns exactly one update rule, applied by UpdateAllAlive.
type PackedArchetype struct {
	archetypeBase

	info   *componentInfo
	layout *PackedLayout
	update func(PackedView)

	buf       []byte
	capacity  int                        // rows the buffer can hold
	slots     *intmap.Map[uint32, int32] // entity index -> slot
	owners    []EntityId                 // slot -> entity, 0 for a free slot
	freeSlots []int32

	epoch  uint64
	growth float64
	closed bool
	logger *zap.Logger
}

var _ Archetype = (*PackedArchetype)(nil)

// NewPackedArchetype creates the packed archetype for T, which must already be
// registered with RegisterPacked. update is the per-row rule run by
// UpdateAllAlive and may be nil.
func NewPackedArchetype[T any](w *World, update func(PackedView)) (*PackedArchetype, error) {
	t := reflect.TypeFor[T]()
	info, ok := w.registry.lookupType(t)
	if !ok {
		return nil, eris.Wrapf(ErrUnregisteredComponent, "type %s", t)
	}
	return w.NewPackedArchetypeFor(info.id, update)
}

// NewPackedArchetypeFor is the untyped form of NewPackedArchetype
func (w *World) NewPackedArchetypeFor(c ComponentId, update func(PackedView)) (*PackedArchetype, error) {
	info, ok := w.registry.lookup(c)
	if !ok {
		return nil, eris.Wrapf(ErrUnregisteredComponent, "component %s", c)
	}
	if !info.packed {
		return nil, eris.Wrapf(ErrInvalidPackedType, "%s is a normal component", info.name())
	}
	if _, exists := w.packed[c]; exists {
		return nil, eris.Wrapf(ErrDuplicateArchetype, "%s", info.name())
	}

	var m mask.Mask
	m.Mark(info.bit)

	capacity := max(w.maxEntityCount, 1)
	a := &PackedArchetype{
		archetypeBase: archetypeBase{
			id:         w.nextArchetypeId(),
			components: []ComponentId{c},
			mask:       m,
			alive:      w.slots,
		},
		info:     info,
		layout:   info.layout,
		update:   update,
		buf:      make([]byte, capacity*info.layout.RowSize()),
		capacity: capacity,
		slots:    intmap.New[uint32, int32](capacity),
		owners:   make([]EntityId, 0, capacity),
		growth:   w.growth,
		logger:   w.logger,
	}
	w.packed[c] = a
	w.addArchetype(a)

	w.logger.Debug("created packed archetype",
		zap.Uint32("archetype", uint32(a.id)),
		zap.String("component", info.name()),
		zap.Int("rowSize", info.layout.RowSize()),
		zap.Int("capacity", capacity),
	)
	return a, nil
}

func (a *PackedArchetype) Layout() *PackedLayout {
	return a.layout
}

// position moves the sliding window to slot, invalidating earlier views
func (a *PackedArchetype) position(slot int32) PackedView {
	a.epoch++
	return PackedView{arch: a, base: int(slot) * a.layout.rowSize, epoch: a.epoch}
}

func (a *PackedArchetype) invalidate() {
	a.epoch++
}

func (a *PackedArchetype) slotOf(id EntityId) (int32, bool) {
	slot, ok := a.slots.Get(id.Index())
	if !ok || a.owners[slot] != id {
		return -1, false
	}
	return slot, true
}

func (a *PackedArchetype) allocSlot(id EntityId) int32 {
	if n := len(a.freeSlots); n > 0 {
		slot := a.freeSlots[n-1]
		a.freeSlots = a.freeSlots[:n-1]
		a.owners[slot] = id
		return slot
	}
	if len(a.owners) == a.capacity {
		a.grow()
	}
	a.owners = append(a.owners, id)
	return int32(len(a.owners) - 1)
}

func (a *PackedArchetype) grow() {
	newCapacity := max(int(float64(a.capacity)*a.growth), a.capacity+1)
	buf := make([]byte, newCapacity*a.layout.rowSize)
	copy(buf, a.buf)
	a.buf = buf
	a.capacity = newCapacity
	a.invalidate()

	a.logger.Debug("grew packed buffer",
		zap.Uint32("archetype", uint32(a.id)),
		zap.Int("capacity", newCapacity),
		zap.Int("bytes", len(buf)),
	)
}

func (a *PackedArchetype) checkOpen() {
	if a.closed {
		fail(eris.Wrapf(ErrClosed, "packed archetype %d", a.id))
	}
}

// CreateFor allocates a zeroed row for id
func (a *PackedArchetype) CreateFor(id EntityId) {
	a.checkOpen()
	if old, ok := a.slots.Get(id.Index()); ok {
		a.release(old)
	}
	slot := a.allocSlot(id)
	a.slots.Put(id.Index(), slot)

	start := int(slot) * a.layout.rowSize
	clear(a.buf[start : start+a.layout.rowSize])
}

// CreateForWith ignores carried values: packed rows never migrate between archetypes
func (a *PackedArchetype) CreateForWith(id EntityId, _ Row) {
	a.CreateFor(id)
}

// release returns a slot to the free list. The row's bytes are left as they
// are until the slot is handed out again.
func (a *PackedArchetype) release(slot int32) {
	a.owners[slot] = 0
	a.freeSlots = append(a.freeSlots, slot)
}

func (a *PackedArchetype) DeleteFor(id EntityId) {
	if a.closed {
		return
	}
	slot, ok := a.slotOf(id)
	if !ok {
		return
	}
	a.slots.Del(id.Index())
	a.release(slot)
}

func (a *PackedArchetype) Has(id EntityId) bool {
	if a.closed {
		return false
	}
	_, ok := a.slotOf(id)
	return ok
}

// On positions the view at id's row and runs fn against it. Nothing runs when
// id is dead or has no row here. The view is invalid once fn returns.
func (a *PackedArchetype) On(id EntityId, fn func(PackedView)) bool {
	a.checkOpen()
	if !a.alive.IsAlive(id) {
		return false
	}
	slot, ok := a.slotOf(id)
	if !ok {
		return false
	}
	fn(a.position(slot))
	a.invalidate()
	return true
}

// GetPackedFor positions the view at id's row for reading. The view stays
// valid until the archetype is positioned again.
func (a *PackedArchetype) GetPackedFor(id EntityId) (PackedView, bool) {
	a.checkOpen()
	if !a.alive.IsAlive(id) {
		return PackedView{}, false
	}
	slot, ok := a.slotOf(id)
	if !ok {
		return PackedView{}, false
	}
	return a.position(slot), true
}

func (a *PackedArchetype) GetFor(id EntityId) (Row, bool) {
	v, ok := a.GetPackedFor(id)
	if !ok {
		return Row{}, false
	}
	return Row{Components: a.components, Values: []any{v}}, true
}

// Component returns a PackedView for id, or nil
func (a *PackedArchetype) Component(id EntityId, c ComponentId) any {
	if c != a.info.id {
		return nil
	}
	v, ok := a.GetPackedFor(id)
	if !ok {
		return nil
	}
	return v
}

// UpdateAllAlive applies the archetype's update rule to every row whose
// entity is still alive.
func (a *PackedArchetype) UpdateAllAlive() {
	if a.update == nil {
		return
	}
	a.checkOpen()
	for slot, owner := range a.owners {
		if owner == 0 || !a.alive.IsAlive(owner) {
			continue
		}
		a.update(a.position(int32(slot)))
	}
	a.invalidate()
}

// ForEach yields a PackedView per live row, in slot order
func (a *PackedArchetype) ForEach(c ComponentId, fn func(EntityId, any)) {
	if c != a.info.id {
		return
	}
	a.ForEachView(func(id EntityId, v PackedView) {
		fn(id, v)
	})
}

// ForEachView is the typed form of ForEach
func (a *PackedArchetype) ForEachView(fn func(EntityId, PackedView)) {
	a.checkOpen()
	for slot, owner := range a.owners {
		if owner == 0 || !a.alive.IsAlive(owner) {
			continue
		}
		fn(owner, a.position(int32(slot)))
	}
	a.invalidate()
}

func (a *PackedArchetype) ForEach2(_, _ ComponentId, _ func(EntityId, any, any)) {
	fail(eris.Wrapf(ErrInvalidIterationArity, "packed archetype %d holds %s", a.id, a.info.name()))
}

func (a *PackedArchetype) Len() int {
	return a.slots.Len()
}

// BufferBytes is the size of the backing buffer
func (a *PackedArchetype) BufferBytes() int {
	return len(a.buf)
}

// Close releases the buffer. Any later access panics with ErrClosed.
func (a *PackedArchetype) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.buf = nil
	a.owners = nil
	a.freeSlots = nil
	a.slots.Clear()
	a.invalidate()
	a.logger.Debug("closed packed archetype", zap.Uint32("archetype", uint32(a.id)))
}
