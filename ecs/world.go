package ecs

import (
	"slices"

	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Option configures a World
type Option func(w *World)

// WithLogger sets the logger used for registration and archetype events
func WithLogger(logger *zap.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithPackedGrowth sets the factor packed buffers grow by. Values <= 1 are ignored.
func WithPackedGrowth(factor float64) Option {
	return func(w *World) {
		if factor > 1 {
			w.growth = factor
		}
	}
}

// entityRecord tracks where an entity's components live
type entityRecord struct {
	signature mask.Mask
	archetype Archetype // nil while the entity has no normal components
	packed    []ComponentId
}

// World owns the entity slots, the component registry and every archetype.
// It is not safe for concurrent use.
type World struct {
	maxEntityCount int
	growth         float64
	logger         *zap.Logger

	slots    *slotTable
	records  []entityRecord
	registry *ComponentRegistry

	archetypes      []Archetype
	bySignature     map[mask.Mask]Archetype
	packed          map[ComponentId]*PackedArchetype
	queries         map[mask.Mask]*Query
	archetypeIdNext ArchetypeId

	instanceOf *intmap.Map[uint32, EntityId]
	closed     bool
}

// NewWorld creates a World sized for maxEntityCount entities. The count is a
// capacity hint: slot tables and packed buffers grow beyond it when needed.
// Negative counts are treated as zero.
func NewWorld(maxEntityCount int, opts ...Option) *World {
	maxEntityCount = max(maxEntityCount, 0)
	w := &World{
		maxEntityCount: maxEntityCount,
		growth:         DefaultPackedGrowth,
		logger:         zap.NewNop(),
		slots:          newSlotTable(maxEntityCount),
		records:        make([]entityRecord, 0, maxEntityCount),
		registry:       newComponentRegistry(),
		bySignature:    make(map[mask.Mask]Archetype),
		packed:         make(map[ComponentId]*PackedArchetype),
		queries:        make(map[mask.Mask]*Query),
		instanceOf:     intmap.New[uint32, EntityId](16),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// ensureRecords keeps the record table as long as the slot table
func (w *World) ensureRecords() {
	for len(w.records) < w.slots.len() {
		w.records = append(w.records, entityRecord{})
	}
}

func (w *World) nextArchetypeId() ArchetypeId {
	id := w.archetypeIdNext
	w.archetypeIdNext++
	return id
}

func (w *World) addArchetype(a Archetype) {
	w.archetypes = append(w.archetypes, a)
}

// CreateEntity allocates a fresh or recycled entity with no components
func (w *World) CreateEntity() EntityId {
	id := w.slots.allocateEntity()
	w.ensureRecords()
	w.records[id.Index()] = entityRecord{}
	return id
}

func (w *World) IsAlive(id EntityId) bool {
	return w.slots.IsAlive(id)
}

// EntityCount is the number of live entities
func (w *World) EntityCount() int {
	return w.slots.entityCount
}

// Entity returns the live handle currently occupying index
func (w *World) Entity(index uint32) (EntityId, bool) {
	return w.slots.current(index)
}

// record resolves id to its record. It returns ErrUnknownEntity for ids that
// were never allocated and a nil record for stale ids.
func (w *World) record(id EntityId) (*entityRecord, error) {
	if !w.slots.known(id) {
		return nil, eris.Wrapf(ErrUnknownEntity, "%s", id)
	}
	if !w.slots.IsAlive(id) {
		return nil, nil
	}
	return &w.records[id.Index()], nil
}

// Delete frees id's slot and drops its data from every archetype holding it.
// Deleting a dead entity is a no-op.
func (w *World) Delete(id EntityId) error {
	rec, err := w.record(id)
	if err != nil || rec == nil {
		return err
	}

	if rec.archetype != nil {
		rec.archetype.DeleteFor(id)
	}
	for _, c := range rec.packed {
		if a, ok := w.packed[c]; ok {
			a.DeleteFor(id)
		}
	}
	*rec = entityRecord{}
	w.instanceOf.Del(id.Index())
	w.slots.release(id)
	return nil
}

// AddComponent attaches c to id. Normal components move the entity to the
// archetype for its new signature, carrying existing values over; packed
// components get a row in their packed archetype. Adding a component the
// entity already has does nothing, as does any call with a stale id.
func (w *World) AddComponent(id EntityId, c ComponentId) error {
	rec, err := w.record(id)
	if err != nil || rec == nil {
		return err
	}
	info, ok := w.registry.lookup(c)
	if !ok {
		return eris.Wrapf(ErrUnregisteredComponent, "component %s", c)
	}

	if info.packed {
		if slices.Contains(rec.packed, c) {
			return nil
		}
		a, ok := w.packed[c]
		if !ok {
			return eris.Wrapf(ErrMissingArchetype, "{%s}: packed archetypes must be created with NewPackedArchetype", info.name())
		}
		a.CreateFor(id)
		rec.packed = append(rec.packed, c)
		return nil
	}

	var bit mask.Mask
	bit.Mark(info.bit)
	if rec.signature.ContainsAll(bit) {
		return nil
	}
	signature := rec.signature
	signature.Mark(info.bit)
	w.move(id, rec, signature)
	return nil
}

// RemoveComponent detaches c from id, moving the remaining normal components
// to the archetype for the smaller signature
func (w *World) RemoveComponent(id EntityId, c ComponentId) error {
	rec, err := w.record(id)
	if err != nil || rec == nil {
		return err
	}
	info, ok := w.registry.lookup(c)
	if !ok {
		return eris.Wrapf(ErrUnregisteredComponent, "component %s", c)
	}

	if info.packed {
		i := slices.Index(rec.packed, c)
		if i < 0 {
			return nil
		}
		w.packed[c].DeleteFor(id)
		rec.packed = slices.Delete(rec.packed, i, i+1)
		return nil
	}

	var bit mask.Mask
	bit.Mark(info.bit)
	if !rec.signature.ContainsAll(bit) {
		return nil
	}
	signature := rec.signature
	signature.Unmark(info.bit)
	w.move(id, rec, signature)
	return nil
}

// move re-homes id into the archetype for signature
func (w *World) move(id EntityId, rec *entityRecord, signature mask.Mask) {
	var dest Archetype
	var empty mask.Mask
	if signature != empty {
		dest = w.archetypeFor(signature)
	}

	from := rec.archetype
	if dest != nil {
		var carried Row
		if from != nil {
			carried, _ = from.GetFor(id)
		}
		dest.CreateForWith(id, carried)
	}
	if from != nil {
		from.DeleteFor(id)
	}
	rec.archetype = dest
	rec.signature = signature
}

// archetypeFor finds or creates the normal archetype for signature
func (w *World) archetypeFor(signature mask.Mask) Archetype {
	if a, ok := w.bySignature[signature]; ok {
		return a
	}

	infos := w.infosOf(signature)
	id := w.nextArchetypeId()
	capacity := max(w.maxEntityCount/8, 16)

	var a Archetype
	if len(infos) == 1 {
		a = newFlatArchetype(id, infos[0], signature, w.slots, capacity)
	} else {
		a = newTableArchetype(id, infos, signature, w.slots, capacity)
	}
	w.bySignature[signature] = a
	w.addArchetype(a)

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.name()
	}
	w.logger.Debug("created archetype",
		zap.Uint32("archetype", uint32(id)),
		zap.Strings("components", names),
	)
	return a
}

// infosOf lists the normal components of signature in registration order
func (w *World) infosOf(signature mask.Mask) []*componentInfo {
	infos := make([]*componentInfo, 0, 4)
	for _, info := range w.registry.byBit {
		if info.packed {
			continue
		}
		var bit mask.Mask
		bit.Mark(info.bit)
		if signature.ContainsAll(bit) {
			infos = append(infos, info)
		}
	}
	return infos
}

// Has reports whether id carries c. Stale ids carry nothing.
func (w *World) Has(id EntityId, c ComponentId) bool {
	rec, err := w.record(id)
	if err != nil || rec == nil {
		return false
	}
	info, ok := w.registry.lookup(c)
	if !ok {
		return false
	}
	if info.packed {
		return slices.Contains(rec.packed, c)
	}
	return rec.archetype != nil && rec.archetype.CorrespondsTo(c)
}

// Component returns id's value for c: a pointer for normal components, a
// PackedView for packed ones. When id has no value of its own and is an
// instance of another entity, the other entity's value is returned.
func (w *World) Component(id EntityId, c ComponentId) any {
	if v := w.ownComponent(id, c); v != nil {
		return v
	}
	if !w.slots.IsAlive(id) {
		return nil
	}
	if target, ok := w.instanceOf.Get(id.Index()); ok {
		return w.ownComponent(target, c)
	}
	return nil
}

func (w *World) ownComponent(id EntityId, c ComponentId) any {
	rec, err := w.record(id)
	if err != nil || rec == nil {
		return nil
	}
	info, ok := w.registry.lookup(c)
	if !ok {
		return nil
	}
	if info.packed {
		if !slices.Contains(rec.packed, c) {
			return nil
		}
		return w.packed[c].Component(id, c)
	}
	if rec.archetype == nil {
		return nil
	}
	return rec.archetype.Component(id, c)
}

// Signature lists every component attached to id, normal ones first
func (w *World) Signature(id EntityId) []ComponentId {
	rec, err := w.record(id)
	if err != nil || rec == nil {
		return nil
	}
	var out []ComponentId
	if rec.archetype != nil {
		out = append(out, rec.archetype.Components()...)
	}
	return append(out, rec.packed...)
}

// ArchetypeOf returns the normal archetype currently holding id
func (w *World) ArchetypeOf(id EntityId) (Archetype, bool) {
	rec, err := w.record(id)
	if err != nil || rec == nil || rec.archetype == nil {
		return nil, false
	}
	return rec.archetype, true
}

// ArchetypeFor returns the archetype whose component set is exactly components
func (w *World) ArchetypeFor(components ...ComponentId) (Archetype, bool) {
	if len(components) == 1 {
		if a, ok := w.packed[components[0]]; ok {
			return a, true
		}
	}
	a, ok := w.bySignature[w.registry.maskOf(components)]
	return a, ok
}

// PackedArchetypeOf returns the packed archetype registered for c
func (w *World) PackedArchetypeOf(c ComponentId) (*PackedArchetype, bool) {
	a, ok := w.packed[c]
	return a, ok
}

// Archetypes returns every archetype in creation order
func (w *World) Archetypes() []Archetype {
	return w.archetypes
}

// SetInstanceOf makes id fall back to target's components wherever id has no
// value of its own
func (w *World) SetInstanceOf(id, target EntityId) error {
	rec, err := w.record(id)
	if err != nil || rec == nil {
		return err
	}
	if !w.slots.known(target) {
		return eris.Wrapf(ErrUnknownEntity, "instance target %s", target)
	}
	if id == target {
		return eris.Errorf("%s cannot be an instance of itself", id)
	}
	w.instanceOf.Put(id.Index(), target)
	return nil
}

// InstanceOf returns the entity id falls back to, if any
func (w *World) InstanceOf(id EntityId) (EntityId, bool) {
	if !w.slots.IsAlive(id) {
		return 0, false
	}
	return w.instanceOf.Get(id.Index())
}

func (w *World) ClearInstanceOf(id EntityId) {
	if w.slots.IsAlive(id) {
		w.instanceOf.Del(id.Index())
	}
}

// Close releases every packed buffer. The World must not be used afterwards.
func (w *World) Close() {
	if w.closed {
		return
	}
	w.closed = true
	for _, a := range w.packed {
		a.Close()
	}
	w.logger.Debug("closed world", zap.Int("archetypes", len(w.archetypes)))
}
