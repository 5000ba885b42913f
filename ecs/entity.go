package ecs

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityId packs an index (upper 32 bits), a generation (bits 16..32) and
// three tag bits into one 64-bit value.
//
//	bit 0       entity handle
//	bit 1       component handle
//	bit 2       packed component (only together with bit 1)
//	bits 16..32 generation
//	bits 32..64 index
//
// Entity and component ids are drawn from the same index counter, so a
// component id never shares an index with a live entity.
type EntityId uint64

// ComponentId identifies a registered component type. It is an EntityId with
// the component flag set.
type ComponentId = EntityId

const (
	entityFlag    EntityId = 1 << 0
	componentFlag EntityId = 1 << 1
	packedFlag    EntityId = 1 << 2

	generationShift = 16
	indexShift      = 32

	generationMask EntityId = 0xFFFF << generationShift
	tagMask        EntityId = entityFlag | componentFlag | packedFlag
)

// NewEntityId creates an entity handle from an index and a generation
func NewEntityId(index uint32, generation uint16) EntityId {
	return EntityId(uint64(index)<<indexShift) | EntityId(uint64(generation)<<generationShift) | entityFlag
}

// NewComponentId creates a component handle for the given index
func NewComponentId(index uint32, packed bool) ComponentId {
	id := EntityId(uint64(index)<<indexShift) | componentFlag
	if packed {
		id |= packedFlag
	}
	return id
}

// Index extracts the slot index
func (e EntityId) Index() uint32 {
	return uint32(e >> indexShift)
}

// Generation extracts the generation counter
func (e EntityId) Generation() uint16 {
	return uint16((e & generationMask) >> generationShift)
}

// WithGeneration returns the same handle carrying a different generation
func (e EntityId) WithGeneration(generation uint16) EntityId {
	return e&^generationMask | EntityId(uint64(generation)<<generationShift)
}

func (e EntityId) IsEntity() bool {
	return e&entityFlag != 0
}

func (e EntityId) IsComponent() bool {
	return e&componentFlag != 0 && e&entityFlag == 0
}

func (e EntityId) IsPacked() bool {
	return e.IsComponent() && e&packedFlag != 0
}

func (e EntityId) String() string {
	switch {
	case e.IsEntity():
		return fmt.Sprintf("Entity(%d:%d)", e.Index(), e.Generation())
	case e.IsPacked():
		return fmt.Sprintf("PackedComponent(%d)", e.Index())
	case e.IsComponent():
		return fmt.Sprintf("Component(%d)", e.Index())
	}
	return fmt.Sprintf("EntityId(%#x)", uint64(e))
}

// BinaryString renders the raw bits followed by the decoded fields, one per line.
func (e EntityId) BinaryString() string {
	var b strings.Builder
	raw := strconv.FormatUint(uint64(e), 2)
	b.WriteString("bits : ")
	b.WriteString(strings.Repeat("0", 64-len(raw)))
	b.WriteString(raw)
	b.WriteString("\nindex: ")
	b.WriteString(leftPad(strconv.FormatUint(uint64(e.Index()), 2), 32))
	b.WriteString("\ngen  : ")
	b.WriteString(leftPad(strconv.FormatUint(uint64(e.Generation()), 2), 16))
	b.WriteString("\ntags : ")
	b.WriteString(leftPad(strconv.FormatUint(uint64(e&tagMask), 2), 3))
	return b.String()
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
