package ecs

// WorldStats is a snapshot of a World's storage
type WorldStats struct {
	EntityCount        int
	FreeSlots          int
	ComponentTypes     int
	ArchetypeCount     int
	PackedBytes        int
	ArchetypeBreakdown []ArchetypeStats
}

// ArchetypeStats describes one archetype
type ArchetypeStats struct {
	ID          ArchetypeId
	Kind        string
	Components  []string
	EntityCount int
	// BufferBytes is only set for packed archetypes
	BufferBytes int
}

// Stats collects a snapshot of the World's storage
func (w *World) Stats() WorldStats {
	stats := WorldStats{
		EntityCount:        w.slots.entityCount,
		FreeSlots:          len(w.slots.freeList),
		ComponentTypes:     w.registry.Len(),
		ArchetypeCount:     len(w.archetypes),
		ArchetypeBreakdown: make([]ArchetypeStats, 0, len(w.archetypes)),
	}

	for _, a := range w.archetypes {
		as := ArchetypeStats{
			ID:          a.ID(),
			EntityCount: a.Len(),
		}
		for _, c := range a.Components() {
			if info, ok := w.registry.lookup(c); ok {
				as.Components = append(as.Components, info.name())
			}
		}

		switch a := a.(type) {
		case *PackedArchetype:
			as.Kind = "packed"
			as.BufferBytes = a.BufferBytes()
			stats.PackedBytes += as.BufferBytes
		case *flatArchetype:
			as.Kind = "flat"
		case *tableArchetype:
			as.Kind = "table"
		}
		stats.ArchetypeBreakdown = append(stats.ArchetypeBreakdown, as)
	}
	return stats
}
