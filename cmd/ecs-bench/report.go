package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/packecs/ecs"
)

// Pass is one timed access pattern within a round
type Pass struct {
	Name     string
	Count    int
	Duration time.Duration
}

type Report struct {
	// Configuration
	Entities      int
	Rounds        int
	VelocityShare float64
	PackedShare   float64

	// Results
	TotalTime     time.Duration
	Passes        []*PassStats
	World         ecs.WorldStats
	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats

	byName map[string]*PassStats
}

type PassStats struct {
	Name    string
	Count   int
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

// Add records one round's passes, keeping the order they first appeared in
func (r *Report) Add(passes []Pass) {
	if r.byName == nil {
		r.byName = make(map[string]*PassStats)
	}
	for _, p := range passes {
		s, ok := r.byName[p.Name]
		if !ok {
			s = &PassStats{Name: p.Name}
			r.byName[p.Name] = s
			r.Passes = append(r.Passes, s)
		}
		s.Count = p.Count
		s.Samples = append(s.Samples, p.Duration)
	}
}

func (r *Report) Finalize() {
	for _, s := range r.Passes {
		s.Finalize()
	}
}

func (s *PassStats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# ECS Benchmark Report

## Configuration
- **Entities per Round:** {{.Entities}}
- **Rounds:** {{.Rounds}}
- **Velocity Share:** {{pct .VelocityShare}}
- **Packed Share:** {{pct .PackedShare}}

## Passes
{{range .Passes}}- **{{.Name}}** ({{.Count}} entities): avg {{.Avg}}, min {{.Min}}, max {{.Max}}
{{end}}
## World (last round, before removal)
- **Live Entities:** {{.World.EntityCount}}
- **Component Types:** {{.World.ComponentTypes}}
- **Archetypes:** {{.World.ArchetypeCount}}
- **Packed Buffer Bytes:** {{.World.PackedBytes}}
{{range .World.ArchetypeBreakdown}}  - #{{.ID}} {{.Kind}} {{.Components}}: {{.EntityCount}} entities
{{end}}
## Memory Usage (Raw Bytes)
- Total Time:     {{.TotalTime}}
- Heap Alloc:     {{.MemStatsStart.HeapAlloc}} (start) -> {{.MemStatsEnd.HeapAlloc}} (end) -> delta: {{bsub .MemStatsEnd.HeapAlloc .MemStatsStart.HeapAlloc}}
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- GC Pause:       {{.MemStatsEnd.PauseTotalNs | ns}}
`

	fm := template.FuncMap{
		"pct": func(v float64) string {
			return fmt.Sprintf("%.0f%%", v*100)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
