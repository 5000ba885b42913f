package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/packecs/ecs"
	"github.com/plus3/packecs/internal/config"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Position struct {
	A int32
}

type Velocity struct {
	B int32
}

// PositionVelocity is stored packed: two int32 fields per row
type PositionVelocity struct {
	A int32
	B int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %s\n", eris.ToString(err, false))
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "TOML or YAML config file.")
	entities := flag.Int("entities", 0, "Entities per round, overrides the config.")
	rounds := flag.Int("rounds", 0, "Number of rounds, overrides the config.")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile, overrides the config.")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return eris.Wrap(err, "load config")
	}
	if *entities > 0 {
		cfg.Bench.Entities = *entities
	}
	if *rounds > 0 {
		cfg.Bench.Rounds = *rounds
	}
	if *profileMode != "" {
		cfg.Profile.Mode = *profileMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return eris.Wrap(err, "init logger")
	}
	defer log.Sync()

	if stop := startProfile(cfg.Profile); stop != nil {
		defer stop()
	}

	log.Info("starting benchmark",
		zap.Int("entities", cfg.Bench.Entities),
		zap.Int("rounds", cfg.Bench.Rounds),
		zap.String("profile", cfg.Profile.Mode),
	)

	report := &Report{
		Entities:      cfg.Bench.Entities,
		Rounds:        cfg.Bench.Rounds,
		VelocityShare: cfg.Bench.VelocityShare,
		PackedShare:   cfg.Bench.PackedShare,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	start := time.Now()
	for round := range cfg.Bench.Rounds {
		passes, stats, err := runRound(cfg.Bench, log)
		if err != nil {
			return eris.Wrapf(err, "round %d", round)
		}
		report.Add(passes)
		report.World = stats
		log.Debug("round finished", zap.Int("round", round))
	}
	report.TotalTime = time.Since(start)
	report.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	fmt.Println("\n--- Benchmark Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		return eris.Wrap(err, "generate report")
	}
	fmt.Println("--- End of Report ---")
	return nil
}

// runRound builds a fresh World and times each access pattern once
func runRound(cfg config.BenchConfig, log *zap.Logger) ([]Pass, ecs.WorldStats, error) {
	w := ecs.NewWorld(cfg.Entities,
		ecs.WithLogger(log.Named("ecs")),
		ecs.WithPackedGrowth(cfg.PackedGrowth),
	)
	defer w.Close()

	ecs.RegisterComponent[Position](w)
	ecs.RegisterComponent[Velocity](w)
	if _, err := ecs.RegisterPacked[PositionVelocity](w); err != nil {
		return nil, ecs.WorldStats{}, err
	}
	packed, err := ecs.NewPackedArchetype[PositionVelocity](w, func(v ecs.PackedView) {
		v.AddInt32(0, v.Int32(1))
	})
	if err != nil {
		return nil, ecs.WorldStats{}, err
	}

	var passes []Pass
	timed := func(name string, fn func() (int, error)) error {
		start := time.Now()
		n, err := fn()
		passes = append(passes, Pass{Name: name, Count: n, Duration: time.Since(start)})
		return err
	}
	measure := func(name string, fn func() int) {
		start := time.Now()
		n := fn()
		passes = append(passes, Pass{Name: name, Count: n, Duration: time.Since(start)})
	}

	ids := make([]ecs.EntityId, 0, cfg.Entities)
	err = timed("create", func() (int, error) {
		for i := range cfg.Entities {
			id := w.CreateEntity()
			if err := ecs.Add[Position](w, id); err != nil {
				return i, err
			}
			share := float64(i) / float64(cfg.Entities)
			if share > 1-cfg.VelocityShare {
				if err := ecs.AddWith(w, id, Velocity{B: 1}); err != nil {
					return i, err
				}
			}
			if share > 1-cfg.PackedShare {
				if err := ecs.Add[PositionVelocity](w, id); err != nil {
					return i, err
				}
			}
			ids = append(ids, id)
		}
		return len(ids), nil
	})
	if err != nil {
		return nil, ecs.WorldStats{}, err
	}

	measure("get", func() int {
		n := 0
		for _, id := range ids {
			if p := ecs.Get[Position](w, id); p != nil {
				p.A++
				n++
			}
		}
		return n
	})
	measure("get packed", func() int {
		n := 0
		for _, id := range ids {
			if v, ok := ecs.GetPacked[PositionVelocity](w, id); ok {
				v.AddInt32(0, 1)
				n++
			}
		}
		return n
	})
	measure("on packed", func() int {
		n := 0
		for _, id := range ids {
			ecs.On[PositionVelocity](w, id, func(v ecs.PackedView) {
				v.AddInt32(0, 1)
				n++
			})
		}
		return n
	})
	measure("forEntitiesWith packed", func() int {
		n := 0
		ecs.ForEntitiesWithPacked[PositionVelocity](w, func(_ ecs.EntityId, v ecs.PackedView) {
			v.AddInt32(0, 1)
			n++
		})
		return n
	})
	measure("updateAllAlive packed", func() int {
		packed.UpdateAllAlive()
		return packed.Len()
	})
	measure("forEntitiesWith one", func() int {
		n := 0
		ecs.ForEntitiesWith(w, func(_ ecs.EntityId, p *Position) {
			p.A++
			n++
		})
		return n
	})
	measure("forEntitiesWith two", func() int {
		n := 0
		ecs.ForEntitiesWith2(w, func(_ ecs.EntityId, p *Position, v *Velocity) {
			p.A++
			v.B++
			n++
		})
		return n
	})

	stats := w.Stats()

	err = timed("remove", func() (int, error) {
		for i, id := range ids {
			if err := ecs.Remove[Position](w, id); err != nil {
				return i, err
			}
		}
		return len(ids), nil
	})
	if err != nil {
		return nil, ecs.WorldStats{}, err
	}
	measure("forEntitiesWith after remove", func() int {
		n := 0
		ecs.ForEntitiesWith(w, func(_ ecs.EntityId, v *Velocity) {
			v.B++
			n++
		})
		return n
	})

	return passes, stats, nil
}

func startProfile(cfg config.ProfileConfig) func() {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfileAllocs
	default:
		return nil
	}
	p := profile.Start(mode, profile.ProfilePath(cfg.Path), profile.NoShutdownHook)
	return p.Stop
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
