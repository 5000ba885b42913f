package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bench   BenchConfig   `toml:"bench" yaml:"bench"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Profile ProfileConfig `toml:"profile" yaml:"profile"`
}

type BenchConfig struct {
	Entities int `toml:"entities" yaml:"entities"`
	Rounds   int `toml:"rounds" yaml:"rounds"`
	// VelocityShare is the upper fraction of entities that also get a Velocity
	VelocityShare float64 `toml:"velocity_share" yaml:"velocity_share"`
	// PackedShare is the upper fraction of entities that get the packed component
	PackedShare  float64 `toml:"packed_share" yaml:"packed_share"`
	PackedGrowth float64 `toml:"packed_growth" yaml:"packed_growth"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type ProfileConfig struct {
	Mode string `toml:"mode" yaml:"mode"` // "", "cpu" or "mem"
	Path string `toml:"path" yaml:"path"`
}

// Load reads a TOML or YAML file over the defaults. The format is picked by
// extension; an empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, eris.Errorf("config %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return nil, eris.Wrapf(err, "parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the harness cannot run with
func (c *Config) Validate() error {
	if c.Bench.Entities <= 0 {
		return eris.Errorf("bench.entities must be positive, got %d", c.Bench.Entities)
	}
	if c.Bench.Rounds <= 0 {
		return eris.Errorf("bench.rounds must be positive, got %d", c.Bench.Rounds)
	}
	if c.Bench.VelocityShare < 0 || c.Bench.VelocityShare > 1 {
		return eris.Errorf("bench.velocity_share must be within [0,1], got %v", c.Bench.VelocityShare)
	}
	if c.Bench.PackedShare < 0 || c.Bench.PackedShare > 1 {
		return eris.Errorf("bench.packed_share must be within [0,1], got %v", c.Bench.PackedShare)
	}
	switch c.Profile.Mode {
	case "", "cpu", "mem":
	default:
		return eris.Errorf("profile.mode must be cpu or mem, got %q", c.Profile.Mode)
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Bench: BenchConfig{
			Entities:      100_000,
			Rounds:        10,
			VelocityShare: 0.5,
			PackedShare:   0.25,
			PackedGrowth:  2.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Profile: ProfileConfig{
			Path: ".",
		},
	}
}
