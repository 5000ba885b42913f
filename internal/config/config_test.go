package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 0.5, cfg.Bench.VelocityShare)
	assert.Equal(t, 0.25, cfg.Bench.PackedShare)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "bench.toml", `
[bench]
entities = 2000
rounds = 3

[logging]
level = "debug"
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, cfg.Bench.Entities)
	assert.Equal(t, 3, cfg.Bench.Rounds)
	assert.Equal(t, 0.5, cfg.Bench.VelocityShare, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "bench.yaml", `
bench:
  entities: 64
  packed_share: 0.5
profile:
  mode: mem
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Bench.Entities)
	assert.Equal(t, 10, cfg.Bench.Rounds)
	assert.Equal(t, 0.5, cfg.Bench.PackedShare)
	assert.Equal(t, "mem", cfg.Profile.Mode)
	assert.Equal(t, ".", cfg.Profile.Path)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "bench.json", `{}`))
		assert.ErrorContains(t, err, "unsupported format")
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bench.toml", `[bench`))
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Load(writeFile(t, "bench.toml", "[bench]\nentities = 0\n"))
		assert.ErrorContains(t, err, "bench.entities")

		_, err = Load(writeFile(t, "bench.toml", "[profile]\nmode = \"trace\"\n"))
		assert.ErrorContains(t, err, "profile.mode")
	})
}
