package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arsketch/internal/xr"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1, cfg.Entity.Cap)
	assert.Equal(t, float32(5), cfg.Controllers.MissLineLength)
	assert.InDelta(t, 1.0/60, cfg.Physics.Timestep, 1e-7)
}

func TestDefaultIsNotAliased(t *testing.T) {
	a := Default()
	a.Controllers.Modes[0] = "screen"
	assert.Equal(t, "tracked-pointer", Default().Controllers.Modes[0])
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "arsketch.yaml")
	cfg := Default()
	cfg.Entity.Cap = 4
	cfg.Physics.Gravity = [3]float32{0, -1.62, 0}
	cfg.Controllers.Modes = []string{"screen"}
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arsketch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entity:\n  cap: 3\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Entity.Cap)
	assert.Equal(t, Default().Physics, cfg.Physics)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arsketch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics:\n  timestep: 0\n"), 0644))

	cfg, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arsketch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("physics: [not, a, map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"negative cap":     func(c *Config) { c.Entity.Cap = -1 },
		"zero mass":        func(c *Config) { c.Entity.Mass = 0 },
		"flat box":         func(c *Config) { c.Entity.Size[1] = 0 },
		"three hands":      func(c *Config) { c.Controllers.Count = 3 },
		"no miss length":   func(c *Config) { c.Controllers.MissLineLength = 0 },
		"far before near":  func(c *Config) { c.Camera.Far = 0.001 },
		"unknown modality": func(c *Config) { c.Controllers.Modes = []string{"joystick"} },
		"negative friction": func(c *Config) {
			c.Physics.Friction = -0.1
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestControllerModality(t *testing.T) {
	c := Controllers{Modes: []string{"screen"}}
	assert.Equal(t, xr.ModalityScreen, c.Modality(0))
	assert.Equal(t, xr.ModalityTrackedPointer, c.Modality(1))
}
