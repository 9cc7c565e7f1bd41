package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"arsketch/internal/xr"
)

// DefaultPath is the config file path, relative to the process working directory.
const DefaultPath = "config/arsketch.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Physics configures the simulated world.
type Physics struct {
	Gravity  [3]float32 `yaml:"gravity"`
	Friction float32    `yaml:"friction"`
	// Timestep is the fixed increment per frame, in seconds.
	Timestep float32 `yaml:"timestep"`
}

// Floor configures the static floor plane and its visual.
type Floor struct {
	Height float32 `yaml:"height"`
	Size   float32 `yaml:"size"`
}

// Entity configures spawned objects. Cap 0 means unlimited.
type Entity struct {
	Cap   int        `yaml:"cap"`
	Size  [3]float32 `yaml:"size"`
	Mass  float32    `yaml:"mass"`
	Color [3]float32 `yaml:"color"`
}

// Controllers configures the input sources.
type Controllers struct {
	Count          int      `yaml:"count"`
	MissLineLength float32  `yaml:"miss_line_length"`
	Modes          []string `yaml:"modes,omitempty"`
}

// Camera configures the perspective camera. FovY is in degrees.
type Camera struct {
	FovY float32 `yaml:"fov"`
	Near float32 `yaml:"near"`
	Far  float32 `yaml:"far"`
}

// Debug holds developer toggles. Persisted across runs like the rest of the file.
type Debug struct {
	ShowFPS      bool   `yaml:"show_fps"`
	ShowMemAlloc bool   `yaml:"show_memalloc"`
	GridVisible  bool   `yaml:"grid_visible"`
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`
}

// Config is the full application configuration.
type Config struct {
	Physics     Physics     `yaml:"physics"`
	Floor       Floor       `yaml:"floor"`
	Entity      Entity      `yaml:"entity"`
	Controllers Controllers `yaml:"controllers"`
	Camera      Camera      `yaml:"camera"`
	Debug       Debug       `yaml:"debug"`
}

var defaults = Config{
	Physics: Physics{
		Gravity:  [3]float32{0, -9.82, 0},
		Friction: 0.3,
		Timestep: 1.0 / 60,
	},
	Floor: Floor{Height: 0, Size: 20},
	Entity: Entity{
		Cap:   1,
		Size:  [3]float32{0.2, 0.2, 0.2},
		Mass:  1,
		Color: [3]float32{0.8, 0.2, 0.2},
	},
	Controllers: Controllers{
		Count:          2,
		MissLineLength: 5,
		Modes:          []string{"tracked-pointer", "tracked-pointer"},
	},
	Camera: Camera{FovY: 70, Near: 0.01, Far: 20},
	Debug: Debug{
		GridVisible: true,
		LogLevel:    "info",
		LogFile:     "logs/arsketch.log",
	},
}

// Default returns a fresh copy of the default configuration.
func Default() Config {
	return defaults.Clone()
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	var out Config
	if err := copier.CopyWithOption(&out, &c, copier.Option{DeepCopy: true}); err != nil {
		// Config holds only plain values and slices; copier cannot fail on it.
		panic(err)
	}
	return out
}

// Load reads the config at path on top of the defaults. A missing file is not an error
// and yields Default(). Unparseable or invalid files are reported.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes c to path, creating the directory if needed.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks ranges that would make the simulation meaningless.
func (c Config) Validate() error {
	switch {
	case c.Physics.Timestep <= 0:
		return fmt.Errorf("%w: physics.timestep must be positive, got %v", ErrInvalid, c.Physics.Timestep)
	case c.Physics.Friction < 0:
		return fmt.Errorf("%w: physics.friction must not be negative", ErrInvalid)
	case c.Entity.Cap < 0:
		return fmt.Errorf("%w: entity.cap must not be negative", ErrInvalid)
	case c.Entity.Mass <= 0:
		return fmt.Errorf("%w: entity.mass must be positive", ErrInvalid)
	case c.Entity.Size[0] <= 0 || c.Entity.Size[1] <= 0 || c.Entity.Size[2] <= 0:
		return fmt.Errorf("%w: entity.size must be positive on every axis", ErrInvalid)
	case c.Controllers.Count < 0 || c.Controllers.Count > 2:
		return fmt.Errorf("%w: controllers.count must be 0, 1 or 2, got %d", ErrInvalid, c.Controllers.Count)
	case c.Controllers.MissLineLength <= 0:
		return fmt.Errorf("%w: controllers.miss_line_length must be positive", ErrInvalid)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera needs 0 < near < far", ErrInvalid)
	}
	for i, m := range c.Controllers.Modes {
		if _, ok := xr.ParseModality(m); !ok {
			return fmt.Errorf("%w: controllers.modes[%d]: unknown mode %q", ErrInvalid, i, m)
		}
	}
	return nil
}

// Modality returns the configured modality of controller i, tracked-pointer by default.
func (c Controllers) Modality(i int) xr.Modality {
	if i < 0 || i >= len(c.Modes) {
		return xr.ModalityTrackedPointer
	}
	m, ok := xr.ParseModality(c.Modes[i])
	if !ok {
		return xr.ModalityTrackedPointer
	}
	return m
}
