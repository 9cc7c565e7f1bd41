package stepper

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"arsketch/internal/entity"
	"arsketch/internal/physics"
	"arsketch/internal/scene"
)

// DefaultTimestep is the fixed simulation increment per Step call.
const DefaultTimestep = float32(1) / 60

// Stepper advances the physics world once per frame and copies body transforms onto
// their visuals. Simulation speed is tied to the frame rate, not to wall-clock time.
type Stepper struct {
	world    *physics.World
	registry *entity.Registry
	group    *scene.Node
	floor    *physics.Body
	timestep float32
	log      *zap.Logger

	held  map[uuid.UUID]bool
	steps uint64
}

// New returns a stepper. group is the world group: entities whose visual has another
// parent are considered held by a controller.
func New(world *physics.World, registry *entity.Registry, group *scene.Node, floor *physics.Body, timestep float32, log *zap.Logger) *Stepper {
	if timestep <= 0 {
		timestep = DefaultTimestep
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Stepper{
		world:    world,
		registry: registry,
		group:    group,
		floor:    floor,
		timestep: timestep,
		log:      log.Named("stepper"),
		held:     make(map[uuid.UUID]bool),
	}
	world.OnContact(s.onContact)
	return s
}

// Timestep returns the fixed increment used by Step.
func (s *Stepper) Timestep() float32 { return s.timestep }

// Steps returns how many times Step ran.
func (s *Stepper) Steps() uint64 { return s.steps }

// Step advances the world by one timestep and syncs every entity.
//
// Held entities drive their body from the visual's world pose instead of the other way
// round. When an entity is released its body is re-seeded from the visual first, so the
// object continues from where the controller left it.
func (s *Stepper) Step() {
	s.registry.Each(func(rec *entity.Record) {
		held := rec.Visual.Parent() != s.group
		wasHeld := s.held[rec.ID]
		if held || wasHeld {
			rec.Body.SetPose(rec.Visual.WorldPose())
		}
		rec.Body.Kinematic = held
		if held {
			s.held[rec.ID] = true
		} else {
			delete(s.held, rec.ID)
		}
	})

	s.world.Step(s.timestep)
	s.steps++

	s.registry.Each(func(rec *entity.Record) {
		if rec.Body.Kinematic {
			return
		}
		rec.Visual.MoveTo(rec.Body.Pose())
	})
}

func (s *Stepper) onContact(c physics.Contact) {
	if s.floor == nil || (c.A != s.floor && c.B != s.floor) {
		s.log.Debug("bodies touched", zap.Int("a", c.A.ID), zap.Int("b", c.B.ID))
		return
	}
	other := c.A
	if other == s.floor {
		other = c.B
	}
	s.log.Info("body hit the floor", zap.Int("body", other.ID), zap.Uint64("step", s.steps))
}
