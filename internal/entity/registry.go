package entity

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"arsketch/internal/physics"
	"arsketch/internal/pose"
	"arsketch/internal/scene"
)

// ErrCapReached is returned by Create once the registry holds Cap entities.
var ErrCapReached = errors.New("entity: creation cap reached")

// State is the registry's position relative to its creation cap.
type State int

const (
	// Empty means nothing has been created yet.
	Empty State = iota
	// Created means at least one entity exists and more may be created.
	Created
	// Full means the cap is reached; Create fails.
	Full
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Created:
		return "created"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// Spec describes what Create builds: a box of Size with the given mass and color.
// Cap limits how many entities may exist; 0 means unlimited.
type Spec struct {
	Size  mgl32.Vec3
	Mass  float32
	Color mgl32.Vec3
	Cap   int
}

// Record pairs the visual and physical views of one spawned object.
type Record struct {
	ID     uuid.UUID
	Index  int
	Visual *scene.Node
	Body   *physics.Body
}

// Handle identifies a created entity.
type Handle struct {
	ID    uuid.UUID
	Index int
}

// Registry is an arena of entity records. Records are never removed, so Index is stable
// and iteration order is creation order.
type Registry struct {
	spec  Spec
	group *scene.Node
	world *physics.World
	log   *zap.Logger

	records  []*Record
	byID     map[uuid.UUID]*Record
	byVisual map[*scene.Node]*Record
}

// NewRegistry returns an empty registry that adds visuals to group and bodies to world.
func NewRegistry(spec Spec, group *scene.Node, world *physics.World, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		spec:     spec,
		group:    group,
		world:    world,
		log:      log.Named("entity"),
		byID:     make(map[uuid.UUID]*Record),
		byVisual: make(map[*scene.Node]*Record),
	}
}

// State reports whether more entities can be created.
func (r *Registry) State() State {
	switch {
	case len(r.records) == 0:
		return Empty
	case r.spec.Cap > 0 && len(r.records) >= r.spec.Cap:
		return Full
	default:
		return Created
	}
}

// CanCreate reports whether Create would succeed.
func (r *Registry) CanCreate() bool {
	return r.State() != Full
}

// SetCap changes the creation cap; 0 means unlimited. Existing entities are kept.
func (r *Registry) SetCap(n int) {
	if n < 0 {
		n = 0
	}
	r.spec.Cap = n
}

// Cap returns the creation cap.
func (r *Registry) Cap() int { return r.spec.Cap }

// Create builds a visual and a body at p and registers both under one record.
// p is a world pose. The visual takes p's position, orientation and scale; the body takes
// its position and orientation, with half extents scaled to match the visual.
func (r *Registry) Create(p pose.Pose) (Handle, error) {
	if !r.CanCreate() {
		return Handle{}, ErrCapReached
	}
	if p.Scale == (mgl32.Vec3{}) {
		p.Scale = mgl32.Vec3{1, 1, 1}
	}
	id := uuid.New()

	visual := scene.NewMesh("entity-"+id.String()[:8], scene.Box{Size: r.spec.Size}, scene.Material{Color: r.spec.Color})
	half := mgl32.Vec3{
		r.spec.Size[0] * abs(p.Scale[0]) / 2,
		r.spec.Size[1] * abs(p.Scale[1]) / 2,
		r.spec.Size[2] * abs(p.Scale[2]) / 2,
	}
	body := physics.NewBox(p, half, r.spec.Mass)

	rec := &Record{ID: id, Index: len(r.records), Visual: visual, Body: body}
	r.group.Add(visual)
	visual.Scale = p.Scale
	visual.MoveTo(p)
	r.world.AddBody(body)
	r.records = append(r.records, rec)
	r.byID[id] = rec
	r.byVisual[visual] = rec

	r.log.Info("entity created",
		zap.Stringer("id", id),
		zap.Int("index", rec.Index),
		zap.Float32s("position", p.Position[:]),
	)
	return Handle{ID: id, Index: rec.Index}, nil
}

// Len returns the number of entities.
func (r *Registry) Len() int { return len(r.records) }

// Get returns the record for id.
func (r *Registry) Get(id uuid.UUID) (*Record, bool) {
	rec, ok := r.byID[id]
	return rec, ok
}

// ByVisual returns the record whose visual is n.
func (r *Registry) ByVisual(n *scene.Node) (*Record, bool) {
	rec, ok := r.byVisual[n]
	return rec, ok
}

// Each calls fn for every record in creation order.
func (r *Registry) Each(fn func(*Record)) {
	for _, rec := range r.records {
		fn(rec)
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
