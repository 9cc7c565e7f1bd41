package interaction

import (
	"go.uber.org/zap"

	"arsketch/internal/scene"
	"arsketch/internal/xr"
)

// Emissive channels used for feedback.
const (
	hoverChannel  = 0 // red
	selectChannel = 2 // blue
)

// Picker casts controller rays into the world group, highlights what they point at and
// moves grabbed objects between the world group and the controller's frame.
type Picker struct {
	group      *scene.Node
	raycaster  scene.Raycaster
	missLength float32
	log        *zap.Logger

	highlighted []*scene.Node
}

// NewPicker returns a picker over the direct children of group.
func NewPicker(group *scene.Node, missLength float32, log *zap.Logger) *Picker {
	if missLength <= 0 {
		missLength = DefaultMissLength
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Picker{group: group, missLength: missLength, log: log.Named("picker")}
}

// MissLength is the targeting line length used when nothing is hit.
func (p *Picker) MissLength() float32 { return p.missLength }

// Highlighted returns the objects currently carrying the hover highlight.
func (p *Picker) Highlighted() []*scene.Node {
	out := make([]*scene.Node, len(p.highlighted))
	copy(out, p.highlighted)
	return out
}

// Intersections returns what c's ray hits among the world group's children, nearest first.
func (p *Picker) Intersections(c *Controller) []scene.Intersection {
	return p.raycaster.Intersect(c.Ray(), p.group.Children())
}

// ClearHighlights removes last frame's hover highlight from every object.
func (p *Picker) ClearHighlights() {
	for _, n := range p.highlighted {
		if n.Material != nil {
			n.Material.Emissive[hoverChannel] = 0
		}
	}
	p.highlighted = p.highlighted[:0]
}

// Hover re-evaluates what c points at and highlights the nearest hit. Controllers in
// screen mode have no persistent ray and never hover; a holding controller keeps its
// line and hover state unchanged.
func (p *Picker) Hover(c *Controller) {
	if c.Mode == xr.ModalityScreen {
		c.hovered = nil
		return
	}
	if c.selected != nil {
		return
	}
	hits := p.Intersections(c)
	if len(hits) == 0 {
		c.hovered = nil
		c.setLineLength(p.missLength)
		return
	}
	hit := hits[0]
	p.highlight(hit.Node)
	c.hovered = hit.Node
	c.setLineLength(hit.Distance)
}

func (p *Picker) highlight(n *scene.Node) {
	for _, h := range p.highlighted {
		if h == n {
			return
		}
	}
	if n.Material != nil {
		n.Material.Emissive[hoverChannel] = 1
	}
	p.highlighted = append(p.highlighted, n)
}

// SelectStart grabs the nearest object under c's ray: it is marked selected and
// reparented into the controller's frame so it follows the controller. It returns the
// grabbed object, or nil when nothing is hit or c already holds something.
func (p *Picker) SelectStart(c *Controller) *scene.Node {
	if c.selected != nil {
		return nil
	}
	hits := p.Intersections(c)
	if len(hits) == 0 {
		return nil
	}
	obj := hits[0].Node
	if obj.Material != nil {
		obj.Material.Emissive[selectChannel] = 1
	}
	c.Node.Attach(obj)
	c.selected = obj
	p.log.Debug("grabbed", zap.Int("controller", c.Index), zap.String("object", obj.Name))
	return obj
}

// SelectEnd releases c's held object back into the world group, keeping its world pose.
// It returns the released object, or nil when c held nothing.
func (p *Picker) SelectEnd(c *Controller) *scene.Node {
	obj := c.selected
	if obj == nil {
		return nil
	}
	if obj.Material != nil {
		obj.Material.Emissive[selectChannel] = 0
	}
	p.group.Attach(obj)
	c.selected = nil
	p.log.Debug("released", zap.Int("controller", c.Index), zap.String("object", obj.Name))
	return obj
}
