// Package geometry synthesizes the physical elements of the building on
// top of the spatial hierarchy: walls, slabs, the roof, stairs, openings
// and fixtures. Each element is recorded twice, as a swept-solid
// description on the entity and as a kernel solid used for bounds and
// boolean checks.
package geometry

import (
	"fmt"
	"math"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/hierarchy"
	"github.com/chazu/bimgen/pkg/kernel"
	"github.com/chazu/bimgen/pkg/model"
)

// eps absorbs floating point noise in containment checks (metres).
const eps = 1e-9

// Engine appends synthesized elements to a model under construction.
type Engine struct {
	k     kernel.Kernel
	b     *model.Builder
	p     *config.Params
	spine *hierarchy.Spine

	elevations []float64
	solids     map[model.ID]kernel.Solid
	walls      map[string]model.ID // level/name
	failed     map[string]bool     // walls whose synthesis failed
	slabs      []model.ID          // floor slab per level
	report     *Report
}

// New creates an Engine for the stories in spine.
func New(k kernel.Kernel, b *model.Builder, spine *hierarchy.Spine, p *config.Params) *Engine {
	return &Engine{
		k:          k,
		b:          b,
		p:          p,
		spine:      spine,
		elevations: hierarchy.Elevations(p.StoryHeights, p.Basement),
		solids:     make(map[model.ID]kernel.Solid),
		walls:      make(map[string]model.ID),
		failed:     make(map[string]bool),
		slabs:      make([]model.ID, p.Levels()),
		report:     &Report{Elements: make(map[model.Kind]int)},
	}
}

// Synthesize runs a fresh Engine over the building.
func Synthesize(k kernel.Kernel, b *model.Builder, spine *hierarchy.Spine, p *config.Params) *Report {
	return New(k, b, spine, p).Run()
}

// Run synthesizes every element. Elements that fail are reported as
// diagnostics and left out of the model.
func (e *Engine) Run() *Report {
	for level := range e.p.StoryHeights {
		e.buildSlab(level)
		e.buildExteriorWalls(level)
	}
	e.buildPartitions()
	e.buildRoof()
	e.buildOpenings()
	e.buildStairs()
	e.buildStoop()
	e.buildFixtures()
	return e.report
}

// Solid returns the kernel solid of a synthesized element. Host walls
// carry their openings cut out.
func (e *Engine) Solid(id model.ID) kernel.Solid { return e.solids[id] }

// Report returns the diagnostics collected so far.
func (e *Engine) Report() *Report { return e.report }

func (e *Engine) fail(kind model.Kind, level int, name, code, format string, args ...interface{}) {
	e.report.Diagnostics = append(e.report.Diagnostics, &GeometryError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
		Element: name,
		Level:   level,
	})
}

// add appends an element, records its solid and derives its bounds.
func (e *Engine) add(ent *model.Entity, solid kernel.Solid) model.ID {
	ent.Bounds = bounds(solid)
	id := e.b.Add(ent)
	e.solids[id] = solid
	e.report.Elements[ent.Kind]++
	return id
}

func (e *Engine) story(level int) *model.Entity { return e.b.Get(e.spine.Story(level)) }

func wallKey(level int, name string) string { return fmt.Sprintf("%d/%s", level, name) }

// interiorContains reports whether the plan point lies within the clear
// interior, edges included.
func (e *Engine) interiorContains(pt model.Vec2) bool {
	t := e.p.WallThickness
	return pt.X >= t-eps && pt.X <= e.p.Width-t+eps &&
		pt.Y >= t-eps && pt.Y <= e.p.Depth-t+eps
}

// collides reports whether two solids share volume. The kernel's bounding
// box test rules out disjoint pairs; the intersection is then sampled at
// the centre of the overlapping boxes.
func (e *Engine) collides(a, b kernel.Solid) bool {
	if !kernel.Overlaps(a, b, eps) {
		return false
	}
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	var c [3]float64
	for i := range c {
		c[i] = (math.Max(amin[i], bmin[i]) + math.Min(amax[i], bmax[i])) / 2
	}
	return e.k.Intersection(a, b).Contains(c[0], c[1], c[2])
}

// place moves a solid built in a placement's local frame into model space.
func (e *Engine) place(s kernel.Solid, pl model.Placement) kernel.Solid {
	deg := math.Atan2(pl.RefDirection.Y, pl.RefDirection.X) * 180 / math.Pi
	if deg != 0 {
		s = e.k.Rotate(s, 0, 0, deg)
	}
	return e.k.Translate(s, pl.Origin.X, pl.Origin.Y, pl.Origin.Z)
}

// extrude builds the kernel solid for a swept-solid body in local frame.
func (e *Engine) extrude(body []model.Extrusion) (kernel.Solid, error) {
	var out kernel.Solid
	for _, x := range body {
		profile := make([][2]float64, len(x.Profile))
		for i, p := range x.Profile {
			profile[i] = [2]float64{p.X, p.Y}
		}
		s, err := e.k.Extrude(profile, x.Depth)
		if err != nil {
			return nil, err
		}
		s = e.k.Translate(s, x.Position.X, x.Position.Y, x.Position.Z)
		if out == nil {
			out = s
		} else {
			out = e.k.Union(out, s)
		}
	}
	if out == nil {
		return nil, fmt.Errorf("empty body")
	}
	return out, nil
}

// box builds an axis-aligned box with its minimum corner at min, in the
// local frame.
func (e *Engine) box(min model.Vec3, size model.Vec3) (kernel.Solid, error) {
	s, err := e.k.Box(size.X, size.Y, size.Z)
	if err != nil {
		return nil, err
	}
	return e.k.Translate(s, min.X, min.Y, min.Z), nil
}

func bounds(s kernel.Solid) model.Box3 {
	min, max := s.BoundingBox()
	return model.Box3{
		Min: model.Vec3{X: min[0], Y: min[1], Z: min[2]},
		Max: model.Vec3{X: max[0], Y: max[1], Z: max[2]},
	}
}

// boxBody is the swept-solid description of an axis-aligned box.
func boxBody(min model.Vec3, size model.Vec3) model.Extrusion {
	return model.Extrusion{
		Profile:   model.Rect(min.XY(), size.X, size.Y),
		Position:  model.Vec3{Z: min.Z},
		Direction: model.UnitZ,
		Depth:     size.Z,
	}
}
