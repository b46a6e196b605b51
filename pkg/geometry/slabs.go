package geometry

import (
	"github.com/chazu/bimgen/pkg/model"
)

// buildSlab creates the floor slab of a story with its top at the story's
// base elevation. The lowest slab is concrete; the rest are timber.
func (e *Engine) buildSlab(level int) {
	story := e.story(level)
	sd := story.Data.(model.StoryData)
	ft := e.p.FloorThickness
	footprint := model.Rect(model.Vec2{}, e.p.Width, e.p.Depth)
	name := story.Name + " Slab"
	material := MaterialWoodFloor
	if level == 0 {
		material = MaterialConcrete
	}

	body := []model.Extrusion{{
		Profile:   footprint,
		Position:  model.Vec3{Z: -ft},
		Direction: model.UnitZ,
		Depth:     ft,
	}}
	pl := model.At(model.Vec3{Z: sd.Elevation})
	solid, err := e.extrude(body)
	if err != nil {
		e.fail(model.KindSlab, level, name, CodeSolidFailed, "%v", err)
		return
	}
	e.slabs[level] = e.add(&model.Entity{
		Kind:      model.KindSlab,
		Name:      name,
		Parent:    story.ID,
		Placement: pl,
		Body:      body,
		Data: model.SlabData{
			Boundary:  footprint,
			Thickness: ft,
			Direction: model.UnitZ,
			Material:  material,
		},
	}, e.place(solid, pl))
}

// buildRoof creates the flat roof on top of the highest story, with a
// parapet ring around its edge.
func (e *Engine) buildRoof() {
	level := e.p.Levels() - 1
	story := e.story(level)
	sd := story.Data.(model.StoryData)
	w, d := e.p.Width, e.p.Depth
	rt, ph, pt := e.p.RoofThickness, e.p.ParapetHeight, e.p.ParapetThickness
	footprint := model.Rect(model.Vec2{}, w, d)

	if 2*pt >= w || 2*pt >= d {
		e.fail(model.KindRoof, level, "Roof", CodeSolidFailed, "parapet thickness %.3f leaves no roof inside the parapet", pt)
		return
	}

	// The parapet is split into four straight segments so each profile
	// stays a simple polygon.
	parapet := [][2]model.Vec2{
		{{X: 0, Y: 0}, {X: w, Y: pt}},
		{{X: w - pt, Y: pt}, {X: w, Y: d - pt}},
		{{X: 0, Y: d - pt}, {X: w, Y: d}},
		{{X: 0, Y: pt}, {X: pt, Y: d - pt}},
	}
	body := []model.Extrusion{{
		Profile:   footprint,
		Direction: model.UnitZ,
		Depth:     rt,
	}}
	for _, seg := range parapet {
		body = append(body, model.Extrusion{
			Profile:   model.Rect(seg[0], seg[1].X-seg[0].X, seg[1].Y-seg[0].Y),
			Position:  model.Vec3{Z: rt},
			Direction: model.UnitZ,
			Depth:     ph,
		})
	}

	// The kernel solid cuts the inner footprint out of a full block.
	slab, err := e.box(model.Vec3{}, model.Vec3{X: w, Y: d, Z: rt})
	if err != nil {
		e.fail(model.KindRoof, level, "Roof", CodeSolidFailed, "%v", err)
		return
	}
	outer, err := e.box(model.Vec3{Z: rt}, model.Vec3{X: w, Y: d, Z: ph})
	if err != nil {
		e.fail(model.KindRoof, level, "Roof", CodeSolidFailed, "%v", err)
		return
	}
	inner, err := e.box(model.Vec3{X: pt, Y: pt, Z: rt}, model.Vec3{X: w - 2*pt, Y: d - 2*pt, Z: ph})
	if err != nil {
		e.fail(model.KindRoof, level, "Roof", CodeSolidFailed, "%v", err)
		return
	}
	solid := e.k.Union(slab, e.k.Difference(outer, inner))

	pl := model.At(model.Vec3{Z: sd.Top()})
	e.add(&model.Entity{
		Kind:      model.KindRoof,
		Name:      "Roof",
		Parent:    story.ID,
		Placement: pl,
		Body:      body,
		Data: model.RoofData{
			Boundary:         footprint,
			Thickness:        rt,
			Direction:        model.UnitZ,
			ParapetHeight:    ph,
			ParapetThickness: pt,
			Material:         MaterialRoofing,
		},
	}, e.place(solid, pl))
}
