package geometry

import (
	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/model"
)

// Wall names of the exterior loop, by facade.
var facadeWallNames = map[model.Facade]string{
	model.FacadeFront: "Front Wall",
	model.FacadeRight: "Right Wall",
	model.FacadeRear:  "Rear Wall",
	model.FacadeLeft:  "Left Wall",
}

// facadeByName resolves the facade names accepted as opening hosts.
var facadeByName = map[string]model.Facade{
	config.WallFront: model.FacadeFront,
	config.WallRear:  model.FacadeRear,
	config.WallLeft:  model.FacadeLeft,
	config.WallRight: model.FacadeRight,
}

// Materials
const (
	MaterialBrownstone = "Brownstone"
	MaterialBrick      = "Brick"
	MaterialConcrete   = "Concrete"
	MaterialPlaster    = "Plaster"
	MaterialGypsum     = "Gypsum Partition"
	MaterialWood       = "Wood"
	MaterialWoodFloor  = "Wood Floor"
	MaterialRoofing    = "Bitumen Membrane"
)

// wallLayers returns the build-up of a wall, outer to inner.
func wallLayers(f model.Facade, thickness float64, belowGrade bool) []model.MaterialLayer {
	structure := MaterialBrick
	if belowGrade {
		structure = MaterialConcrete
	}
	switch f {
	case model.FacadeFront:
		return []model.MaterialLayer{
			{Material: MaterialBrownstone, Thickness: 0.25 * thickness, Role: "cladding"},
			{Material: structure, Thickness: 0.625 * thickness, Role: "structure"},
			{Material: MaterialPlaster, Thickness: 0.125 * thickness, Role: "finish"},
		}
	case model.FacadeRear:
		return []model.MaterialLayer{{Material: MaterialBrick, Thickness: thickness, Role: "structure"}}
	case model.FacadeInterior:
		return []model.MaterialLayer{{Material: MaterialGypsum, Thickness: thickness, Role: "partition"}}
	default:
		return []model.MaterialLayer{{Material: structure, Thickness: thickness, Role: "structure"}}
	}
}

// buildExteriorWalls creates the four walls of a story as a
// counter-clockwise loop. Front and rear span the full width; the sides
// run between them.
func (e *Engine) buildExteriorWalls(level int) {
	w, d, t := e.p.Width, e.p.Depth, e.p.WallThickness
	loop := []struct {
		facade     model.Facade
		start, end model.Vec2
	}{
		{model.FacadeFront, model.Vec2{X: 0, Y: t / 2}, model.Vec2{X: w, Y: t / 2}},
		{model.FacadeRight, model.Vec2{X: w - t/2, Y: t}, model.Vec2{X: w - t/2, Y: d - t}},
		{model.FacadeRear, model.Vec2{X: w, Y: d - t/2}, model.Vec2{X: 0, Y: d - t/2}},
		{model.FacadeLeft, model.Vec2{X: t / 2, Y: d - t}, model.Vec2{X: t / 2, Y: t}},
	}
	for _, seg := range loop {
		e.buildWall(level, facadeWallNames[seg.facade], seg.facade, seg.start, seg.end, t)
	}
}

// buildPartitions creates the interior walls requested by the layout.
// Partitions must stay inside the interior footprint.
func (e *Engine) buildPartitions() {
	for _, pt := range e.p.Partitions {
		for _, level := range pt.Levels {
			if !e.interiorContains(pt.From) || !e.interiorContains(pt.To) {
				e.failed[wallKey(level, pt.Name)] = true
				e.fail(model.KindWall, level, pt.Name, CodeOutsideInterior,
					"centerline (%.3f, %.3f)-(%.3f, %.3f) leaves the interior footprint",
					pt.From.X, pt.From.Y, pt.To.X, pt.To.Y)
				continue
			}
			e.buildWall(level, pt.Name, model.FacadeInterior, pt.From, pt.To, e.p.PartitionThickness)
		}
	}
}

// buildWall synthesizes a straight wall whose local frame starts at the
// centerline start, X along the wall, and spans the full story height.
func (e *Engine) buildWall(level int, name string, facade model.Facade, start, end model.Vec2, thickness float64) {
	key := wallKey(level, name)
	if _, taken := e.walls[key]; taken {
		e.fail(model.KindWall, level, name, CodeDuplicateName, "a wall with this name already exists on the level")
		return
	}

	story := e.story(level)
	sd := story.Data.(model.StoryData)
	data := model.WallData{
		Start:     start,
		End:       end,
		Thickness: thickness,
		Height:    sd.Height,
		Layers:    wallLayers(facade, thickness, sd.Index < 0),
		Facade:    facade,
	}
	length := data.Length()
	pl := model.Placement{Origin: start.Vec3(sd.Elevation), RefDirection: data.Direction()}

	min := model.Vec3{Y: -thickness / 2}
	size := model.Vec3{X: length, Y: thickness, Z: sd.Height}
	solid, err := e.box(min, size)
	if err != nil {
		e.failed[key] = true
		e.fail(model.KindWall, level, name, CodeSolidFailed, "%v", err)
		return
	}

	id := e.add(&model.Entity{
		Kind:      model.KindWall,
		Name:      name,
		Parent:    story.ID,
		Placement: pl,
		Body:      []model.Extrusion{boxBody(min, size)},
		Data:      data,
	}, e.place(solid, pl))
	e.walls[key] = id
}
