package geometry

import (
	"strings"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/kernel"
	"github.com/chazu/bimgen/pkg/model"
)

// buildOpenings places the windows and doors of the layout in their host
// walls and cuts them out of the host solids.
func (e *Engine) buildOpenings() {
	accepted := make(map[model.ID][]kernel.Solid) // wall-local opening solids per host
	for _, op := range e.p.Openings {
		e.buildOpening(op, accepted)
	}
}

// hostName maps a layout wall reference to the wall's name. Facade names
// match in any case; partition names match exactly.
func hostName(ref string) string {
	if f, ok := facadeByName[strings.ToLower(strings.TrimSpace(ref))]; ok {
		return facadeWallNames[f]
	}
	return ref
}

func (e *Engine) buildOpening(op config.OpeningParams, accepted map[model.ID][]kernel.Solid) {
	key := wallKey(op.Level, hostName(op.Wall))
	if e.failed[key] {
		e.fail(model.KindOpening, op.Level, op.Name, CodeHostFailed, "host wall %q failed synthesis", op.Wall)
		return
	}
	hostID, ok := e.walls[key]
	if !ok {
		e.fail(model.KindOpening, op.Level, op.Name, CodeUnknownHost, "no wall %q on this level", op.Wall)
		return
	}
	host := e.b.Get(hostID)
	wd := host.Data.(model.WallData)
	c := e.p.EdgeClearance

	switch {
	case op.Sill < 0:
		e.fail(model.KindOpening, op.Level, op.Name, CodeNegativeSill, "sill %.3f is below the story base", op.Sill)
		return
	case op.Offset < c-eps:
		e.fail(model.KindOpening, op.Level, op.Name, CodeExceedsLength,
			"offset %.3f is within the %.3f edge clearance", op.Offset, c)
		return
	case op.Offset+op.Width > wd.Length()-c+eps:
		e.fail(model.KindOpening, op.Level, op.Name, CodeExceedsLength,
			"offset %.3f + width %.3f exceeds wall length %.3f less clearance %.3f",
			op.Offset, op.Width, wd.Length(), c)
		return
	case op.Sill+op.Height > wd.Height-c+eps:
		e.fail(model.KindOpening, op.Level, op.Name, CodeExceedsHeight,
			"sill %.3f + height %.3f exceeds wall height %.3f less clearance %.3f",
			op.Sill, op.Height, wd.Height, c)
		return
	}

	data := model.OpeningData{
		Kind:     op.Kind,
		Host:     hostID,
		Offset:   op.Offset,
		Sill:     op.Sill,
		Width:    op.Width,
		Height:   op.Height,
		Operable: op.Operable,
		Glazing:  op.Glazing,
	}

	// The opening passes through the full wall thickness.
	min := model.Vec3{X: op.Offset, Y: -wd.Thickness / 2, Z: op.Sill}
	size := model.Vec3{X: op.Width, Y: wd.Thickness, Z: op.Height}
	local, err := e.box(min, size)
	if err != nil {
		e.fail(model.KindOpening, op.Level, op.Name, CodeSolidFailed, "%v", err)
		return
	}
	for _, other := range accepted[hostID] {
		if e.collides(local, other) {
			e.fail(model.KindOpening, op.Level, op.Name, CodeOpeningOverlap,
				"overlaps another opening in %q", host.Name)
			return
		}
	}
	solid := e.place(local, host.Placement)

	cut := e.k.Difference(e.solids[hostID], solid)
	centre := host.Placement.ToWorld(model.Vec3{X: op.Offset + op.Width/2, Z: op.Sill + op.Height/2})
	if cut.Contains(centre.X, centre.Y, centre.Z) {
		e.fail(model.KindOpening, op.Level, op.Name, CodeVoidCheck, "host %q is still solid at the opening centre", host.Name)
		return
	}

	// The opening's frame sits on the wall's outer face.
	pl := model.Placement{
		Origin:       host.Placement.ToWorld(min),
		RefDirection: host.Placement.RefDirection,
	}
	e.add(&model.Entity{
		Kind:      model.KindOpening,
		Name:      op.Name,
		Parent:    host.Parent,
		Placement: pl,
		Body:      []model.Extrusion{boxBody(model.Vec3{}, size)},
		Data:      data,
	}, solid)
	e.solids[hostID] = cut
	accepted[hostID] = append(accepted[hostID], local)
}
