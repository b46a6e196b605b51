package geometry

import (
	"strings"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/model"
)

// fixtureMaterials is the default finish of each fixture type.
var fixtureMaterials = map[model.FixtureType]string{
	model.FixtureSink:        "Stainless Steel",
	model.FixtureToilet:      "Porcelain",
	model.FixtureWashbasin:   "Porcelain",
	model.FixtureBathtub:     "Enamelled Cast Iron",
	model.FixturePanel:       "Steel",
	model.FixtureAirHandler:  "Galvanized Steel",
	model.FixtureWaterHeater: "Steel",
}

// buildFixtures places the layout's fixtures in the default space of
// their story.
func (e *Engine) buildFixtures() {
	for _, fx := range e.p.Fixtures {
		e.buildFixture(fx)
	}
}

func (e *Engine) buildFixture(fx config.FixtureParams) {
	story := e.story(fx.Level)
	sd := story.Data.(model.StoryData)

	host := e.resolveHost(fx)
	if host.IsZero() {
		return
	}

	switch {
	case fx.Elevation < 0:
		e.fail(model.KindFixture, fx.Level, fx.Name, CodeNegativeElevation,
			"elevation %.3f is below the floor", fx.Elevation)
		return
	case fx.Elevation+fx.Size.Z > sd.Height+eps:
		e.fail(model.KindFixture, fx.Level, fx.Name, CodeFixtureTooTall,
			"top %.3f exceeds story height %.3f", fx.Elevation+fx.Size.Z, sd.Height)
		return
	}

	pl := model.At(fx.At.Vec3(sd.Elevation + fx.Elevation))
	size := fx.Size
	solid, err := e.box(model.Vec3{}, size)
	if err != nil {
		e.fail(model.KindFixture, fx.Level, fx.Name, CodeSolidFailed, "%v", err)
		return
	}
	solid = e.place(solid, pl)
	if b := bounds(solid); !e.spaceBox(fx.Level).ContainsBox(b, eps) {
		e.fail(model.KindFixture, fx.Level, fx.Name, CodeOutsideInterior,
			"footprint (%.3f, %.3f)-(%.3f, %.3f) leaves the interior", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
		return
	}
	e.add(&model.Entity{
		Kind:      model.KindFixture,
		Name:      fx.Name,
		Parent:    e.spine.Space(fx.Level),
		Placement: pl,
		Body:      []model.Extrusion{boxBody(model.Vec3{}, size)},
		Data: model.FixtureData{
			Type:     fx.Type,
			Host:     host,
			Size:     size,
			Material: fixtureMaterials[fx.Type],
		},
	}, solid)
}

// spaceBox is the clear volume of a story's space, floor to ceiling.
func (e *Engine) spaceBox(level int) model.Box3 {
	sd := e.story(level).Data.(model.StoryData)
	space := e.b.Get(e.spine.Space(level)).Data.(model.SpaceData)
	lo, hi := model.PolygonBounds(space.Boundary)
	return model.Box3{Min: lo.Vec3(sd.Elevation), Max: hi.Vec3(sd.Top())}
}

// resolveHost finds the element a fixture is mounted to: the story's floor
// slab or a wall on the same level.
func (e *Engine) resolveHost(fx config.FixtureParams) model.ID {
	if strings.EqualFold(fx.Host, config.HostFloor) {
		if id := e.slabs[fx.Level]; !id.IsZero() {
			return id
		}
		e.fail(model.KindFixture, fx.Level, fx.Name, CodeHostFailed, "floor slab of level %d failed synthesis", fx.Level)
		return model.ZeroID
	}
	key := wallKey(fx.Level, hostName(fx.Host))
	if e.failed[key] {
		e.fail(model.KindFixture, fx.Level, fx.Name, CodeHostFailed, "host wall %q failed synthesis", fx.Host)
		return model.ZeroID
	}
	if id, ok := e.walls[key]; ok {
		return id
	}
	e.fail(model.KindFixture, fx.Level, fx.Name, CodeUnknownHost, "no element %q on this level", fx.Host)
	return model.ZeroID
}
