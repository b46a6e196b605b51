package classify

import (
	"fmt"

	"github.com/chazu/bimgen/pkg/model"
	"github.com/chazu/bimgen/pkg/units"
)

// accessibleDoorWidth is the clear width of a wheelchair-accessible door.
var accessibleDoorWidth = units.Inches(36)

// Classify annotates every unclassified entity of m and returns how many
// were annotated. Entities that already carry a tag are left alone, so a
// second call is a no-op. Geometry is never touched.
func Classify(m *model.Model) (int, error) {
	n := 0
	for _, e := range m.Entities() {
		if e.Classified() {
			continue
		}
		class := ClassOf(e)
		schema, ok := SchemaFor(class)
		if !ok {
			return n, fmt.Errorf("no schema for %s %s", e.Kind, e.ID)
		}
		props := model.PropertyRecord{SetName: schema.SetName, Items: bind(m, e)}
		if missing := schema.Missing(props); len(missing) > 0 {
			return n, fmt.Errorf("%s %q: binder left out %v", class, e.Label(), missing)
		}
		if m.Annotate(e.ID, class, props) {
			n++
		}
	}
	return n, nil
}

func prop(name string, v model.Value) model.Property {
	return model.Property{Name: name, Value: v}
}

// bind derives the property values of e in schema order.
func bind(m *model.Model, e *model.Entity) []model.Property {
	switch d := e.Data.(type) {
	case model.ProjectData:
		return []model.Property{
			prop("LengthUnit", model.Label(d.LengthUnit)),
			prop("SourceUnit", model.Label(d.SourceUnit)),
		}
	case model.SiteData:
		return []model.Property{
			prop("RefLatitude", model.Real(d.RefLatitude)),
			prop("RefLongitude", model.Real(d.RefLongitude)),
		}
	case model.BuildingData:
		stories := m.Stories()
		basement := len(stories) > 0 && stories[0].Data.(model.StoryData).Index < 0
		return []model.Property{
			prop("NumberOfStoreys", model.Integer(len(stories))),
			prop("Width", model.Length(d.Width)),
			prop("Depth", model.Length(d.Depth)),
			prop("Height", model.Length(d.Height)),
			prop("HasBasement", model.Bool(basement)),
		}
	case model.StoryData:
		return []model.Property{
			prop("Elevation", model.Length(d.Elevation)),
			prop("Height", model.Length(d.Height)),
			prop("StoreyIndex", model.Integer(d.Index)),
			prop("AboveGround", model.Bool(d.Index >= 0)),
		}
	case model.SpaceData:
		return []model.Property{
			prop("Category", model.Label(d.Category)),
			prop("NetFloorArea", model.Real(model.PolygonArea(d.Boundary))),
			prop("Height", model.Length(d.Height)),
			prop("IsExternal", model.Bool(false)),
		}
	case model.WallData:
		external := d.Facade.External()
		fire, acoustic := "1HR", "STC 45"
		if external {
			fire, acoustic = "2HR", "STC 50"
		}
		return []model.Property{
			prop("Material", model.Label(structuralMaterial(d.Layers))),
			prop("IsExternal", model.Bool(external)),
			prop("LoadBearing", model.Bool(external)),
			prop("FireRating", model.Label(fire)),
			prop("AcousticRating", model.Label(acoustic)),
		}
	case model.SlabData:
		story := m.Story(e)
		lowest := story != nil && story.Data.(model.StoryData).Level == 0
		return []model.Property{
			prop("Material", model.Label(d.Material)),
			prop("IsExternal", model.Bool(lowest)),
			prop("LoadBearing", model.Bool(true)),
			prop("FireRating", model.Label("2HR")),
			prop("PitchAngle", model.Real(0)),
		}
	case model.RoofData:
		return []model.Property{
			prop("Material", model.Label(d.Material)),
			prop("IsExternal", model.Bool(true)),
			prop("FireRating", model.Label("1HR")),
			prop("ProjectedArea", model.Real(model.PolygonArea(d.Boundary))),
		}
	case model.StairData:
		fire := "1HR"
		if d.Exterior {
			fire = "NONE"
		}
		treads := d.StepCount - 1
		if treads < 0 {
			treads = 0
		}
		return []model.Property{
			prop("NumberOfRisers", model.Integer(d.StepCount)),
			prop("NumberOfTreads", model.Integer(treads)),
			prop("RiserHeight", model.Length(d.RiserHeight)),
			prop("TreadLength", model.Length(d.TreadDepth)),
			prop("Material", model.Label(d.Material)),
			prop("FireRating", model.Label(fire)),
		}
	case model.OpeningData:
		external := false
		if host := m.Get(d.Host); host != nil {
			if wd, ok := host.Data.(model.WallData); ok {
				external = wd.Facade.External()
			}
		}
		if d.Kind == model.OpeningDoor {
			fire := "20MIN"
			if external {
				fire = "90MIN"
			}
			return []model.Property{
				prop("IsExternal", model.Bool(external)),
				prop("IsOperable", model.Bool(d.Operable)),
				prop("FireRating", model.Label(fire)),
				prop("HandicapAccessible", model.Bool(d.Width >= accessibleDoorWidth-1e-9)),
			}
		}
		return []model.Property{
			prop("IsExternal", model.Bool(external)),
			prop("IsOperable", model.Bool(d.Operable)),
			prop("GlazingSpec", model.Label(d.Glazing)),
			prop("FireRating", model.Label("NONE")),
		}
	case model.FixtureData:
		mounted := ""
		if host := m.Get(d.Host); host != nil {
			mounted = host.Name
		}
		return []model.Property{
			prop("FixtureType", model.Label(d.Type)),
			prop("Material", model.Label(d.Material)),
			prop("MountedTo", model.Label(mounted)),
		}
	}
	return nil
}

// structuralMaterial returns the material of the structural layer, or
// the first layer when none is marked.
func structuralMaterial(layers []model.MaterialLayer) string {
	for _, l := range layers {
		if l.Role == "structure" {
			return l.Material
		}
	}
	if len(layers) > 0 {
		return layers[0].Material
	}
	return ""
}
