// Package classify tags every entity of a model with its semantic type
// and binds a property record drawn from a fixed schema per type.
package classify

import "github.com/chazu/bimgen/pkg/model"

// Semantic type tags. They name the output schema classes.
const (
	ClassProject           = "IfcProject"
	ClassSite              = "IfcSite"
	ClassBuilding          = "IfcBuilding"
	ClassStory             = "IfcBuildingStorey"
	ClassSpace             = "IfcSpace"
	ClassWall              = "IfcWall"
	ClassSlab              = "IfcSlab"
	ClassRoof              = "IfcRoof"
	ClassStair             = "IfcStair"
	ClassWindow            = "IfcWindow"
	ClassDoor              = "IfcDoor"
	ClassSanitaryTerminal  = "IfcSanitaryTerminal"
	ClassDistributionBoard = "IfcElectricDistributionBoard"
	ClassUnitaryEquipment  = "IfcUnitaryEquipment"
	ClassFlowTerminal      = "IfcFlowTerminal"
)

// Schema is the property set bound to a semantic type.
type Schema struct {
	SetName    string
	Properties []string // required, in output order
}

// Schemas lists the property schema of every semantic type.
var Schemas = map[string]Schema{
	ClassProject:  {"Pset_ProjectCommon", []string{"LengthUnit", "SourceUnit"}},
	ClassSite:     {"Pset_SiteCommon", []string{"RefLatitude", "RefLongitude"}},
	ClassBuilding: {"Pset_BuildingCommon", []string{"NumberOfStoreys", "Width", "Depth", "Height", "HasBasement"}},
	ClassStory:    {"Pset_BuildingStoreyCommon", []string{"Elevation", "Height", "StoreyIndex", "AboveGround"}},
	ClassSpace:    {"Pset_SpaceCommon", []string{"Category", "NetFloorArea", "Height", "IsExternal"}},
	ClassWall:     {"Pset_WallCommon", []string{"Material", "IsExternal", "LoadBearing", "FireRating", "AcousticRating"}},
	ClassSlab:     {"Pset_SlabCommon", []string{"Material", "IsExternal", "LoadBearing", "FireRating", "PitchAngle"}},
	ClassRoof:     {"Pset_RoofCommon", []string{"Material", "IsExternal", "FireRating", "ProjectedArea"}},
	ClassStair: {"Pset_StairCommon", []string{
		"NumberOfRisers", "NumberOfTreads", "RiserHeight", "TreadLength", "Material", "FireRating",
	}},
	ClassWindow: {"Pset_WindowCommon", []string{"IsExternal", "IsOperable", "GlazingSpec", "FireRating"}},
	ClassDoor:   {"Pset_DoorCommon", []string{"IsExternal", "IsOperable", "FireRating", "HandicapAccessible"}},
}

// fixtureSchema is shared by every fixture class.
var fixtureSchema = Schema{"Pset_FixtureCommon", []string{"FixtureType", "Material", "MountedTo"}}

func init() {
	for _, c := range []string{ClassSanitaryTerminal, ClassDistributionBoard, ClassUnitaryEquipment, ClassFlowTerminal} {
		Schemas[c] = fixtureSchema
	}
}

// SchemaFor returns the schema of a semantic type.
func SchemaFor(class string) (Schema, bool) {
	s, ok := Schemas[class]
	return s, ok
}

// Missing returns the required properties absent from r.
func (s Schema) Missing(r model.PropertyRecord) []string {
	var out []string
	for _, name := range s.Properties {
		if !r.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// ClassOf returns the semantic type tag for an entity.
func ClassOf(e *model.Entity) string {
	switch e.Kind {
	case model.KindProject:
		return ClassProject
	case model.KindSite:
		return ClassSite
	case model.KindBuilding:
		return ClassBuilding
	case model.KindStory:
		return ClassStory
	case model.KindSpace:
		return ClassSpace
	case model.KindWall:
		return ClassWall
	case model.KindSlab:
		return ClassSlab
	case model.KindRoof:
		return ClassRoof
	case model.KindStair:
		return ClassStair
	case model.KindOpening:
		if d, ok := e.Data.(model.OpeningData); ok && d.Kind == model.OpeningDoor {
			return ClassDoor
		}
		return ClassWindow
	case model.KindFixture:
		d, _ := e.Data.(model.FixtureData)
		switch {
		case d.Type.Sanitary():
			return ClassSanitaryTerminal
		case d.Type == model.FixturePanel:
			return ClassDistributionBoard
		case d.Type == model.FixtureAirHandler:
			return ClassUnitaryEquipment
		default:
			return ClassFlowTerminal
		}
	}
	return ""
}
