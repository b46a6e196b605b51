package model

// EntityData is the interface for kind-specific entity payloads.
type EntityData interface {
	entityData() // marker method restricting implementations to this package
}

// ---------------------------------------------------------------------------
// Spatial structure
// ---------------------------------------------------------------------------

// ProjectData carries the global unit system and origin.
type ProjectData struct {
	LengthUnit string `json:"length_unit"` // always "METRE" internally
	Origin     Vec3   `json:"origin"`
	SourceUnit string `json:"source_unit"` // unit the configuration was written in
}

func (ProjectData) entityData() {}

// SiteData identifies the site. The reference point is informational.
type SiteData struct {
	RefLatitude  float64 `json:"ref_latitude,omitempty"`
	RefLongitude float64 `json:"ref_longitude,omitempty"`
}

func (SiteData) entityData() {}

// BuildingData describes the overall footprint.
type BuildingData struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"` // sum of story heights
}

func (BuildingData) entityData() {}

// StoryData holds the stacking attributes of a story.
type StoryData struct {
	Level     int     `json:"level"`     // zero-based stacking position
	Index     int     `json:"index"`     // basement = -1, ground = 0
	Elevation float64 `json:"elevation"` // base elevation
	Height    float64 `json:"height"`    // floor-to-floor height
}

func (StoryData) entityData() {}

// Top returns the elevation of the story's ceiling plane.
func (d StoryData) Top() float64 { return d.Elevation + d.Height }

// SpaceCategory classifies a space's use.
type SpaceCategory string

const (
	SpacePublic     SpaceCategory = "public"
	SpacePrivate    SpaceCategory = "private"
	SpaceService    SpaceCategory = "service"
	SpaceMechanical SpaceCategory = "mechanical"
)

// SpaceData describes a bounded region within a story.
type SpaceData struct {
	Boundary []Vec2        `json:"boundary"`
	Height   float64       `json:"height"`
	Category SpaceCategory `json:"category"`
}

func (SpaceData) entityData() {}

// ---------------------------------------------------------------------------
// Walls
// ---------------------------------------------------------------------------

// Facade tags a wall's position in the building envelope.
type Facade string

const (
	FacadeFront    Facade = "front"
	FacadeRear     Facade = "rear"
	FacadeLeft     Facade = "left"
	FacadeRight    Facade = "right"
	FacadeInterior Facade = "interior"
)

// External reports whether the facade is part of the building envelope.
func (f Facade) External() bool { return f != FacadeInterior }

// MaterialLayer is one layer of a wall build-up.
type MaterialLayer struct {
	Material  string  `json:"material"`
	Thickness float64 `json:"thickness"`
	Role      string  `json:"role,omitempty"` // cladding, structure, finish
}

// WallData describes a straight wall.
type WallData struct {
	Start     Vec2            `json:"start"` // centerline start (plan)
	End       Vec2            `json:"end"`   // centerline end (plan)
	Thickness float64         `json:"thickness"`
	Height    float64         `json:"height"`
	Layers    []MaterialLayer `json:"layers"` // outer to inner
	Facade    Facade          `json:"facade"`
}

func (WallData) entityData() {}

// Length returns the centerline length.
func (d WallData) Length() float64 { return d.End.Sub(d.Start).Len() }

// Direction returns the unit vector from Start to End.
func (d WallData) Direction() Vec2 { return d.End.Sub(d.Start).Normalize() }

// ---------------------------------------------------------------------------
// Openings
// ---------------------------------------------------------------------------

// OpeningKind distinguishes windows from doors.
type OpeningKind string

const (
	OpeningWindow OpeningKind = "window"
	OpeningDoor   OpeningKind = "door"
)

// OpeningData describes a void in a host wall. Host is a lookup only;
// the opening never owns the wall.
type OpeningData struct {
	Kind     OpeningKind `json:"kind"`
	Host     ID          `json:"host"`
	Offset   float64     `json:"offset"` // along the host from its start
	Sill     float64     `json:"sill"`   // above the story base
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Operable bool        `json:"operable"`
	Glazing  string      `json:"glazing,omitempty"`
}

func (OpeningData) entityData() {}

// ---------------------------------------------------------------------------
// Slabs and roof
// ---------------------------------------------------------------------------

// SlabData describes a floor slab extruded from a plan boundary.
type SlabData struct {
	Boundary  []Vec2  `json:"boundary"`
	Thickness float64 `json:"thickness"`
	Direction Vec3    `json:"direction"` // extrusion direction
	Material  string  `json:"material"`
}

func (SlabData) entityData() {}

// RoofData describes a flat roof with a perimeter parapet.
type RoofData struct {
	Boundary         []Vec2  `json:"boundary"`
	Thickness        float64 `json:"thickness"`
	Direction        Vec3    `json:"direction"`
	ParapetHeight    float64 `json:"parapet_height"`
	ParapetThickness float64 `json:"parapet_thickness"`
	Material         string  `json:"material"`
}

func (RoofData) entityData() {}

// ---------------------------------------------------------------------------
// Stairs
// ---------------------------------------------------------------------------

// StairData describes a straight-run stair.
type StairData struct {
	Lower       ID      `json:"lower"`           // story the stair starts on
	Upper       ID      `json:"upper,omitempty"` // story it arrives at (zero for a stoop)
	RiserHeight float64 `json:"riser_height"`
	TreadDepth  float64 `json:"tread_depth"`
	StepCount   int     `json:"step_count"`
	TotalRise   float64 `json:"total_rise"`
	Width       float64 `json:"width"`
	Exterior    bool    `json:"exterior"`
	Material    string  `json:"material"`
}

func (StairData) entityData() {}

// Run returns the horizontal length of the flight.
func (d StairData) Run() float64 { return float64(d.StepCount) * d.TreadDepth }

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

// FixtureType enumerates supported fixtures and equipment.
type FixtureType string

const (
	FixtureSink        FixtureType = "sink"
	FixtureToilet      FixtureType = "toilet"
	FixtureWashbasin   FixtureType = "washbasin"
	FixtureBathtub     FixtureType = "bathtub"
	FixturePanel       FixtureType = "panel"
	FixtureAirHandler  FixtureType = "airhandler"
	FixtureWaterHeater FixtureType = "waterheater"
)

// ValidFixtureTypes is the set of accepted fixture types.
var ValidFixtureTypes = map[FixtureType]bool{
	FixtureSink:        true,
	FixtureToilet:      true,
	FixtureWashbasin:   true,
	FixtureBathtub:     true,
	FixturePanel:       true,
	FixtureAirHandler:  true,
	FixtureWaterHeater: true,
}

// Sanitary reports whether the fixture is a sanitary terminal.
func (t FixtureType) Sanitary() bool {
	switch t {
	case FixtureSink, FixtureToilet, FixtureWashbasin, FixtureBathtub:
		return true
	}
	return false
}

// FixtureData describes a small-footprint object placed in a space.
// Host is the element it is mounted to (lookup only).
type FixtureData struct {
	Type     FixtureType `json:"type"`
	Host     ID          `json:"host"`
	Size     Vec3        `json:"size"` // width, depth, height
	Material string      `json:"material"`
}

func (FixtureData) entityData() {}
