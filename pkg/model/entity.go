// Package model defines the building model: an arena of entities
// (spatial structure and physical elements) addressed by integer IDs.
// Entities are appended during synthesis and frozen into an immutable
// Model; the only later change allowed is classification.
package model

import "fmt"

// ID indexes an entity in the model's arena. IDs start at 1 and follow
// creation order.
type ID int

// ZeroID is the null reference.
const ZeroID ID = 0

// IsZero reports whether id is the null reference.
func (id ID) IsZero() bool { return id == ZeroID }

func (id ID) String() string { return fmt.Sprintf("#%d", int(id)) }

// Placement locates an entity in model space: an origin and the
// direction of the local X axis in plan. The local Z axis is always up.
type Placement struct {
	Origin       Vec3 `json:"origin"`
	RefDirection Vec2 `json:"ref_direction"`
}

// Identity is the placement at the origin aligned with the world axes.
var Identity = Placement{RefDirection: Vec2{X: 1}}

// At returns an axis-aligned placement at origin.
func At(origin Vec3) Placement {
	return Placement{Origin: origin, RefDirection: Vec2{X: 1}}
}

// ToWorld maps a point in the placement's local frame into model space.
func (p Placement) ToWorld(local Vec3) Vec3 {
	x := p.RefDirection
	y := Vec2{X: -x.Y, Y: x.X}
	return Vec3{
		X: p.Origin.X + local.X*x.X + local.Y*y.X,
		Y: p.Origin.Y + local.X*x.Y + local.Y*y.Y,
		Z: p.Origin.Z + local.Z,
	}
}

// Extrusion is a swept solid: a closed plan profile, positioned in the
// owner's local frame, extruded Depth along Direction.
type Extrusion struct {
	Profile   []Vec2  `json:"profile"`
	Position  Vec3    `json:"position"`
	Direction Vec3    `json:"direction"`
	Depth     float64 `json:"depth"`
}

// Entity is a node of the building model.
type Entity struct {
	ID          ID             `json:"id"`
	Kind        Kind           `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parent      ID             `json:"parent"` // spatial container; zero for the project
	Placement   Placement      `json:"placement"`
	Body        []Extrusion    `json:"body,omitempty"`
	Bounds      Box3           `json:"bounds"`
	Data        EntityData     `json:"data"`
	Class       string         `json:"class,omitempty"` // semantic type tag
	Properties  PropertyRecord `json:"properties"`
}

// Classified reports whether the entity has been annotated.
func (e *Entity) Classified() bool { return e.Class != "" }

// Hosts returns the IDs this entity references without owning.
func (e *Entity) Hosts() []ID {
	switch d := e.Data.(type) {
	case OpeningData:
		return []ID{d.Host}
	case FixtureData:
		return []ID{d.Host}
	}
	return nil
}

// Label returns the entity's name, or its kind and ID when unnamed.
func (e *Entity) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("%s %s", e.Kind, e.ID)
}
