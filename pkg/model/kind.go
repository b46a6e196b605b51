package model

// Kind enumerates the entity types in the building model.
type Kind int

const (
	KindProject  Kind = iota // root of the model
	KindSite                 // site owned by the project
	KindBuilding             // building owned by the site
	KindStory                // building storey
	KindSpace                // room-like region within a story
	KindWall                 // straight wall segment
	KindSlab                 // floor slab
	KindRoof                 // roof slab with parapet
	KindStair                // straight-run stair or stoop
	KindOpening              // window or door cut into a wall
	KindFixture              // sanitary or MEP equipment
)

func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindSite:
		return "site"
	case KindBuilding:
		return "building"
	case KindStory:
		return "story"
	case KindSpace:
		return "space"
	case KindWall:
		return "wall"
	case KindSlab:
		return "slab"
	case KindRoof:
		return "roof"
	case KindStair:
		return "stair"
	case KindOpening:
		return "opening"
	case KindFixture:
		return "fixture"
	default:
		return "unknown"
	}
}

// IsSpatial reports whether entities of this kind form the spatial
// structure (and may therefore be parents).
func (k Kind) IsSpatial() bool {
	return k >= KindProject && k <= KindSpace
}

// IsElement reports whether entities of this kind are physical elements.
func (k Kind) IsElement() bool {
	return k >= KindWall && k <= KindFixture
}
