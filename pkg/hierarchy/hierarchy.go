// Package hierarchy builds the spatial structure of the building: the
// project, site, building, its stories, and a default space per story.
package hierarchy

import (
	"fmt"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/model"
)

// Spine holds the IDs of the spatial entities, indexed by level where
// applicable. Synthesis attaches elements to it.
type Spine struct {
	Project  model.ID
	Site     model.ID
	Building model.ID
	Stories  []model.ID
	Spaces   []model.ID
}

// Story returns the story ID at level, or ZeroID when out of range.
func (s *Spine) Story(level int) model.ID {
	if level < 0 || level >= len(s.Stories) {
		return model.ZeroID
	}
	return s.Stories[level]
}

// Space returns the default space ID at level, or ZeroID when out of range.
func (s *Spine) Space(level int) model.ID {
	if level < 0 || level >= len(s.Spaces) {
		return model.ZeroID
	}
	return s.Spaces[level]
}

var ordinals = []string{
	"First", "Second", "Third", "Fourth", "Fifth",
	"Sixth", "Seventh", "Eighth", "Ninth", "Tenth",
}

// StoryName returns the display name of the story at level.
func StoryName(level int, basement bool) string {
	if basement {
		if level == 0 {
			return "Basement"
		}
		level--
	}
	if level < len(ordinals) {
		return ordinals[level] + " Floor"
	}
	return fmt.Sprintf("Floor %d", level+1)
}

// Elevations returns the base elevation of every story. The lowest story
// sits below grade by its own height when the building has a basement.
func Elevations(heights []float64, basement bool) []float64 {
	out := make([]float64, len(heights))
	var z float64
	if basement && len(heights) > 0 {
		z = -heights[0]
	}
	for i, h := range heights {
		out[i] = z
		z += h
	}
	return out
}

// Build appends the spatial structure for p to b.
func Build(b *model.Builder, p *config.Params) (*Spine, error) {
	if p.Levels() == 0 {
		return nil, &config.ConfigurationError{Field: "building.stories", Message: "no stories to build"}
	}

	spine := &Spine{}
	elevations := Elevations(p.StoryHeights, p.Basement)
	bottom := elevations[0]
	top := elevations[len(elevations)-1] + p.StoryHeights[len(p.StoryHeights)-1]

	spine.Project = b.Add(&model.Entity{
		Kind:        model.KindProject,
		Name:        p.Project.Name,
		Description: p.Project.Description,
		Placement:   model.Identity,
		Data: model.ProjectData{
			LengthUnit: "METRE",
			SourceUnit: string(p.SourceUnit),
		},
	})

	spine.Site = b.Add(&model.Entity{
		Kind:      model.KindSite,
		Name:      "Site",
		Parent:    spine.Project,
		Placement: model.Identity,
		Data:      model.SiteData{},
	})

	spine.Building = b.Add(&model.Entity{
		Kind:        model.KindBuilding,
		Name:        "Building",
		Description: p.Project.Description,
		Parent:      spine.Site,
		Placement:   model.Identity,
		Bounds: model.Box3{
			Min: model.Vec3{Z: bottom},
			Max: model.Vec3{X: p.Width, Y: p.Depth, Z: top},
		},
		Data: model.BuildingData{Width: p.Width, Depth: p.Depth, Height: p.TotalHeight()},
	})

	interior := model.Rect(model.Vec2{X: p.WallThickness, Y: p.WallThickness}, p.InteriorWidth(), p.InteriorDepth())
	for level, h := range p.StoryHeights {
		elev := elevations[level]
		name := StoryName(level, p.Basement)

		story := b.Add(&model.Entity{
			Kind:      model.KindStory,
			Name:      name,
			Parent:    spine.Building,
			Placement: model.At(model.Vec3{Z: elev}),
			Bounds: model.Box3{
				Min: model.Vec3{Z: elev},
				Max: model.Vec3{X: p.Width, Y: p.Depth, Z: elev + h},
			},
			Data: model.StoryData{
				Level:     level,
				Index:     level - p.EntryLevel(),
				Elevation: elev,
				Height:    h,
			},
		})
		spine.Stories = append(spine.Stories, story)

		category := model.SpacePrivate
		switch {
		case p.Basement && level == 0:
			category = model.SpaceMechanical
		case level == p.EntryLevel():
			category = model.SpacePublic
		}
		space := b.Add(&model.Entity{
			Kind:      model.KindSpace,
			Name:      name + " Interior",
			Parent:    story,
			Placement: model.At(model.Vec3{Z: elev}),
			Body: []model.Extrusion{{
				Profile:   interior,
				Direction: model.UnitZ,
				Depth:     h,
			}},
			Bounds: model.Box3{
				Min: model.Vec3{X: p.WallThickness, Y: p.WallThickness, Z: elev},
				Max: model.Vec3{X: p.Width - p.WallThickness, Y: p.Depth - p.WallThickness, Z: elev + h},
			},
			Data: model.SpaceData{
				Boundary: interior,
				Height:   h,
				Category: category,
			},
		})
		spine.Spaces = append(spine.Spaces, space)
	}

	return spine, nil
}
