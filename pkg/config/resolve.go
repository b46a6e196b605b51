package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/chazu/bimgen/pkg/model"
	"github.com/chazu/bimgen/pkg/units"
)

// Params is the validated, metre-based parameter set consumed by the
// pipeline. It is produced by Resolve and never modified afterwards.
type Params struct {
	Project    ProjectConfig
	SourceUnit units.Unit
	Timestamp  time.Time

	Width              float64
	Depth              float64
	StoryHeights       []float64
	Basement           bool
	WallThickness      float64
	PartitionThickness float64
	FloorThickness     float64
	RoofThickness      float64
	ParapetHeight      float64
	ParapetThickness   float64
	EdgeClearance      float64

	Stairs StairParams

	Openings   []OpeningParams
	Partitions []PartitionParams
	Fixtures   []FixtureParams
}

// StairParams holds the stair rules in metres.
type StairParams struct {
	RiserCount    int
	MinRiser      float64
	MaxRiser      float64
	RiserTreadSum float64
	MinTread      float64
	RiseTolerance float64
	Width         float64
	Stoop         bool
	StoopRise     float64
	StoopWidth    float64
}

// OpeningParams is a resolved opening request.
type OpeningParams struct {
	Name     string
	Kind     model.OpeningKind
	Level    int
	Wall     string
	Offset   float64
	Width    float64
	Height   float64
	Sill     float64
	Operable bool
	Glazing  string
}

// PartitionParams is a resolved partition request.
type PartitionParams struct {
	Name   string
	Levels []int
	From   model.Vec2
	To     model.Vec2
}

// FixtureParams is a resolved fixture request.
type FixtureParams struct {
	Name      string
	Type      model.FixtureType
	Level     int
	At        model.Vec2
	Size      model.Vec3
	Elevation float64
	Host      string
}

// TimestampLayout is the accepted form of project.timestamp.
const TimestampLayout = "2006-01-02T15:04:05"

// Levels returns the number of stories.
func (p *Params) Levels() int { return len(p.StoryHeights) }

// EntryLevel returns the level of the ground-floor story.
func (p *Params) EntryLevel() int {
	if p.Basement {
		return 1
	}
	return 0
}

// TotalHeight returns the sum of the story heights.
func (p *Params) TotalHeight() float64 {
	var h float64
	for _, s := range p.StoryHeights {
		h += s
	}
	return h
}

// InteriorWidth returns the clear width between the side walls.
func (p *Params) InteriorWidth() float64 { return p.Width - 2*p.WallThickness }

// InteriorDepth returns the clear depth between the front and rear walls.
func (p *Params) InteriorDepth() float64 { return p.Depth - 2*p.WallThickness }

// Resolve validates cfg and converts it into Params. The first problem
// found is returned as a *ConfigurationError.
func Resolve(cfg *Config) (*Params, error) {
	def, err := cfg.DefaultUnit()
	if err != nil {
		return nil, invalid("units", "%v", err)
	}
	r := resolver{def: def}

	stamp := time.Unix(0, 0).UTC()
	if cfg.Project.Timestamp != "" {
		stamp, err = time.Parse(TimestampLayout, cfg.Project.Timestamp)
		if err != nil {
			return nil, invalid("project.timestamp", "expected YYYY-MM-DDThh:mm:ss, got %q", cfg.Project.Timestamp)
		}
	}

	b := cfg.Building
	p := &Params{
		Project:            cfg.Project,
		SourceUnit:         def,
		Timestamp:          stamp,
		Width:              r.positive("building.width", b.Width),
		Depth:              r.positive("building.depth", b.Depth),
		Basement:           b.Basement,
		WallThickness:      r.positive("building.wall_thickness", b.WallThickness),
		PartitionThickness: r.positive("building.partition_thickness", b.PartitionThickness),
		FloorThickness:     r.positive("building.floor_thickness", b.FloorThickness),
		RoofThickness:      r.positive("building.roof_thickness", b.RoofThickness),
		ParapetHeight:      r.positive("building.parapet_height", b.ParapetHeight),
		EdgeClearance:      r.nonNegative("edge_clearance", cfg.EdgeClearance),
	}
	if b.ParapetThickness.IsZero() {
		p.ParapetThickness = p.WallThickness
	} else {
		p.ParapetThickness = r.positive("building.parapet_thickness", b.ParapetThickness)
	}
	if r.err != nil {
		return nil, r.err
	}

	if b.Stories < 1 {
		return nil, invalid("building.stories", "must be at least 1, got %d", b.Stories)
	}
	if b.Stories != len(b.StoryHeights) {
		return nil, invalid("building.story_heights",
			"expected %d heights for %d stories, got %d", b.Stories, b.Stories, len(b.StoryHeights))
	}
	for i, h := range b.StoryHeights {
		p.StoryHeights = append(p.StoryHeights, r.positive(fmt.Sprintf("building.story_heights[%d]", i), h))
	}
	if r.err != nil {
		return nil, r.err
	}

	if p.WallThickness >= p.Width/2 || p.WallThickness >= p.Depth/2 {
		return nil, invalid("building.wall_thickness",
			"%s must be less than half the width and depth", b.WallThickness)
	}
	if p.PartitionThickness >= p.InteriorWidth() || p.PartitionThickness >= p.InteriorDepth() {
		return nil, invalid("building.partition_thickness", "%s does not fit the interior", b.PartitionThickness)
	}

	if err := r.stairs(cfg.Stairs, &p.Stairs); err != nil {
		return nil, err
	}

	layout := cfg.Layout
	if layout == nil {
		layout = DefaultLayout(b, def)
	}
	if err := r.layout(layout, p); err != nil {
		return nil, err
	}
	return p, nil
}

// resolver converts lengths, remembering the first failure so a block of
// conversions can be checked once.
type resolver struct {
	def units.Unit
	err error
}

func (r *resolver) metres(field string, l Length) float64 {
	if l.Unit != "" && !l.Unit.Valid() {
		r.fail(invalid(field, "unknown unit %q", l.Unit))
		return 0
	}
	return l.Metres(r.def)
}

func (r *resolver) positive(field string, l Length) float64 {
	v := r.metres(field, l)
	if v <= 0 {
		r.fail(invalid(field, "must be positive, got %s", l))
	}
	return v
}

func (r *resolver) nonNegative(field string, l Length) float64 {
	v := r.metres(field, l)
	if v < 0 {
		r.fail(invalid(field, "must not be negative, got %s", l))
	}
	return v
}

func (r *resolver) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *resolver) stairs(s StairConfig, out *StairParams) error {
	*out = StairParams{
		RiserCount:    s.RiserCount,
		MinRiser:      r.positive("stairs.min_riser", s.MinRiser),
		MaxRiser:      r.positive("stairs.max_riser", s.MaxRiser),
		RiserTreadSum: r.positive("stairs.riser_tread_sum", s.RiserTreadSum),
		MinTread:      r.positive("stairs.min_tread", s.MinTread),
		RiseTolerance: r.positive("stairs.rise_tolerance", s.RiseTolerance),
		Width:         r.positive("stairs.width", s.Width),
		Stoop:         s.Stoop,
	}
	if s.Stoop {
		out.StoopRise = r.positive("stairs.stoop_rise", s.StoopRise)
		out.StoopWidth = r.positive("stairs.stoop_width", s.StoopWidth)
	}
	if r.err != nil {
		return r.err
	}
	if s.RiserCount < 0 {
		return invalid("stairs.riser_count", "must not be negative, got %d", s.RiserCount)
	}
	if out.MinRiser > out.MaxRiser {
		return invalid("stairs.max_riser", "%s is below min_riser %s", s.MaxRiser, s.MinRiser)
	}
	if out.RiserTreadSum-out.MaxRiser < out.MinTread {
		return invalid("stairs.riser_tread_sum",
			"%s leaves less than min_tread %s at the maximum riser", s.RiserTreadSum, s.MinTread)
	}
	return nil
}

func (r *resolver) layout(l *Layout, p *Params) error {
	levels := p.Levels()
	checkLevel := func(field string, level int) error {
		if level < 0 || level >= levels {
			return invalid(field, "level %d out of range [0, %d)", level, levels)
		}
		return nil
	}

	for i, o := range l.Openings {
		field := fmt.Sprintf("layout.openings[%d]", i)
		kind := model.OpeningKind(strings.ToLower(o.Kind))
		if kind != model.OpeningWindow && kind != model.OpeningDoor {
			return invalid(field+".kind", "unknown opening kind %q", o.Kind)
		}
		if err := checkLevel(field+".level", o.Level); err != nil {
			return err
		}
		if o.Wall == "" {
			return invalid(field+".wall", "host wall is required")
		}
		op := OpeningParams{
			Name:     o.Name,
			Kind:     kind,
			Level:    o.Level,
			Wall:     o.Wall,
			Offset:   r.metres(field+".offset", o.Offset),
			Width:    r.positive(field+".width", o.Width),
			Height:   r.positive(field+".height", o.Height),
			Sill:     r.metres(field+".sill", o.Sill),
			Operable: true,
			Glazing:  o.Glazing,
		}
		if r.err != nil {
			return r.err
		}
		if o.Operable != nil {
			op.Operable = *o.Operable
		}
		if op.Name == "" {
			op.Name = fmt.Sprintf("%s %d", title(string(kind)), i+1)
		}
		if kind == model.OpeningWindow && op.Glazing == "" {
			op.Glazing = "Double Glazed"
		}
		p.Openings = append(p.Openings, op)
	}

	for i, pt := range l.Partitions {
		field := fmt.Sprintf("layout.partitions[%d]", i)
		if pt.Name == "" {
			return invalid(field+".name", "partition name is required")
		}
		if len(pt.Levels) == 0 {
			return invalid(field+".levels", "at least one level is required")
		}
		for j, level := range pt.Levels {
			if err := checkLevel(fmt.Sprintf("%s.levels[%d]", field, j), level); err != nil {
				return err
			}
		}
		pp := PartitionParams{
			Name:   pt.Name,
			Levels: append([]int(nil), pt.Levels...),
			From:   model.Vec2{X: r.metres(field+".from", pt.From[0]), Y: r.metres(field+".from", pt.From[1])},
			To:     model.Vec2{X: r.metres(field+".to", pt.To[0]), Y: r.metres(field+".to", pt.To[1])},
		}
		if r.err != nil {
			return r.err
		}
		if pp.To.Sub(pp.From).Len() <= 0 {
			return invalid(field+".to", "partition has zero length")
		}
		p.Partitions = append(p.Partitions, pp)
	}

	for i, f := range l.Fixtures {
		field := fmt.Sprintf("layout.fixtures[%d]", i)
		typ := model.FixtureType(strings.ToLower(f.Kind))
		if !model.ValidFixtureTypes[typ] {
			return invalid(field+".kind", "unknown fixture type %q", f.Kind)
		}
		if err := checkLevel(field+".level", f.Level); err != nil {
			return err
		}
		fp := FixtureParams{
			Name:  f.Name,
			Type:  typ,
			Level: f.Level,
			At:    model.Vec2{X: r.metres(field+".at", f.At[0]), Y: r.metres(field+".at", f.At[1])},
			Size: model.Vec3{
				X: r.positive(field+".size", f.Size[0]),
				Y: r.positive(field+".size", f.Size[1]),
				Z: r.positive(field+".size", f.Size[2]),
			},
			Elevation: r.metres(field+".elevation", f.Elevation),
			Host:      f.Host,
		}
		if r.err != nil {
			return r.err
		}
		if fp.Host == "" {
			fp.Host = HostFloor
		}
		if fp.Name == "" {
			fp.Name = fmt.Sprintf("%s %d", title(string(typ)), i+1)
		}
		p.Fixtures = append(p.Fixtures, fp)
	}
	return nil
}
