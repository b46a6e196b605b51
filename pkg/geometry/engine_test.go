package geometry

import (
	"math"
	"testing"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/hierarchy"
	"github.com/chazu/bimgen/pkg/kernel/sdfx"
	"github.com/chazu/bimgen/pkg/model"
	"github.com/chazu/bimgen/pkg/units"
)

func resolve(t *testing.T, mutate func(c *config.Config)) *config.Params {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	p, err := config.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return p
}

func synthesize(t *testing.T, p *config.Params) (*model.Model, *Engine, *Report) {
	t.Helper()
	b := model.NewBuilder()
	spine, err := hierarchy.Build(b, p)
	if err != nil {
		t.Fatalf("hierarchy.Build: %v", err)
	}
	e := New(sdfx.New(), b, spine, p)
	r := e.Run()
	return b.Build(), e, r
}

// smallBuilding is a single-story metric box with no default layout.
func smallBuilding(layout *config.Layout) func(c *config.Config) {
	return func(c *config.Config) {
		c.Units = "m"
		c.Building.Width = config.L(6)
		c.Building.Depth = config.L(10)
		c.Building.Stories = 1
		c.Building.StoryHeights = []config.Length{config.L(3)}
		c.Building.Basement = false
		c.Building.WallThickness = config.L(0.3)
		c.Building.FloorThickness = config.L(0.25)
		c.Building.RoofThickness = config.L(0.3)
		c.Building.ParapetHeight = config.L(0.9)
		c.Stairs.Stoop = false
		c.EdgeClearance = config.L(0.1)
		if layout == nil {
			layout = &config.Layout{}
		}
		c.Layout = layout
	}
}

func TestRun_DefaultBrownstone(t *testing.T) {
	p := resolve(t, nil)
	m, _, r := synthesize(t, p)

	if !r.Success() {
		for _, d := range r.Diagnostics {
			t.Errorf("unexpected diagnostic: %v", d)
		}
		t.FailNow()
	}

	want := map[model.Kind]int{
		model.KindWall:    5*4 + 2*4,
		model.KindSlab:    5,
		model.KindRoof:    1,
		model.KindStair:   4 + 1,
		model.KindOpening: 27 + 5,
		model.KindFixture: 10,
	}
	for kind, n := range want {
		if got := r.Elements[kind]; got != n {
			t.Errorf("%s count = %d, want %d", kind, got, n)
		}
		if got := len(m.ByKind(kind)); got != n {
			t.Errorf("model %s count = %d, want %d", kind, got, n)
		}
	}
	if r.Total() != 81 {
		t.Errorf("Total = %d, want 81", r.Total())
	}
	for i, s := range m.ByKind(model.KindSlab) {
		want := MaterialWoodFloor
		if i == 0 {
			want = MaterialConcrete
		}
		if got := s.Data.(model.SlabData).Material; got != want {
			t.Errorf("%s material = %q, want %q", s.Name, got, want)
		}
	}
}

func TestRun_ElementsHaveSpatialParents(t *testing.T) {
	p := resolve(t, nil)
	m, _, _ := synthesize(t, p)

	for _, e := range m.Elements() {
		parent := m.Get(e.Parent)
		if parent == nil {
			t.Fatalf("%s has no parent", e.Label())
		}
		switch e.Kind {
		case model.KindFixture:
			if parent.Kind != model.KindSpace {
				t.Errorf("fixture %s contained in %s, want space", e.Name, parent.Kind)
			}
		default:
			if parent.Kind != model.KindStory {
				t.Errorf("%s contained in %s, want story", e.Label(), parent.Kind)
			}
		}
		for _, h := range e.Hosts() {
			if !m.Has(h) {
				t.Errorf("%s references missing host %s", e.Label(), h)
			}
		}
	}
}

func TestRun_ExteriorWallLoop(t *testing.T) {
	p := resolve(t, smallBuilding(nil))
	m, _, r := synthesize(t, p)
	if !r.Success() {
		t.Fatalf("diagnostics: %v", r.Diagnostics)
	}

	walls := m.ByKind(model.KindWall)
	if len(walls) != 4 {
		t.Fatalf("walls = %d, want 4", len(walls))
	}
	front := walls[0]
	if front.Name != "Front Wall" {
		t.Fatalf("first wall = %q", front.Name)
	}
	fd := front.Data.(model.WallData)
	if math.Abs(fd.Length()-6) > 1e-9 {
		t.Errorf("front length = %v, want full width 6", fd.Length())
	}
	if len(fd.Layers) != 3 || fd.Layers[0].Material != MaterialBrownstone || fd.Layers[1].Material != MaterialBrick {
		t.Errorf("front layers = %+v", fd.Layers)
	}
	var sum float64
	for _, l := range fd.Layers {
		sum += l.Thickness
	}
	if math.Abs(sum-0.3) > 1e-12 {
		t.Errorf("layer thickness sum = %v, want 0.3", sum)
	}

	side := walls[1].Data.(model.WallData)
	if math.Abs(side.Length()-9.4) > 1e-9 {
		t.Errorf("side length = %v, want 9.4", side.Length())
	}

	// The walls tile the footprint ring.
	lo := model.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := model.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, w := range walls {
		lo = model.Vec3{X: math.Min(lo.X, w.Bounds.Min.X), Y: math.Min(lo.Y, w.Bounds.Min.Y), Z: math.Min(lo.Z, w.Bounds.Min.Z)}
		hi = model.Vec3{X: math.Max(hi.X, w.Bounds.Max.X), Y: math.Max(hi.Y, w.Bounds.Max.Y), Z: math.Max(hi.Z, w.Bounds.Max.Z)}
	}
	want := model.Box3{Max: model.Vec3{X: 6, Y: 10, Z: 3}}
	if lo.Sub(want.Min).Len() > 1e-6 || hi.Sub(want.Max).Len() > 1e-6 {
		t.Errorf("wall bounds = %+v..%+v, want %+v", lo, hi, want)
	}
}

func TestRun_BasementWallsAreConcrete(t *testing.T) {
	p := resolve(t, nil)
	m, _, _ := synthesize(t, p)
	for _, w := range m.ByKind(model.KindWall) {
		wd := w.Data.(model.WallData)
		if wd.Facade != model.FacadeFront {
			continue
		}
		sd := m.Story(w).Data.(model.StoryData)
		want := MaterialBrick
		if sd.Index < 0 {
			want = MaterialConcrete
		}
		if got := wd.Layers[1].Material; got != want {
			t.Errorf("%s front structure = %q, want %q", m.Story(w).Name, got, want)
		}
	}
}

func TestRun_SlabsAndRoof(t *testing.T) {
	p := resolve(t, smallBuilding(nil))
	m, _, _ := synthesize(t, p)

	slabs := m.ByKind(model.KindSlab)
	if len(slabs) != 1 {
		t.Fatalf("slabs = %d, want 1", len(slabs))
	}
	if got := slabs[0].Data.(model.SlabData).Material; got != MaterialConcrete {
		t.Errorf("ground slab material = %q, want %q", got, MaterialConcrete)
	}
	sb := slabs[0].Bounds
	if math.Abs(sb.Max.Z) > 1e-9 || math.Abs(sb.Min.Z+0.25) > 1e-9 {
		t.Errorf("slab z range = [%v, %v], want [-0.25, 0]", sb.Min.Z, sb.Max.Z)
	}

	roofs := m.ByKind(model.KindRoof)
	if len(roofs) != 1 {
		t.Fatalf("roofs = %d, want 1", len(roofs))
	}
	roof := roofs[0]
	if len(roof.Body) != 5 {
		t.Errorf("roof body has %d extrusions, want slab + 4 parapet segments", len(roof.Body))
	}
	rb := roof.Bounds
	if math.Abs(rb.Min.Z-3) > 1e-9 || math.Abs(rb.Max.Z-(3+0.3+0.9)) > 1e-9 {
		t.Errorf("roof z range = [%v, %v], want [3, 4.2]", rb.Min.Z, rb.Max.Z)
	}
}

func TestRun_FixtureChecks(t *testing.T) {
	p := resolve(t, smallBuilding(&config.Layout{
		Fixtures: []config.FixtureSpec{
			{Name: "ok", Kind: "sink", At: [2]config.Length{config.L(1), config.L(1)},
				Size: [3]config.Length{config.L(1), config.L(0.6), config.L(0.3)}, Elevation: config.L(0.8)},
			{Name: "outside", Kind: "toilet", At: [2]config.Length{config.L(5.5), config.L(1)},
				Size: [3]config.Length{config.L(1), config.L(1), config.L(1)}},
			{Name: "tall", Kind: "waterheater", At: [2]config.Length{config.L(2), config.L(2)},
				Size: [3]config.Length{config.L(1), config.L(1), config.L(2.5)}, Elevation: config.L(1)},
			{Name: "wall-hung", Kind: "washbasin", At: [2]config.Length{config.L(3), config.L(0.3)},
				Size: [3]config.Length{config.L(0.6), config.L(0.4), config.L(0.2)}, Elevation: config.L(0.8), Host: "front"},
			{Name: "ghost", Kind: "panel", At: [2]config.Length{config.L(3), config.L(3)},
				Size: [3]config.Length{config.L(0.5), config.L(0.2), config.L(0.8)}, Host: "Kitchen Wall"},
		},
	}))
	m, _, r := synthesize(t, p)

	codes := map[string]string{}
	for _, d := range r.Diagnostics {
		codes[d.Element] = d.Code
	}
	want := map[string]string{
		"outside": CodeOutsideInterior,
		"tall":    CodeFixtureTooTall,
		"ghost":   CodeUnknownHost,
	}
	for name, code := range want {
		if codes[name] != code {
			t.Errorf("%s: code = %q, want %q", name, codes[name], code)
		}
	}

	fixtures := m.ByKind(model.KindFixture)
	if len(fixtures) != 2 {
		t.Fatalf("fixtures = %d, want 2", len(fixtures))
	}
	sink := fixtures[0].Data.(model.FixtureData)
	if m.Get(sink.Host).Kind != model.KindSlab {
		t.Errorf("sink host = %s, want slab", m.Get(sink.Host).Kind)
	}
	basin := fixtures[1].Data.(model.FixtureData)
	if host := m.Get(basin.Host); host.Kind != model.KindWall || host.Name != "Front Wall" {
		t.Errorf("basin host = %s %q, want Front Wall", host.Kind, host.Name)
	}
	if z := fixtures[0].Bounds.Min.Z; math.Abs(z-0.8) > 1e-9 {
		t.Errorf("sink base = %v, want 0.8", z)
	}
}

func TestRun_PartitionOutsideInterior(t *testing.T) {
	p := resolve(t, smallBuilding(&config.Layout{
		Partitions: []config.PartitionSpec{
			{Name: "Hall", Levels: []int{0}, From: [2]config.Length{config.L(0.3), config.L(5)}, To: [2]config.Length{config.L(5.7), config.L(5)}},
			{Name: "Stray", Levels: []int{0}, From: [2]config.Length{config.L(3), config.L(5)}, To: [2]config.Length{config.L(3), config.L(12)}},
		},
		Openings: []config.OpeningSpec{
			{Name: "Stray Door", Kind: "door", Wall: "Stray", Offset: config.L(1), Width: config.L(0.9), Height: config.L(2.1)},
		},
	}))
	m, _, r := synthesize(t, p)

	if len(r.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v, want 2", r.Diagnostics)
	}
	if r.Diagnostics[0].Code != CodeOutsideInterior || r.Diagnostics[0].Element != "Stray" {
		t.Errorf("first diagnostic = %v", r.Diagnostics[0])
	}
	if r.Diagnostics[1].Code != CodeHostFailed || r.Diagnostics[1].Kind != model.KindOpening {
		t.Errorf("second diagnostic = %v", r.Diagnostics[1])
	}
	if n := len(m.ByKind(model.KindWall)); n != 5 {
		t.Errorf("walls = %d, want 4 exterior + 1 partition", n)
	}
}

func TestRun_StairRunTooLong(t *testing.T) {
	p := resolve(t, func(c *config.Config) {
		c.Building.Depth = config.L(12)
		c.Building.Stories = 2
		c.Building.StoryHeights = []config.Length{config.L(14), config.L(10)}
		c.Building.Basement = false
		c.Stairs.Stoop = false
		c.Layout = &config.Layout{}
	})
	_, _, r := synthesize(t, p)
	if len(r.Diagnostics) != 1 || r.Diagnostics[0].Code != CodeRunTooLong {
		t.Fatalf("diagnostics = %v, want one %s", r.Diagnostics, CodeRunTooLong)
	}
	if r.Elements[model.KindStair] != 0 {
		t.Errorf("stairs = %d, want 0", r.Elements[model.KindStair])
	}
}

func TestRun_Stoop(t *testing.T) {
	p := resolve(t, func(c *config.Config) { c.Layout = &config.Layout{} })
	m, _, r := synthesize(t, p)
	if !r.Success() {
		t.Fatalf("diagnostics: %v", r.Diagnostics)
	}

	var stoop *model.Entity
	for _, s := range m.ByKind(model.KindStair) {
		if s.Data.(model.StairData).Exterior {
			stoop = s
		}
	}
	if stoop == nil {
		t.Fatal("no stoop synthesized")
	}
	sd := stoop.Data.(model.StairData)
	if math.Abs(sd.TotalRise-units.Feet(5)) > 1e-9 {
		t.Errorf("stoop rise = %v, want 5ft", sd.TotalRise)
	}
	// The stoop stands on grade and its top step meets the front facade.
	if math.Abs(stoop.Bounds.Min.Z) > 1e-6 {
		t.Errorf("stoop base = %v, want grade", stoop.Bounds.Min.Z)
	}
	if math.Abs(stoop.Bounds.Max.Z-units.Feet(5)) > 1e-6 || math.Abs(stoop.Bounds.Max.Y) > 1e-6 {
		t.Errorf("stoop top corner = %+v, want z=5ft y=0", stoop.Bounds.Max)
	}
	if m.Story(stoop).Name != "First Floor" {
		t.Errorf("stoop story = %q", m.Story(stoop).Name)
	}
}
