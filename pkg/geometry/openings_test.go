package geometry

import (
	"testing"

	"github.com/chazu/bimgen/pkg/config"
	"github.com/chazu/bimgen/pkg/kernel"
	"github.com/chazu/bimgen/pkg/kernel/sdfx"
	"github.com/chazu/bimgen/pkg/model"
)

func window(name, wall string, offset, width, height, sill float64) config.OpeningSpec {
	return config.OpeningSpec{
		Name:   name,
		Kind:   "window",
		Wall:   wall,
		Offset: config.L(offset),
		Width:  config.L(width),
		Height: config.L(height),
		Sill:   config.L(sill),
	}
}

func TestOpenings_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		opening config.OpeningSpec
		code    string
	}{
		{"negative sill", window("w", "front", 1, 1, 1, -0.2), CodeNegativeSill},
		{"inside start clearance", window("w", "front", 0.05, 1, 1, 1), CodeExceedsLength},
		{"past the end", window("w", "front", 5, 1, 1, 1), CodeExceedsLength},
		{"too tall", window("w", "front", 1, 1, 2, 1), CodeExceedsHeight},
		{"unknown wall", window("w", "Bay Wall", 1, 1, 1, 1), CodeUnknownHost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := resolve(t, smallBuilding(&config.Layout{Openings: []config.OpeningSpec{tt.opening}}))
			m, _, r := synthesize(t, p)
			if len(r.Diagnostics) != 1 {
				t.Fatalf("diagnostics = %v, want 1", r.Diagnostics)
			}
			d := r.Diagnostics[0]
			if d.Code != tt.code || d.Kind != model.KindOpening {
				t.Errorf("diagnostic = %v, want code %s", d, tt.code)
			}
			if n := len(m.ByKind(model.KindOpening)); n != 0 {
				t.Errorf("rejected opening was added (%d openings)", n)
			}
		})
	}
}

func TestOpenings_Overlap(t *testing.T) {
	p := resolve(t, smallBuilding(&config.Layout{Openings: []config.OpeningSpec{
		window("A", "front", 1, 1.2, 1.5, 0.9),
		window("B", "front", 2, 1.2, 1.5, 0.9), // overlaps A
		window("C", "front", 2.2, 1.2, 1.5, 0.9),
		window("D", "rear", 1, 1.2, 1.5, 0.9), // same offsets, other host
	}}))
	m, _, r := synthesize(t, p)

	if len(r.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want 1", r.Diagnostics)
	}
	if d := r.Diagnostics[0]; d.Element != "B" || d.Code != CodeOpeningOverlap {
		t.Errorf("diagnostic = %v, want overlap on B", d)
	}
	if n := len(m.ByKind(model.KindOpening)); n != 3 {
		t.Errorf("openings = %d, want 3", n)
	}
}

func TestOpenings_CutHostAndStayInside(t *testing.T) {
	p := resolve(t, smallBuilding(&config.Layout{Openings: []config.OpeningSpec{
		window("Front", "front", 1, 1.2, 1.5, 0.9),
		window("Side", "right", 4, 1, 1.2, 1),
		{Name: "Door", Kind: "door", Wall: "rear", Offset: config.L(2), Width: config.L(1), Height: config.L(2.1)},
	}}))
	m, e, r := synthesize(t, p)
	if !r.Success() {
		t.Fatalf("diagnostics: %v", r.Diagnostics)
	}

	for _, o := range m.ByKind(model.KindOpening) {
		od := o.Data.(model.OpeningData)
		host := m.Get(od.Host)
		if host == nil || host.Kind != model.KindWall {
			t.Fatalf("%s host = %v", o.Name, host)
		}
		wd := host.Data.(model.WallData)

		// Within the host shrunk by the edge clearance.
		c := p.EdgeClearance
		if od.Offset < c || od.Offset+od.Width > wd.Length()-c+eps || od.Sill < 0 || od.Sill+od.Height > wd.Height-c+eps {
			t.Errorf("%s escapes host %s", o.Name, host.Name)
		}
		hb := host.Bounds
		if !hb.ContainsBox(o.Bounds, 1e-6) {
			t.Errorf("%s bounds %+v outside host bounds %+v", o.Name, o.Bounds, hb)
		}

		centre := host.Placement.ToWorld(model.Vec3{X: od.Offset + od.Width/2, Z: od.Sill + od.Height/2})
		if e.Solid(host.ID).Contains(centre.X, centre.Y, centre.Z) {
			t.Errorf("%s: host still solid at opening centre", o.Name)
		}
		if o.Parent != host.Parent {
			t.Errorf("%s contained in %s, want the host's story", o.Name, o.Parent)
		}
	}

	door := m.ByKind(model.KindOpening)[2]
	if door.Data.(model.OpeningData).Kind != model.OpeningDoor {
		t.Errorf("third opening kind = %s", door.Data.(model.OpeningData).Kind)
	}
}

func TestOpenings_FacadeNamesIgnoreCase(t *testing.T) {
	p := resolve(t, smallBuilding(&config.Layout{
		Openings: []config.OpeningSpec{
			window("A", "Front", 1, 1.2, 1.5, 0.9),
			window("B", " REAR ", 1, 1.2, 1.5, 0.9),
		},
		Fixtures: []config.FixtureSpec{{Name: "Tub", Kind: "bathtub", Host: "Floor",
			At:   [2]config.Length{config.L(1), config.L(1)},
			Size: [3]config.Length{config.L(0.8), config.L(1.7), config.L(0.6)}}},
	}))
	m, _, r := synthesize(t, p)
	if !r.Success() {
		t.Fatalf("diagnostics: %v", r.Diagnostics)
	}
	hosts := map[string]string{}
	for _, o := range m.ByKind(model.KindOpening) {
		hosts[o.Name] = m.Get(o.Data.(model.OpeningData).Host).Name
	}
	if hosts["A"] != "Front Wall" || hosts["B"] != "Rear Wall" {
		t.Errorf("hosts = %v", hosts)
	}
	if n := len(m.ByKind(model.KindFixture)); n != 1 {
		t.Errorf("fixtures = %d, want 1", n)
	}
}

func TestCollides(t *testing.T) {
	e := &Engine{k: sdfx.New()}
	box := func(offset, width, sill, height float64) kernel.Solid {
		s, err := e.box(model.Vec3{X: offset, Y: -0.15, Z: sill}, model.Vec3{X: width, Y: 0.3, Z: height})
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	wedge, err := e.k.Extrude([][2]float64{{0, 0}, {1, 0}, {0, 1}}, 1)
	if err != nil {
		t.Fatal(err)
	}

	a := box(1, 1, 0, 2)
	tests := []struct {
		name string
		a, b kernel.Solid
		want bool
	}{
		{"same", a, box(1, 1, 0, 2), true},
		{"side by side", a, box(2, 1, 0, 2), false},
		{"stacked", a, box(1, 1, 2, 1), false},
		{"corner", a, box(1.5, 1, 1.5, 1), true},
		{"boxes meet, solids do not", wedge, e.k.Translate(box(0, 0.4, 0, 1), 0.6, 0.75, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.collides(tt.a, tt.b); got != tt.want {
				t.Errorf("collides = %v, want %v", got, tt.want)
			}
		})
	}
}
