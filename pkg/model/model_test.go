package model

import (
	"math"
	"testing"
)

func buildSmall() (*Model, ID, ID, ID) {
	b := NewBuilder()
	project := b.Add(&Entity{Kind: KindProject, Name: "p", Data: ProjectData{LengthUnit: "METRE"}})
	story := b.Add(&Entity{Kind: KindStory, Name: "s", Parent: project, Data: StoryData{Height: 3}})
	wall := b.Add(&Entity{Kind: KindWall, Name: "w", Parent: story, Data: WallData{
		Start: Vec2{0, 0}, End: Vec2{4, 0}, Thickness: 0.3, Height: 3,
	}})
	return b.Build(), project, story, wall
}

func TestBuilder_AssignsSequentialIDs(t *testing.T) {
	m, project, story, wall := buildSmall()
	if project != 1 || story != 2 || wall != 3 {
		t.Fatalf("ids = %d %d %d, want 1 2 3", project, story, wall)
	}
	if m.Len() != 3 {
		t.Fatalf("Len = %d, want 3", m.Len())
	}
	if m.Get(0) != nil || m.Get(4) != nil {
		t.Fatal("out-of-range Get should return nil")
	}
}

func TestModel_ChildrenInCreationOrder(t *testing.T) {
	b := NewBuilder()
	root := b.Add(&Entity{Kind: KindProject})
	a := b.Add(&Entity{Kind: KindSite, Name: "a", Parent: root})
	c := b.Add(&Entity{Kind: KindSite, Name: "c", Parent: root})
	m := b.Build()

	kids := m.Children(root)
	if len(kids) != 2 || kids[0].ID != a || kids[1].ID != c {
		t.Fatalf("children = %v, want [%d %d]", kids, a, c)
	}
	if m.Root().ID != root {
		t.Fatalf("root = %d, want %d", m.Root().ID, root)
	}
}

func TestModel_AnnotateIsIdempotent(t *testing.T) {
	m, _, _, wall := buildSmall()
	first := PropertyRecord{SetName: "Pset_WallCommon", Items: []Property{{Name: "LoadBearing", Value: Bool(true)}}}
	if !m.Annotate(wall, "wall", first) {
		t.Fatal("first Annotate should apply")
	}
	second := PropertyRecord{SetName: "other"}
	if m.Annotate(wall, "slab", second) {
		t.Fatal("second Annotate should be a no-op")
	}
	e := m.Get(wall)
	if e.Class != "wall" || e.Properties.SetName != "Pset_WallCommon" {
		t.Fatalf("annotation overwritten: %q %q", e.Class, e.Properties.SetName)
	}
}

func TestModel_StoryWalksParents(t *testing.T) {
	m, _, story, wall := buildSmall()
	if got := m.Story(m.Get(wall)); got == nil || got.ID != story {
		t.Fatalf("Story(wall) = %v, want %d", got, story)
	}
}

func TestBuilder_FindByParentAndName(t *testing.T) {
	b := NewBuilder()
	s1 := b.Add(&Entity{Kind: KindStory})
	s2 := b.Add(&Entity{Kind: KindStory})
	w1 := b.Add(&Entity{Kind: KindWall, Name: "Front Wall", Parent: s1})
	w2 := b.Add(&Entity{Kind: KindWall, Name: "Front Wall", Parent: s2})

	if got := b.Find(s1, "Front Wall"); got == nil || got.ID != w1 {
		t.Fatalf("Find(s1) = %v, want %d", got, w1)
	}
	if got := b.Find(s2, "Front Wall"); got == nil || got.ID != w2 {
		t.Fatalf("Find(s2) = %v, want %d", got, w2)
	}
	if b.Find(s1, "Rear Wall") != nil {
		t.Fatal("Find should return nil for unknown names")
	}
}

func TestPlacement_ToWorldRotates(t *testing.T) {
	p := Placement{Origin: Vec3{1, 1, 2}, RefDirection: Vec2{0, 1}}
	got := p.ToWorld(Vec3{2, 0, 1})
	want := Vec3{1, 3, 3}
	if got.Sub(want).Len() > 1e-12 {
		t.Fatalf("ToWorld = %+v, want %+v", got, want)
	}
	got = p.ToWorld(Vec3{0, 1, 0})
	want = Vec3{0, 1, 2}
	if got.Sub(want).Len() > 1e-12 {
		t.Fatalf("ToWorld = %+v, want %+v", got, want)
	}
}

func TestPolygonArea(t *testing.T) {
	if a := PolygonArea(Rect(Vec2{}, 4, 2)); math.Abs(a-8) > 1e-12 {
		t.Fatalf("area = %v, want 8", a)
	}
}

func TestBox3_ContainsBox(t *testing.T) {
	outer := Box3{Min: Vec3{0, 0, 0}, Max: Vec3{10, 1, 3}}
	inner := Box3{Min: Vec3{1, 0, 0.5}, Max: Vec3{2, 1, 2}}
	if !outer.ContainsBox(inner, 1e-9) {
		t.Fatal("inner should be contained")
	}
	if outer.ContainsBox(Box3{Min: Vec3{9.5, 0, 0}, Max: Vec3{10.5, 1, 3}}, 1e-9) {
		t.Fatal("box past the end should not be contained")
	}
	if !outer.ContainsBox(Box3{Min: Vec3{0, 0, -1e-12}, Max: Vec3{10, 1, 3}}, 1e-9) {
		t.Fatal("noise within tolerance should be contained")
	}
}
