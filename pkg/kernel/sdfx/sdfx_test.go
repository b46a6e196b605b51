package sdfx

import (
	"math"
	"testing"

	"github.com/chazu/bimgen/pkg/kernel"
)

func checkBounds(t *testing.T, s kernel.Solid, expectMin, expectMax [3]float64, tol float64) {
	t.Helper()
	min, max := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestBox(t *testing.T) {
	k := New()
	box, err := k.Box(12, 0.3, 3)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	checkBounds(t, box, [3]float64{0, 0, 0}, [3]float64{12, 0.3, 3}, 1e-9)

	if !box.Contains(6, 0.15, 1.5) {
		t.Error("box centre should be inside")
	}
	if box.Contains(13, 0.15, 1.5) {
		t.Error("point beyond the box should be outside")
	}
}

func TestBoxRejectsDegenerate(t *testing.T) {
	k := New()
	if _, err := k.Box(1, 0, 1); err == nil {
		t.Fatal("expected error for zero-size box")
	}
	if _, err := k.Box(-1, 1, 1); err == nil {
		t.Fatal("expected error for negative box")
	}
}

func TestExtrude(t *testing.T) {
	k := New()
	// An L-shaped profile.
	profile := [][2]float64{{0, 0}, {4, 0}, {4, 1}, {1, 1}, {1, 3}, {0, 3}}
	s, err := k.Extrude(profile, 2.5)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	checkBounds(t, s, [3]float64{0, 0, 0}, [3]float64{4, 3, 2.5}, 1e-9)

	if !s.Contains(0.5, 2, 1) {
		t.Error("point in the leg should be inside")
	}
	if s.Contains(3, 2, 1) {
		t.Error("point in the notch should be outside")
	}
}

func TestExtrudeRejectsBadInput(t *testing.T) {
	k := New()
	if _, err := k.Extrude([][2]float64{{0, 0}, {1, 0}}, 1); err == nil {
		t.Error("expected error for a two-point profile")
	}
	if _, err := k.Extrude([][2]float64{{0, 0}, {1, 0}, {1, 1}}, 0); err == nil {
		t.Error("expected error for zero height")
	}
}

func TestDifference(t *testing.T) {
	k := New()
	wall, _ := k.Box(10, 0.3, 3)
	hole, _ := k.Box(1, 0.3, 1.5)
	hole = k.Translate(hole, 4, 0, 0.9)

	cut := k.Difference(wall, hole)
	if cut.Contains(4.5, 0.15, 1.65) {
		t.Error("opening centre should be void after the cut")
	}
	if !cut.Contains(2, 0.15, 1.5) {
		t.Error("wall away from the opening should stay solid")
	}
	// The cut never grows the host.
	checkBounds(t, cut, [3]float64{0, 0, 0}, [3]float64{10, 0.3, 3}, 1e-9)
}

func TestUnion(t *testing.T) {
	k := New()
	box1, _ := k.Box(50, 50, 50)
	box2, _ := k.Box(50, 50, 50)
	u := k.Union(box1, k.Translate(box2, 30, 0, 0))
	checkBounds(t, u, [3]float64{0, 0, 0}, [3]float64{80, 50, 50}, 1e-9)
}

func TestIntersection(t *testing.T) {
	k := New()
	box1, _ := k.Box(100, 100, 100)
	box2, _ := k.Box(100, 100, 100)
	inter := k.Intersection(box1, k.Translate(box2, 50, 0, 0))
	if !inter.Contains(75, 50, 50) {
		t.Error("shared region should be inside")
	}
	if inter.Contains(25, 50, 50) {
		t.Error("region only in the first box should be outside")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box, _ := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)
	checkBounds(t, translated, [3]float64{100, 200, 300}, [3]float64{110, 210, 310}, 1e-9)
}

func TestRotate(t *testing.T) {
	k := New()
	box, _ := k.Box(100, 10, 10)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1e-6
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}
