// Package kernel defines the abstract geometry kernel interface.
// Implementations provide solid modeling and boolean operations behind
// this interface so the synthesis engine does not depend on a backend.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Contains reports whether the point lies strictly inside the solid.
	Contains(x, y, z float64) bool
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Box has its minimum corner at the origin; Extrude sweeps
	// a closed plan profile from z=0 up to height.
	Box(x, y, z float64) (Solid, error)
	Extrude(profile [][2]float64, height float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees
}

// Overlaps reports whether the bounding boxes of a and b intersect by
// more than tol on every axis.
func Overlaps(a, b Solid, tol float64) bool {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	for i := 0; i < 3; i++ {
		if amin[i] >= bmax[i]-tol || bmin[i] >= amax[i]-tol {
			return false
		}
	}
	return true
}
