// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid primitives and
// boolean operations behind this interface so the frame builder never
// depends on how a backend represents geometry.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
// Primitives are created centered on the origin; callers place them
// with Rotate and Translate.
type Kernel interface {
	// Primitives
	Sphere(radius float64, segments int) (Solid, error)
	// Cylinder is aligned with the Z axis. Unequal radii produce a
	// truncated cone.
	Cylinder(height, radiusLow, radiusHigh float64, segments int) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees, applied X then Y then Z

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
