// Package kernel defines the abstract geometry kernel interface.
// The sdfx backend provides profile operations (revolve, extrude, sweep),
// boolean operations and meshing behind this interface. The kernel
// abstraction keeps the shape algebra independent of the backend.
package kernel

import "math"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Polygon is a closed planar outline in frame coordinates (u, v). The
// first vertex is not repeated.
type Polygon [][2]float64

// Frame is an orthonormal workplane frame. Profile coordinates (u, v) map
// to Origin + u*U + v*V, and N = U x V is the extrusion direction.
type Frame struct {
	Origin  [3]float64
	U, V, N [3]float64
}

// NewFrame returns the frame spanned by u and v through origin.
func NewFrame(origin, u, v [3]float64) Frame {
	return Frame{Origin: origin, U: u, V: v, N: Cross(u, v)}
}

// ToWorld lifts frame coordinates (u, v, n) into world space.
func (f Frame) ToWorld(u, v, n float64) [3]float64 {
	return Add(f.Origin, Add(Scale(f.U, u), Add(Scale(f.V, v), Scale(f.N, n))))
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Box is centred on the origin.
	Box(x, y, z float64) Solid

	// Profile operations.
	//
	// Revolve sweeps the profile about the frame's V axis by angle degrees,
	// starting in the profile plane and turning U towards V x U.
	Revolve(profile Polygon, f Frame, angle float64) (Solid, error)
	// Extrude sweeps the profile along N from n = from to n = to.
	Extrude(profile Polygon, f Frame, from, to float64) (Solid, error)
	// Sweep moves the profile along a polyline path given in world
	// coordinates. When fixed is true the section keeps its orientation;
	// otherwise it turns with the path tangent.
	Sweep(profile Polygon, f Frame, path [][3]float64, fixed bool) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	// RotateAxis rotates s by angle degrees (right hand rule) about the
	// line through origin along axis.
	RotateAxis(s Solid, origin, axis [3]float64, angle float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
	ToMeshCells(s Solid, cells int) (*Mesh, error)
	ExportSTL(s Solid, path string, cells int) error
	// ExportMeshSTL writes an already tessellated mesh as binary STL.
	ExportMeshSTL(m *Mesh, path string) error
}

// Add returns a + b.
func Add(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

// Sub returns a - b.
func Sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

// Scale returns a * k.
func Scale(a [3]float64, k float64) [3]float64 { return [3]float64{a[0] * k, a[1] * k, a[2] * k} }

// Dot returns the dot product.
func Dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// Cross returns the cross product a x b.
func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length returns the Euclidean norm.
func Length(a [3]float64) float64 { return math.Sqrt(Dot(a, a)) }

// Normalize returns a scaled to unit length. The zero vector is returned
// unchanged.
func Normalize(a [3]float64) [3]float64 {
	l := Length(a)
	if l == 0 {
		return a
	}
	return Scale(a, 1/l)
}
