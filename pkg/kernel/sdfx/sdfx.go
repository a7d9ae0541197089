// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/reactorcad/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	meshCells int
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithMeshCells sets the marching cubes resolution used by ToMesh.
func WithMeshCells(n int) Option {
	return func(k *SdfxKernel) {
		if n > 0 {
			k.meshCells = n
		}
	}
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{meshCells: defaultMeshCells}
	for _, o := range opts {
		o(k)
	}
	return k
}

// MeshCells returns the default marching cubes resolution.
func (k *SdfxKernel) MeshCells() int { return k.meshCells }

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func vec(p [3]float64) v3.Vec { return v3.Vec{X: p[0], Y: p[1], Z: p[2]} }

// Box creates a box with the given dimensions centred on the origin.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(s)
}

// polygon2D converts a profile into an sdfx polygon.
func polygon2D(profile kernel.Polygon) (sdf.SDF2, error) {
	if len(profile) < 3 {
		return nil, fmt.Errorf("sdfx: profile has %d vertices, need 3", len(profile))
	}
	pts := make([]v2.Vec, len(profile))
	for i, p := range profile {
		pts[i] = v2.Vec{X: p[0], Y: p[1]}
	}
	s, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("sdfx: polygon: %w", err)
	}
	return s, nil
}

// Revolve revolves the profile about the frame's V axis. sdfx revolves a
// 2D SDF about Z with the 2D x axis as radius, so the canonical solid is
// mapped X -> U, Y -> V x U, Z -> V.
func (k *SdfxKernel) Revolve(profile kernel.Polygon, f kernel.Frame, angle float64) (kernel.Solid, error) {
	if !(angle > 0 && angle <= 360) {
		return nil, fmt.Errorf("sdfx: revolve angle %v outside (0, 360]", angle)
	}
	s2, err := polygon2D(profile)
	if err != nil {
		return nil, err
	}
	var s3 sdf.SDF3
	if angle >= 360 {
		s3, err = sdf.Revolve3D(s2)
	} else {
		s3, err = sdf.RevolveTheta3D(s2, angle*math.Pi/180)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx: revolve: %w", err)
	}
	return wrap(newFrameSDF(s3, f.Origin, f.U, kernel.Cross(f.V, f.U), f.V)), nil
}

// Extrude extrudes the profile along the frame normal between from and to.
func (k *SdfxKernel) Extrude(profile kernel.Polygon, f kernel.Frame, from, to float64) (kernel.Solid, error) {
	if from > to {
		from, to = to, from
	}
	if to-from <= 0 {
		return nil, fmt.Errorf("sdfx: extrude distance must be nonzero")
	}
	s2, err := polygon2D(profile)
	if err != nil {
		return nil, err
	}
	s3 := sdf.Extrude3D(s2, to-from)
	origin := kernel.Add(f.Origin, kernel.Scale(f.N, (from+to)/2))
	return wrap(newFrameSDF(s3, origin, f.U, f.V, f.N)), nil
}

// Sweep sweeps the profile along path. See newSweepSDF.
func (k *SdfxKernel) Sweep(profile kernel.Polygon, f kernel.Frame, path [][3]float64, fixed bool) (kernel.Solid, error) {
	s2, err := polygon2D(profile)
	if err != nil {
		return nil, err
	}
	s, err := newSweepSDF(s2, profile, f, path, fixed)
	if err != nil {
		return nil, err
	}
	return wrap(s), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// RotateAxis rotates a solid about an arbitrary line.
func (k *SdfxKernel) RotateAxis(s kernel.Solid, origin, axis [3]float64, angle float64) kernel.Solid {
	if angle == 0 {
		return s
	}
	m := sdf.Translate3d(vec(origin)).
		Mul(sdf.Rotate3d(vec(kernel.Normalize(axis)), angle*math.Pi/180)).
		Mul(sdf.Translate3d(vec(kernel.Scale(origin, -1))))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	return k.ToMeshCells(s, k.meshCells)
}

// ToMeshCells converts a solid to a triangle mesh with cells marching
// cubes cells along the longest bounding box axis.
func (k *SdfxKernel) ToMeshCells(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		cells = k.meshCells
	}
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// ExportSTL renders the solid and writes a binary STL file.
func (k *SdfxKernel) ExportSTL(s kernel.Solid, path string, cells int) error {
	if cells <= 0 {
		cells = k.meshCells
	}
	triangles := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(cells))
	if err := render.SaveSTL(path, triangles); err != nil {
		return fmt.Errorf("sdfx: save stl %s: %w", path, err)
	}
	return nil
}

// ExportMeshSTL writes m as a binary STL file.
func (k *SdfxKernel) ExportMeshSTL(m *kernel.Mesh, path string) error {
	triangles := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		triangles = append(triangles, &sdf.Triangle3{vec(tri[0]), vec(tri[1]), vec(tri[2])})
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		return fmt.Errorf("sdfx: save stl %s: %w", path, err)
	}
	return nil
}
