package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/reactorcad/pkg/kernel"
)

// frameSDF places a canonical SDF3 into an orthonormal frame: canonical
// X, Y and Z map to the world directions a, b and c through origin.
// Orthonormal maps preserve distance, so the wrapped SDF stays exact.
type frameSDF struct {
	s       sdf.SDF3
	origin  [3]float64
	a, b, c [3]float64
	bb      sdf.Box3
}

func newFrameSDF(s sdf.SDF3, origin, a, b, c [3]float64) sdf.SDF3 {
	f := &frameSDF{s: s, origin: origin, a: a, b: b, c: c}
	cb := s.BoundingBox()
	min := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < 8; i++ {
		x, y, z := cb.Min.X, cb.Min.Y, cb.Min.Z
		if i&1 != 0 {
			x = cb.Max.X
		}
		if i&2 != 0 {
			y = cb.Max.Y
		}
		if i&4 != 0 {
			z = cb.Max.Z
		}
		w := f.toWorld(x, y, z)
		for k := 0; k < 3; k++ {
			min[k] = math.Min(min[k], w[k])
			max[k] = math.Max(max[k], w[k])
		}
	}
	f.bb = sdf.Box3{Min: vec(min), Max: vec(max)}
	return f
}

func (f *frameSDF) toWorld(x, y, z float64) [3]float64 {
	return kernel.Add(f.origin, kernel.Add(kernel.Scale(f.a, x), kernel.Add(kernel.Scale(f.b, y), kernel.Scale(f.c, z))))
}

// Evaluate returns the signed distance at p.
func (f *frameSDF) Evaluate(p v3.Vec) float64 {
	d := kernel.Sub([3]float64{p.X, p.Y, p.Z}, f.origin)
	return f.s.Evaluate(v3.Vec{X: kernel.Dot(d, f.a), Y: kernel.Dot(d, f.b), Z: kernel.Dot(d, f.c)})
}

// BoundingBox returns the world bounding box.
func (f *frameSDF) BoundingBox() sdf.Box3 {
	return f.bb
}
