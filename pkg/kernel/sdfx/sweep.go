package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/reactorcad/pkg/kernel"
)

// sweepSDF is the union of one clipped prism per path segment. Each prism
// extrudes the section along the segment direction and is bounded by a
// start and end plane.
//
// In fixed mode every section keeps the workplane orientation and the
// bounding planes are the section planes themselves, so neighbouring
// prisms meet on identical sections. Otherwise the section frame is
// carried along the path by parallel transport and prisms meet on the
// mitre plane bisecting the two section normals.
type sweepSDF struct {
	section  sdf.SDF2
	segments []sweepSegment
	bb       sdf.Box3
}

type sweepSegment struct {
	p0, p1     [3]float64
	dir        [3]float64
	n, u, v    [3]float64 // section frame of this segment
	origin     [3]float64 // world position of section (0, 0) on the plane through p0
	start, end [3]float64 // forward-facing bounding plane normals at p0 and p1
	dn         float64    // dir . n
}

type mat3 [3][3]float64

func identity() mat3 { return mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} }

func (m mat3) apply(p [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*p[0] + m[0][1]*p[1] + m[0][2]*p[2],
		m[1][0]*p[0] + m[1][1]*p[1] + m[1][2]*p[2],
		m[2][0]*p[0] + m[2][1]*p[1] + m[2][2]*p[2],
	}
}

func (m mat3) mul(o mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// rotationBetween returns the minimal rotation taking unit a onto unit b.
func rotationBetween(a, b [3]float64) (mat3, error) {
	v := kernel.Cross(a, b)
	c := kernel.Dot(a, b)
	if kernel.Length(v) < 1e-12 {
		if c > 0 {
			return identity(), nil
		}
		return mat3{}, fmt.Errorf("sdfx: sweep path reverses direction")
	}
	k := mat3{{0, -v[2], v[1]}, {v[2], 0, -v[0]}, {-v[1], v[0], 0}}
	k2 := k.mul(k)
	r := identity()
	f := 1 / (1 + c)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] += k[i][j] + k2[i][j]*f
		}
	}
	return r, nil
}

func newSweepSDF(section sdf.SDF2, profile kernel.Polygon, f kernel.Frame, path [][3]float64, fixed bool) (sdf.SDF3, error) {
	pts := make([][3]float64, 0, len(path))
	for _, p := range path {
		if len(pts) > 0 && kernel.Length(kernel.Sub(p, pts[len(pts)-1])) < 1e-9 {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("sdfx: sweep path needs at least 2 distinct points")
	}

	t0 := kernel.Normalize(kernel.Sub(pts[1], pts[0]))
	n := f.N
	if kernel.Dot(t0, n) < 0 {
		n = kernel.Scale(n, -1)
	}
	if kernel.Dot(t0, n) < 1e-9 {
		return nil, fmt.Errorf("sdfx: sweep path starts inside the section plane")
	}

	s := &sweepSDF{section: section}
	rot := identity()
	prevT := t0
	for i := 0; i+1 < len(pts); i++ {
		p0, p1 := pts[i], pts[i+1]
		dir := kernel.Sub(p1, p0)
		t := kernel.Normalize(dir)
		seg := sweepSegment{p0: p0, p1: p1, dir: dir}
		if fixed {
			seg.n, seg.u, seg.v = n, f.U, f.V
			seg.origin = kernel.Add(f.Origin, kernel.Sub(p0, pts[0]))
		} else {
			r, err := rotationBetween(prevT, t)
			if err != nil {
				return nil, err
			}
			rot = r.mul(rot)
			seg.n, seg.u, seg.v = rot.apply(n), rot.apply(f.U), rot.apply(f.V)
			seg.origin = kernel.Add(p0, rot.apply(kernel.Sub(f.Origin, pts[0])))
		}
		seg.dn = kernel.Dot(dir, seg.n)
		if seg.dn < 1e-9*kernel.Length(dir) {
			return nil, fmt.Errorf("sdfx: sweep path segment %d lies in or crosses back through the section plane", i)
		}
		seg.start, seg.end = seg.n, seg.n
		s.segments = append(s.segments, seg)
		prevT = t
	}

	if !fixed {
		for i := 1; i < len(s.segments); i++ {
			m := kernel.Add(s.segments[i-1].n, s.segments[i].n)
			if kernel.Length(m) < 1e-9 {
				return nil, fmt.Errorf("sdfx: sweep path folds back at point %d", i)
			}
			m = kernel.Normalize(m)
			if kernel.Dot(m, s.segments[i-1].dir) <= 0 || kernel.Dot(m, s.segments[i].dir) <= 0 {
				return nil, fmt.Errorf("sdfx: sweep path bends too sharply at point %d", i)
			}
			s.segments[i-1].end = m
			s.segments[i].start = m
		}
	}

	s.bb = s.bounds(profile)
	return s, nil
}

// bounds projects every section vertex of every prism onto its two
// bounding planes.
func (s *sweepSDF) bounds(profile kernel.Polygon) sdf.Box3 {
	min := [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	grow := func(p [3]float64) {
		for k := 0; k < 3; k++ {
			min[k] = math.Min(min[k], p[k])
			max[k] = math.Max(max[k], p[k])
		}
	}
	for _, seg := range s.segments {
		for _, q := range profile {
			w := kernel.Add(seg.origin, kernel.Add(kernel.Scale(seg.u, q[0]), kernel.Scale(seg.v, q[1])))
			for _, plane := range []struct{ at, n [3]float64 }{{seg.p0, seg.start}, {seg.p1, seg.end}} {
				tau := kernel.Dot(kernel.Sub(plane.at, w), plane.n) / kernel.Dot(seg.dir, plane.n)
				grow(kernel.Add(w, kernel.Scale(seg.dir, tau)))
			}
		}
	}
	return sdf.Box3{Min: vec(min), Max: vec(max)}
}

// Evaluate returns the signed distance estimate at p.
func (s *sweepSDF) Evaluate(p v3.Vec) float64 {
	q := [3]float64{p.X, p.Y, p.Z}
	best := math.Inf(1)
	for i := range s.segments {
		seg := &s.segments[i]
		clip := math.Max(-kernel.Dot(kernel.Sub(q, seg.p0), seg.start), kernel.Dot(kernel.Sub(q, seg.p1), seg.end))
		if clip >= best {
			continue
		}
		t := kernel.Dot(kernel.Sub(q, seg.p0), seg.n) / seg.dn
		local := kernel.Sub(kernel.Sub(q, kernel.Scale(seg.dir, t)), seg.origin)
		d := s.section.Evaluate(v2.Vec{X: kernel.Dot(local, seg.u), Y: kernel.Dot(local, seg.v)})
		best = math.Min(best, math.Max(d, clip))
	}
	return best
}

// BoundingBox returns the bounding box of the swept solid.
func (s *sweepSDF) BoundingBox() sdf.Box3 {
	return s.bb
}
