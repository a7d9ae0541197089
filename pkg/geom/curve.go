package geom

import (
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

// SampleSpline samples a Catmull-Rom spline through ctrl with steps
// samples per span. The first and last control points are included; the
// end tangents are taken from mirrored ghost points.
func SampleSpline(ctrl [][2]float64, steps int) [][2]float64 {
	n := len(ctrl)
	if n < 3 || steps < 1 {
		out := make([][2]float64, n)
		copy(out, ctrl)
		return out
	}
	get := func(i int) [2]float64 {
		switch {
		case i < 0:
			return [2]float64{2*ctrl[0][0] - ctrl[1][0], 2*ctrl[0][1] - ctrl[1][1]}
		case i >= n:
			return [2]float64{2*ctrl[n-1][0] - ctrl[n-2][0], 2*ctrl[n-1][1] - ctrl[n-2][1]}
		}
		return ctrl[i]
	}
	out := make([][2]float64, 0, (n-1)*steps+1)
	for i := 0; i < n-1; i++ {
		p0, p1, p2, p3 := get(i-1), get(i), get(i+1), get(i+2)
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			out = append(out, catmullRom(p0, p1, p2, p3, t))
		}
	}
	return append(out, ctrl[n-1])
}

func catmullRom(p0, p1, p2, p3 [2]float64, t float64) [2]float64 {
	t2, t3 := t*t, t*t*t
	var r [2]float64
	for k := 0; k < 2; k++ {
		r[k] = 0.5 * (2*p1[k] +
			(-p0[k]+p2[k])*t +
			(2*p0[k]-5*p1[k]+4*p2[k]-p3[k])*t2 +
			(-p0[k]+3*p1[k]-3*p2[k]+p3[k])*t3)
	}
	return r
}

// SampleArc samples the circular arc from start through mid to end with an
// angular step no larger than maxStepDeg. Both ends are included.
func SampleArc(start, mid, end [2]float64, maxStepDeg float64) ([][2]float64, error) {
	c, r, err := CircleThrough(start, mid, end)
	if err != nil {
		return nil, err
	}
	a0 := math.Atan2(start[1]-c[1], start[0]-c[0])
	am := math.Atan2(mid[1]-c[1], mid[0]-c[0])
	a1 := math.Atan2(end[1]-c[1], end[0]-c[0])
	sweep := normAngle(a1 - a0)
	if normAngle(am-a0) > sweep {
		sweep -= 2 * math.Pi // clockwise through mid
	}
	n := int(math.Ceil(math.Abs(sweep) / (maxStepDeg * math.Pi / 180)))
	if n < 2 {
		n = 2
	}
	out := make([][2]float64, 0, n+1)
	for i := 0; i < n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		out = append(out, [2]float64{c[0] + r*math.Cos(a), c[1] + r*math.Sin(a)})
	}
	return append(out, end), nil
}

func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// CircleThrough returns the centre and radius of the circle through three
// points. Collinear points are invalid geometry.
func CircleThrough(p1, p2, p3 [2]float64) (center [2]float64, radius float64, err error) {
	temp := p2[0]*p2[0] + p2[1]*p2[1]
	bc := (p1[0]*p1[0] + p1[1]*p1[1] - temp) / 2
	cd := (temp - p3[0]*p3[0] - p3[1]*p3[1]) / 2
	det := (p1[0]-p2[0])*(p2[1]-p3[1]) - (p2[0]-p3[0])*(p1[1]-p2[1])
	if math.Abs(det) < 1e-6 {
		return center, 0, errdefs.Geometryf("geom.CircleThrough", "points (%v, %v), (%v, %v), (%v, %v) are collinear",
			p1[0], p1[1], p2[0], p2[1], p3[0], p3[1])
	}
	cx := (bc*(p2[1]-p3[1]) - cd*(p1[1]-p2[1])) / det
	cy := ((p1[0]-p2[0])*cd - (p2[0]-p3[0])*bc) / det
	center = [2]float64{cx, cy}
	return center, Distance(center, p1), nil
}

// Distance is the Euclidean distance between two points.
func Distance(a, b [2]float64) float64 {
	return math.Hypot(b[0]-a[0], b[1]-a[1])
}

// Rotate rotates point counter-clockwise about origin by angle radians.
func Rotate(origin, point [2]float64, angle float64) [2]float64 {
	dx, dy := point[0]-origin[0], point[1]-origin[1]
	s, c := math.Sin(angle), math.Cos(angle)
	return [2]float64{origin[0] + c*dx - s*dy, origin[1] + s*dx + c*dy}
}

// Extend returns the point at distance length from a along the direction
// a to b.
func Extend(a, b [2]float64, length float64) [2]float64 {
	d := Distance(a, b)
	if d == 0 {
		return a
	}
	return [2]float64{a[0] + (b[0]-a[0])*length/d, a[1] + (b[1]-a[1])*length/d}
}

// Linspace returns n evenly spaced samples from start to stop. When
// endpoint is false stop is excluded.
func Linspace(start, stop float64, n int, endpoint bool) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	div := float64(n)
	if endpoint {
		div = float64(n - 1)
	}
	step := (stop - start) / div
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	if endpoint {
		out[n-1] = stop
	}
	return out
}

// Interp linearly interpolates ys over increasing xs at x, clamping
// outside the range.
func Interp(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	for i := 1; i < n; i++ {
		if x <= xs[i] {
			span := xs[i] - xs[i-1]
			if span == 0 {
				return ys[i]
			}
			t := (x - xs[i-1]) / span
			return ys[i-1] + t*(ys[i]-ys[i-1])
		}
	}
	return ys[n-1]
}

// OffsetCurve offsets each vertex of an open curve by thickness along its
// local normal, oriented away from the centroid of the curve. Tangents
// are central differences, one-sided at the ends.
func OffsetCurve(pts [][2]float64, thickness float64) [][2]float64 {
	n := len(pts)
	if n < 2 {
		return nil
	}
	var c [2]float64
	for _, p := range pts {
		c[0] += p[0]
		c[1] += p[1]
	}
	c[0] /= float64(n)
	c[1] /= float64(n)

	out := make([][2]float64, n)
	for i, p := range pts {
		a, b := pts[max(i-1, 0)], pts[min(i+1, n-1)]
		tx, ty := b[0]-a[0], b[1]-a[1]
		l := math.Hypot(tx, ty)
		if l == 0 {
			out[i] = p
			continue
		}
		nx, ny := ty/l, -tx/l
		if nx*(p[0]-c[0])+ny*(p[1]-c[1]) < 0 {
			nx, ny = -nx, -ny
		}
		out[i] = [2]float64{p[0] + thickness*nx, p[1] + thickness*ny}
	}
	return out
}
