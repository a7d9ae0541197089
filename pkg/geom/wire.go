package geom

import (
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

const (
	// SplineSteps is the number of samples per spline span.
	SplineSteps = 8
	// ArcStepDegrees is the largest angular step used when sampling arcs.
	ArcStepDegrees = 2.0
)

// Wire is a closed planar chain of edges derived from a point list.
type Wire struct {
	points  []Point
	polygon [][2]float64
}

// NewWire processes points and discretises every run into a closed
// polygon. The polygon does not repeat its first vertex.
func NewWire(points []Point, connection Kind) (*Wire, error) {
	processed, err := Process(points, connection)
	if err != nil {
		return nil, err
	}
	return FromProcessed(processed)
}

// FromProcessed builds a wire from an already canonical point list.
func FromProcessed(processed []Point) (*Wire, error) {
	const op = "geom.NewWire"
	var poly [][2]float64
	for _, run := range Runs(processed) {
		var samples [][2]float64
		switch run.Kind {
		case KindStraight:
			samples = make([][2]float64, len(run.Points))
			for i, p := range run.Points {
				samples[i] = p.XY()
			}
		case KindSpline:
			ctrl := make([][2]float64, len(run.Points))
			for i, p := range run.Points {
				ctrl[i] = p.XY()
			}
			samples = SampleSpline(ctrl, SplineSteps)
		case KindCircle:
			for i := 0; i+2 < len(run.Points); i += 2 {
				arc, err := SampleArc(run.Points[i].XY(), run.Points[i+1].XY(), run.Points[i+2].XY(), ArcStepDegrees)
				if err != nil {
					return nil, err
				}
				if len(samples) > 0 {
					arc = arc[1:]
				}
				samples = append(samples, arc...)
			}
		default:
			return nil, errdefs.Invalidf(op, "run has no segment kind")
		}
		// The last sample starts the next run.
		poly = append(poly, samples[:len(samples)-1]...)
	}
	poly = dedupe(poly)
	if len(poly) < 3 {
		return nil, errdefs.Geometryf(op, "degenerate wire with %d vertices", len(poly))
	}
	w := &Wire{points: processed, polygon: poly}
	if w.SelfIntersects() {
		return nil, errdefs.Geometryf(op, "profile is self-intersecting")
	}
	return w, nil
}

// CircleWire returns a wire approximating a full circle.
func CircleWire(center [2]float64, radius float64) (*Wire, error) {
	if !(radius > 0) {
		return nil, errdefs.Invalidf("geom.CircleWire", "radius must be > 0, got %v", radius)
	}
	n := int(math.Ceil(360 / ArcStepDegrees))
	poly := make([][2]float64, n)
	for i := range poly {
		a := 2 * math.Pi * float64(i) / float64(n)
		poly[i] = [2]float64{center[0] + radius*math.Cos(a), center[1] + radius*math.Sin(a)}
	}
	pts := []Point{
		PK(center[0]+radius, center[1], KindCircle),
		PK(center[0], center[1]+radius, KindCircle),
		PK(center[0]-radius, center[1], KindCircle),
		PK(center[0], center[1]-radius, KindCircle),
		PK(center[0]+radius, center[1], KindCircle),
	}
	return &Wire{points: pts, polygon: poly}, nil
}

// Points returns the processed point list, closed.
func (w *Wire) Points() []Point { return w.points }

// Polygon returns the discretised outline.
func (w *Wire) Polygon() [][2]float64 { return w.polygon }

// BoundingBox returns the 2D axis-aligned bounds of the outline.
func (w *Wire) BoundingBox() (min, max [2]float64) {
	return Bounds(w.polygon)
}

// Area returns the enclosed area (always positive).
func (w *Wire) Area() float64 {
	return math.Abs(SignedArea(w.polygon))
}

// SelfIntersects reports whether any two non-adjacent edges cross or
// overlap. Edges that only touch at an endpoint are accepted, as is a
// seam: an edge traversed once in each direction, which joins the inner
// and outer loops of an annular profile.
func (w *Wire) SelfIntersects() bool {
	p := w.polygon
	n := len(p)
	for i := 0; i < n; i++ {
		a1, a2 := p[i], p[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			b1, b2 := p[j], p[(j+1)%n]
			if isSeam(a1, a2, b1, b2) {
				continue
			}
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// Bounds returns the bounding box of a point set.
func Bounds(pts [][2]float64) (min, max [2]float64) {
	min = [2]float64{math.Inf(1), math.Inf(1)}
	max = [2]float64{math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		min[0], min[1] = math.Min(min[0], p[0]), math.Min(min[1], p[1])
		max[0], max[1] = math.Max(max[0], p[0]), math.Max(max[1], p[1])
	}
	return min, max
}

// SignedArea is the shoelace area; positive for counter-clockwise outlines.
func SignedArea(pts [][2]float64) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return a / 2
}

func dedupe(pts [][2]float64) [][2]float64 {
	out := pts[:0:0]
	for _, p := range pts {
		if len(out) > 0 && nearlyEqual(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && nearlyEqual(out[0], out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func nearlyEqual(a, b [2]float64) bool {
	return math.Abs(a[0]-b[0]) < 1e-9 && math.Abs(a[1]-b[1]) < 1e-9
}

// isSeam reports whether edge b1-b2 retraces edge a1-a2 backwards.
func isSeam(a1, a2, b1, b2 [2]float64) bool {
	tol := 1e-9 * math.Max(1, math.Max(Distance(a1, a2), math.Hypot(a1[0], a1[1])))
	return Distance(a1, b2) <= tol && Distance(a2, b1) <= tol
}

func orient(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func segmentsCross(p1, p2, q1, q2 [2]float64) bool {
	scale := math.Max(Distance(p1, p2), Distance(q1, q2))
	eps := 1e-12 * math.Max(1, scale*scale)
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps)) {
		return true
	}
	// Collinear overlap of positive length.
	if math.Abs(d1) <= eps && math.Abs(d2) <= eps {
		dir := [2]float64{p2[0] - p1[0], p2[1] - p1[1]}
		l2 := dir[0]*dir[0] + dir[1]*dir[1]
		if l2 == 0 {
			return false
		}
		t1 := ((q1[0]-p1[0])*dir[0] + (q1[1]-p1[1])*dir[1]) / l2
		t2 := ((q2[0]-p1[0])*dir[0] + (q2[1]-p1[1])*dir[1]) / l2
		lo, hi := math.Min(t1, t2), math.Max(t1, t2)
		return math.Min(hi, 1)-math.Max(lo, 0) > 1e-9
	}
	return false
}
