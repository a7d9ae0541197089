package shape

import (
	"math"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/kernel"
)

// Verb turns a shape's wire into a solid. The implementations are Revolve,
// Extrude, Sweep and HollowCube.
type Verb interface {
	// Name is the verb's tag as used in parameter files.
	Name() string
	validate(s *Shape) error
	encode(h *hasher)
}

// Revolve spins the profile about the workplane's v axis by Angle degrees.
type Revolve struct {
	Angle float64 `yaml:"angle" json:"angle"`
}

func (Revolve) Name() string { return "revolve" }

func (r Revolve) validate(*Shape) error {
	if !(r.Angle > 0 && r.Angle <= 360) {
		return errdefs.Compositionf("shape.Revolve", "rotation angle %v outside (0, 360]", r.Angle)
	}
	return nil
}

func (r Revolve) encode(h *hasher) {
	h.str("revolve")
	h.f64(r.Angle)
}

// Extrude pushes the profile along the workplane normal. With Both the
// extrusion is centred on the profile plane; otherwise it runs from
// StartOffset to StartOffset+Distance. A RotationAngle in (0, 360) keeps
// only that sector about the rotation axis, measured from the first
// placement angle.
type Extrude struct {
	Distance      float64 `yaml:"distance" json:"distance"`
	Both          bool    `yaml:"both" json:"both"`
	StartOffset   float64 `yaml:"start_offset,omitempty" json:"start_offset,omitempty"`
	RotationAngle float64 `yaml:"rotation_angle,omitempty" json:"rotation_angle,omitempty"`
}

func (Extrude) Name() string { return "extrude" }

func (e Extrude) validate(*Shape) error {
	const op = "shape.Extrude"
	if e.Distance == 0 || math.IsNaN(e.Distance) || math.IsInf(e.Distance, 0) {
		return errdefs.Invalidf(op, "extrusion distance must be a nonzero number, got %v", e.Distance)
	}
	if math.IsNaN(e.StartOffset) || math.IsInf(e.StartOffset, 0) {
		return errdefs.Invalidf(op, "non-finite start offset")
	}
	if e.RotationAngle != 0 && !(e.RotationAngle > 0 && e.RotationAngle <= 360) {
		return errdefs.Compositionf(op, "rotation angle %v outside (0, 360]", e.RotationAngle)
	}
	return nil
}

// span returns the extrusion limits along the normal.
func (e Extrude) span() (from, to float64) {
	if e.Both {
		return -math.Abs(e.Distance) / 2, math.Abs(e.Distance) / 2
	}
	from, to = e.StartOffset, e.StartOffset+e.Distance
	if from > to {
		from, to = to, from
	}
	return from, to
}

// partial reports whether the extrusion is trimmed to a sector.
func (e Extrude) partial() bool { return e.RotationAngle > 0 && e.RotationAngle < 360 }

func (e Extrude) encode(h *hasher) {
	h.str("extrude")
	h.f64(e.Distance)
	h.bool(e.Both)
	h.f64(e.StartOffset)
	h.f64(e.RotationAngle)
}

// Sweep moves the profile along a spline through Path. Path points are
// coordinates in PathWorkplane, which shares its first letter with the
// profile's workplane; the profile is drawn relative to the first path
// point. With ForceCrossSection the section keeps the workplane
// orientation; otherwise it turns with the path.
type Sweep struct {
	Path              [][2]float64 `yaml:"path" json:"path"`
	PathWorkplane     Workplane    `yaml:"path_workplane" json:"path_workplane"`
	ForceCrossSection bool         `yaml:"force_cross_section" json:"force_cross_section"`
}

func (Sweep) Name() string { return "sweep" }

func (sw Sweep) validate(s *Shape) error {
	const op = "shape.Sweep"
	if err := sw.PathWorkplane.Validate(); err != nil {
		return err
	}
	if sw.PathWorkplane == s.workplane {
		return errdefs.Workplanef(op, "workplane and path workplane must differ, both are %s", s.workplane)
	}
	if sw.PathWorkplane[0] != s.workplane[0] {
		return errdefs.Workplanef(op, "workplane %s and path workplane %s must start with the same letter", s.workplane, sw.PathWorkplane)
	}
	if len(sw.Path) < 2 {
		return errdefs.Invalidf(op, "sweep path needs at least 2 points, got %d", len(sw.Path))
	}
	for _, p := range sw.Path {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return errdefs.Invalidf(op, "non-finite path point %v", p)
		}
	}
	return nil
}

func (sw Sweep) encode(h *hasher) {
	h.str("sweep")
	h.str(string(sw.PathWorkplane))
	h.bool(sw.ForceCrossSection)
	h.int(len(sw.Path))
	for _, p := range sw.Path {
		h.f64(p[0])
		h.f64(p[1])
	}
}

// world lifts path coordinates into world space.
func (sw Sweep) world(p [2]float64) [3]float64 {
	u := unitAxes[sw.PathWorkplane[0]]
	v := unitAxes[sw.PathWorkplane[1]]
	return kernel.Add(kernel.Scale(u, p[0]), kernel.Scale(v, p[1]))
}

// path returns the sampled path in world coordinates.
func (sw Sweep) path() [][3]float64 {
	samples := geom.SampleSpline(sw.Path, geom.SplineSteps)
	out := make([][3]float64, len(samples))
	for i, p := range samples {
		out[i] = sw.world(p)
	}
	return out
}

// HollowCube is a cube shell: an inner cavity of edge Length surrounded by
// walls of Thickness, centred on Center. It ignores the shape's points.
type HollowCube struct {
	Length    float64    `yaml:"length" json:"length"`
	Thickness float64    `yaml:"thickness" json:"thickness"`
	Center    [3]float64 `yaml:"center" json:"center"`
}

func (HollowCube) Name() string { return "hollow_cube" }

func (c HollowCube) validate(*Shape) error {
	const op = "shape.HollowCube"
	if !(c.Length > 0) || math.IsInf(c.Length, 0) {
		return errdefs.Invalidf(op, "length must be positive, got %v", c.Length)
	}
	if !(c.Thickness > 0) || math.IsInf(c.Thickness, 0) {
		return errdefs.Invalidf(op, "thickness must be positive, got %v", c.Thickness)
	}
	return nil
}

func (c HollowCube) encode(h *hasher) {
	h.str("hollow_cube")
	h.f64(c.Length)
	h.f64(c.Thickness)
	for _, v := range c.Center {
		h.f64(v)
	}
}

// Volume returns the exact shell volume.
func (c HollowCube) Volume() float64 {
	outer := c.Length + 2*c.Thickness
	return outer*outer*outer - c.Length*c.Length*c.Length
}

// Mesh returns the shell as two boxes of twelve triangles each, the inner
// one facing inward.
func (c HollowCube) Mesh() *kernel.Mesh {
	m := &kernel.Mesh{}
	m.Append(boxMesh(c.Center, c.Length/2+c.Thickness, false))
	m.Append(boxMesh(c.Center, c.Length/2, true))
	return m
}

// boxFaces lists the corner indices of each face, counter-clockwise seen
// from outside. Corner i has bit 0 = +x, bit 1 = +y, bit 2 = +z.
var boxFaces = [6][4]uint32{
	{0, 2, 3, 1}, // -z
	{4, 5, 7, 6}, // +z
	{0, 1, 5, 4}, // -y
	{2, 6, 7, 3}, // +y
	{0, 4, 6, 2}, // -x
	{1, 3, 7, 5}, // +x
}

var boxNormals = [6][3]float32{{0, 0, -1}, {0, 0, 1}, {0, -1, 0}, {0, 1, 0}, {-1, 0, 0}, {1, 0, 0}}

func boxMesh(center [3]float64, half float64, inward bool) *kernel.Mesh {
	m := &kernel.Mesh{}
	var corners [8][3]float32
	for i := range corners {
		for k := 0; k < 3; k++ {
			d := -half
			if i&(1<<k) != 0 {
				d = half
			}
			corners[i][k] = float32(center[k] + d)
		}
	}
	for f, face := range boxFaces {
		n := boxNormals[f]
		if inward {
			n = [3]float32{-n[0], -n[1], -n[2]}
		}
		for _, tri := range [2][3]uint32{{face[0], face[1], face[2]}, {face[0], face[2], face[3]}} {
			if inward {
				tri[1], tri[2] = tri[2], tri[1]
			}
			for _, c := range tri {
				m.Vertices = append(m.Vertices, corners[c][0], corners[c][1], corners[c][2])
				m.Normals = append(m.Normals, n[0], n[1], n[2])
				m.Indices = append(m.Indices, uint32(len(m.Indices)))
			}
		}
	}
	return m
}
