package component

import (
	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/profile"
	"github.com/chazu/reactorcad/pkg/shape"
)

// PortOptions position a port cutter along the radial direction.
type PortOptions struct {
	// StartOffset is the radial distance from the rotation axis where the
	// cutter begins.
	StartOffset float64 `yaml:"extrusion_start_offset" json:"extrusion_start_offset"`
	Distance    float64 `yaml:"distance" json:"distance"`
}

func portParams(c Common, name, material string, o PortOptions) shape.Params {
	z := shape.Axis{Label: "Z"}
	p := c.params(name, material)
	p.Workplane = shape.YZ
	p.RotationAxis = &z
	p.Verb = shape.Extrude{Distance: o.Distance, StartOffset: o.StartOffset}
	return p
}

// PortCutterCircular returns a round cutter extruded radially outward from
// StartOffset. Placement angles come from c.
func PortCutterCircular(pc profile.PortCutterCircular, o PortOptions, c Common) (*shape.Shape, error) {
	center, radius, err := pc.Circle()
	if err != nil {
		return nil, err
	}
	return shape.NewCircle(portParams(c, "circular_port_cutter", "circular_port_cutter_mat", o), center, radius)
}

// PortCutterRectangular returns a rectangular cutter extruded radially
// outward from StartOffset.
func PortCutterRectangular(pc profile.PortCutterRectangular, o PortOptions, c Common) (*shape.Shape, error) {
	pts, err := pc.Points()
	if err != nil {
		return nil, err
	}
	p := portParams(c, "rectangular_port_cutter", "rectangular_port_cutter_mat", o)
	p.Points = pts
	return shape.New(p)
}

// StarCutter is the set of thin slabs that splits a blanket into toroidal
// segments.
type StarCutter struct {
	Height float64 `yaml:"height" json:"height"`
	Width  float64 `yaml:"width" json:"width"`
	// Distance is the gap cut between neighbouring segments.
	Distance float64 `yaml:"distance" json:"distance"`
}

// DefaultStarCutter returns a 2000 by 2000 cutter with no gap set.
func DefaultStarCutter() StarCutter {
	return StarCutter{Height: 2000, Width: 2000}
}

// BlanketCutterStar returns slabs extruded symmetrically about the XZ plane.
// Without placement angles in c, ten slabs are spread every 36 degrees.
func BlanketCutterStar(sc StarCutter, c Common) (*shape.Shape, error) {
	const op = "component.BlanketCutterStar"
	d := DefaultStarCutter()
	if sc.Height == 0 {
		sc.Height = d.Height
	}
	if sc.Width == 0 {
		sc.Width = d.Width
	}
	if !(sc.Height > 0) || !(sc.Width > 0) {
		return nil, errdefs.Invalidf(op, "height and width must be positive, got %v and %v", sc.Height, sc.Width)
	}
	if !(sc.Distance > 0) {
		return nil, errdefs.Invalidf(op, "distance must be positive, got %v", sc.Distance)
	}
	if c.Placement == nil {
		c.Placement = geom.Linspace(0, 360, 10, false)
	}
	h := sc.Height / 2
	p := c.params("blanket_cutter_star", "blanket_cutter_star_mat")
	p.Points = []geom.Point{
		geom.P(0, h),
		geom.P(sc.Width, h),
		geom.P(sc.Width, -h),
		geom.P(0, -h),
	}
	z := shape.Axis{Label: "Z"}
	p.RotationAxis = &z
	p.Verb = shape.Extrude{Distance: sc.Distance, Both: true}
	return shape.New(p)
}
