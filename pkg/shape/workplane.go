package shape

import (
	"fmt"
	"strings"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/kernel"
)

// Workplane names the plane a profile is drawn in. The first letter is the
// profile's u axis and the second its v axis; the normal is u x v.
type Workplane string

const (
	XY Workplane = "XY"
	XZ Workplane = "XZ"
	YZ Workplane = "YZ"
	YX Workplane = "YX"
	ZX Workplane = "ZX"
	ZY Workplane = "ZY"
)

// DefaultWorkplane is used when a shape leaves its workplane empty.
const DefaultWorkplane = XZ

var unitAxes = map[byte][3]float64{
	'X': {1, 0, 0},
	'Y': {0, 1, 0},
	'Z': {0, 0, 1},
}

// ParseWorkplane validates a workplane label.
func ParseWorkplane(s string) (Workplane, error) {
	w := Workplane(strings.ToUpper(strings.TrimSpace(s)))
	if w == "" {
		return DefaultWorkplane, nil
	}
	if err := w.Validate(); err != nil {
		return "", err
	}
	return w, nil
}

// Validate reports whether w is one of the six workplane labels.
func (w Workplane) Validate() error {
	switch w {
	case XY, XZ, YZ, YX, ZX, ZY:
		return nil
	}
	return errdefs.Workplanef("shape.Workplane", "unknown workplane %q", string(w))
}

// Frame returns the workplane frame through the origin.
func (w Workplane) Frame() kernel.Frame {
	return kernel.NewFrame([3]float64{}, unitAxes[w[0]], unitAxes[w[1]])
}

// third returns the world axis letter missing from w.
func (w Workplane) third() byte {
	for _, c := range []byte("XYZ") {
		if c != w[0] && c != w[1] {
			return c
		}
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler.
func (w Workplane) MarshalText() ([]byte, error) { return []byte(w), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Workplane) UnmarshalText(b []byte) error {
	v, err := ParseWorkplane(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Axis is a rotation axis: either a labelled world axis (X, +Y, -Z, ...) or
// the line through two distinct points.
type Axis struct {
	Label      string     `yaml:"label,omitempty" json:"label,omitempty"`
	Start, End [3]float64 `yaml:"-" json:"-"`
}

// AxisLabel returns the labelled axis. Labels are X, Y or Z with an
// optional sign.
func AxisLabel(label string) (Axis, error) {
	a := Axis{Label: strings.ToUpper(strings.TrimSpace(label))}
	if _, _, err := a.Line(); err != nil {
		return Axis{}, err
	}
	return a, nil
}

// AxisThrough returns the axis through start and end, pointing at end.
func AxisThrough(start, end [3]float64) (Axis, error) {
	if start == end {
		return Axis{}, errdefs.Invalidf("shape.AxisThrough", "rotation axis points must differ, got %v twice", start)
	}
	return Axis{Start: start, End: end}, nil
}

// Line returns a point on the axis and its unit direction.
func (a Axis) Line() (origin, dir [3]float64, err error) {
	if a.Label == "" {
		if a.Start == a.End {
			return origin, dir, errdefs.Invalidf("shape.Axis", "custom rotation axis needs two distinct points")
		}
		return a.Start, kernel.Normalize(kernel.Sub(a.End, a.Start)), nil
	}
	l := a.Label
	sign := 1.0
	switch l[0] {
	case '+':
		l = l[1:]
	case '-':
		l, sign = l[1:], -1
	}
	if len(l) != 1 {
		return origin, dir, errdefs.Invalidf("shape.Axis", "unknown rotation axis %q", a.Label)
	}
	u, ok := unitAxes[l[0]]
	if !ok {
		return origin, dir, errdefs.Invalidf("shape.Axis", "unknown rotation axis %q", a.Label)
	}
	return origin, kernel.Scale(u, sign), nil
}

// letter returns the world axis letter of a labelled axis, or 0.
func (a Axis) letter() byte {
	if a.Label == "" {
		return 0
	}
	return a.Label[len(a.Label)-1]
}

func (a Axis) String() string {
	if a.Label != "" {
		return a.Label
	}
	return fmt.Sprintf("%v->%v", a.Start, a.End)
}

// defaultAxis is the second letter of the workplane.
func defaultAxis(w Workplane) Axis {
	return Axis{Label: string(w[1])}
}
