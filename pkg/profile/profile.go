// Package profile contains the closed-form 2D profile generators for
// reactor components: plasma separatrix, center-column shields, blankets
// that follow the plasma, divertors, coil cross sections, port cutters and
// inner TF coil wedges.
//
// Every generator is a pure function of a typed parameter struct and
// returns a point list ready for geom.Process. The last point of every
// list is marked straight so the closing segment is a line.
package profile

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

// Configuration is the magnetic configuration of a plasma.
type Configuration int

const (
	NonNull Configuration = iota
	SingleNull
	DoubleNull
)

func (c Configuration) String() string {
	switch c {
	case NonNull:
		return "non-null"
	case SingleNull:
		return "single-null"
	case DoubleNull:
		return "double-null"
	default:
		return fmt.Sprintf("Configuration(%d)", int(c))
	}
}

// ParseConfiguration converts a configuration name.
func ParseConfiguration(s string) (Configuration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "non-null", "nonnull":
		return NonNull, nil
	case "single-null", "singlenull":
		return SingleNull, nil
	case "double-null", "doublenull":
		return DoubleNull, nil
	}
	return NonNull, errdefs.Invalidf("profile.ParseConfiguration", "unknown configuration %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Configuration) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Configuration) UnmarshalText(b []byte) error {
	v, err := ParseConfiguration(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// PhysicalGroup is a named face or volume group handed to downstream
// meshers.
type PhysicalGroup struct {
	Dim  int    `json:"dim"`
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// tagged converts raw coordinates into points sharing one kind.
func tagged(pts [][2]float64, k geom.Kind) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = geom.PK(p[0], p[1], k)
	}
	return out
}

// closeStraight marks the last point straight.
func closeStraight(pts []geom.Point) []geom.Point {
	if len(pts) > 0 {
		pts[len(pts)-1].Kind = geom.KindStraight
	}
	return pts
}

func reversed(pts [][2]float64) [][2]float64 {
	out := make([][2]float64, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func positive(op, name string, v float64) error {
	if !(v > 0) || !finite(v) {
		return errdefs.Invalidf(op, "%s must be a positive number, got %v", name, v)
	}
	return nil
}
