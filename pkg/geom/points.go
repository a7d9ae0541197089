// Package geom turns annotated 2D point sequences into closed planar wires.
//
// A point list is either uniform "bare" (x, y) pairs that inherit a
// connection kind, or fully annotated (x, y, kind) triples. Process
// canonicalises a list (kinds filled in, explicitly closed, validated) and
// NewWire discretises the canonical list into a polygon that the kernel
// can revolve, extrude or sweep.
package geom

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/reactorcad/pkg/errdefs"
)

// Kind is the segment kind of the run a point starts.
type Kind int

const (
	KindNone     Kind = iota // unset; inherits the shape's connection type
	KindStraight             // polyline
	KindSpline               // interpolating spline
	KindCircle               // three-point arc
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return ""
	case KindStraight:
		return "straight"
	case KindSpline:
		return "spline"
	case KindCircle:
		return "circle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a kind string. The empty string and "mixed" map to
// KindNone, which means "points carry their own kinds".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mixed":
		return KindNone, nil
	case "straight":
		return KindStraight, nil
	case "spline":
		return KindSpline, nil
	case "circle":
		return KindCircle, nil
	}
	return KindNone, errdefs.Invalidf("geom.ParseKind", "unknown segment kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Point is a planar point annotated with the kind of the segment it starts.
type Point struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Kind Kind    `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// P is shorthand for a bare point.
func P(x, y float64) Point { return Point{X: x, Y: y} }

// PK is shorthand for an annotated point.
func PK(x, y float64, k Kind) Point { return Point{X: x, Y: y, Kind: k} }

// XY returns the coordinates as an array.
func (p Point) XY() [2]float64 { return [2]float64{p.X, p.Y} }

func (p Point) samePos(q Point) bool { return p.X == q.X && p.Y == q.Y }

// Process canonicalises a user point list.
//
// Points without a kind take connection. The list must be uniform: every
// point annotated or none. The result is explicitly closed (the first point
// is appended when the last differs), has at least three distinct points,
// and every circle run pairs up into start/mid points whose end is the
// following point.
func Process(points []Point, connection Kind) ([]Point, error) {
	const op = "geom.Process"
	if len(points) == 0 {
		return nil, errdefs.Geometryf(op, "empty points list")
	}

	annotated := 0
	for _, p := range points {
		if p.Kind != KindNone {
			annotated++
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, errdefs.Invalidf(op, "non-finite point (%v, %v)", p.X, p.Y)
		}
		if p.Kind < KindNone || p.Kind > KindCircle {
			return nil, errdefs.Invalidf(op, "unknown segment kind %d", int(p.Kind))
		}
	}
	if annotated != 0 && annotated != len(points) {
		return nil, errdefs.Geometryf(op, "mixed point arity: %d of %d points carry a kind", annotated, len(points))
	}
	if annotated == 0 && connection == KindNone {
		return nil, errdefs.Invalidf(op, "points carry no kind and connection type is mixed")
	}

	out := make([]Point, len(points), len(points)+1)
	copy(out, points)
	if annotated == 0 {
		for i := range out {
			out[i].Kind = connection
		}
	}

	if !out[0].samePos(out[len(out)-1]) {
		out = append(out, out[0])
	}

	if distinct(out) < 3 {
		return nil, errdefs.Geometryf(op, "need at least 3 distinct points, got %d", distinct(out))
	}

	// The closing point only terminates the last run; its own kind is unused.
	run := 0
	for i := 0; i < len(out)-1; i++ {
		if out[i].Kind == KindCircle {
			run++
			continue
		}
		if run%2 != 0 {
			return nil, errdefs.Geometryf(op, "circle run ending at point %d has %d labelled points; arcs need start, mid and end", i, run)
		}
		run = 0
	}
	if run%2 != 0 {
		return nil, errdefs.Geometryf(op, "trailing circle run has %d labelled points; arcs need start, mid and end", run)
	}

	return out, nil
}

func distinct(pts []Point) int {
	seen := make(map[[2]float64]struct{}, len(pts))
	for _, p := range pts {
		seen[p.XY()] = struct{}{}
	}
	return len(seen)
}

// Run is a maximal sequence of same-kind points. Points includes the
// following point, which terminates the run.
type Run struct {
	Kind   Kind
	Points []Point
}

// Runs groups a processed (closed) point list into edge runs.
func Runs(processed []Point) []Run {
	if len(processed) < 2 {
		return nil
	}
	var runs []Run
	start := 0
	for i := 1; i <= len(processed)-1; i++ {
		if i == len(processed)-1 || processed[i].Kind != processed[start].Kind {
			runs = append(runs, Run{
				Kind:   processed[start].Kind,
				Points: processed[start : i+1],
			})
			start = i
		}
	}
	return runs
}
