package profile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
)

// VariationKind tags the form of a Variation.
type VariationKind int

const (
	VariationConstant VariationKind = iota
	VariationEndpoints
	VariationProfile
	VariationFunc
)

// Variation is a quantity that varies with poloidal angle: a constant, a
// linear ramp between two endpoints, a piecewise linear profile over
// explicit angles, or an arbitrary function of the angle in degrees.
//
// A Profile with no angles spreads its values evenly between the start and
// stop angles of the owning blanket.
type Variation struct {
	Kind   VariationKind
	Value  float64   // constant
	Start  float64   // endpoints
	End    float64   // endpoints
	Angles []float64 // profile, degrees
	Values []float64 // profile
	Func   func(deg float64) float64
	// Label identifies a Func variation in hashes and errors.
	Label string
}

// Constant returns a constant variation.
func Constant(v float64) Variation { return Variation{Kind: VariationConstant, Value: v} }

// Endpoints returns a linear ramp from start to end over the angle range.
func Endpoints(start, end float64) Variation {
	return Variation{Kind: VariationEndpoints, Start: start, End: end}
}

// Profile returns a piecewise linear variation.
func Profile(angles, values []float64) Variation {
	return Variation{Kind: VariationProfile, Angles: angles, Values: values}
}

// Func returns a variation computed by f. label names it in hashes.
func Func(label string, f func(deg float64) float64) Variation {
	return Variation{Kind: VariationFunc, Func: f, Label: label}
}

// Validate checks the variation is well-formed.
func (v Variation) Validate() error {
	const op = "profile.Variation"
	switch v.Kind {
	case VariationConstant:
		if !finite(v.Value) {
			return errdefs.Invalidf(op, "non-finite constant %v", v.Value)
		}
	case VariationEndpoints:
		if !finite(v.Start, v.End) {
			return errdefs.Invalidf(op, "non-finite endpoints (%v, %v)", v.Start, v.End)
		}
	case VariationProfile:
		if len(v.Values) == 0 {
			return errdefs.Invalidf(op, "profile has no values")
		}
		if len(v.Angles) > 0 && len(v.Angles) != len(v.Values) {
			return errdefs.Invalidf(op, "profile has %d angles and %d values", len(v.Angles), len(v.Values))
		}
		for i := 1; i < len(v.Angles); i++ {
			if v.Angles[i] < v.Angles[i-1] {
				return errdefs.Invalidf(op, "profile angles must be increasing")
			}
		}
		if !finite(v.Angles...) || !finite(v.Values...) {
			return errdefs.Invalidf(op, "profile contains non-finite entries")
		}
	case VariationFunc:
		if v.Func == nil {
			return errdefs.Invalidf(op, "function variation has no function")
		}
	default:
		return errdefs.Invalidf(op, "unknown variation kind %d", int(v.Kind))
	}
	return nil
}

// At evaluates the variation at deg, for a blanket spanning start to stop
// degrees.
func (v Variation) At(deg, start, stop float64) float64 {
	switch v.Kind {
	case VariationEndpoints:
		if stop == start {
			return v.Start
		}
		return v.Start + (v.End-v.Start)*(deg-start)/(stop-start)
	case VariationProfile:
		angles := v.Angles
		if len(angles) == 0 {
			angles = geom.Linspace(start, stop, len(v.Values), true)
		}
		xs, ys := angles, v.Values
		if len(xs) > 1 && xs[0] > xs[len(xs)-1] {
			xs, ys = reverseFloats(xs), reverseFloats(ys)
		}
		return geom.Interp(deg, xs, ys)
	case VariationFunc:
		return v.Func(deg)
	default:
		return v.Value
	}
}

// String is the canonical form used in hashes.
func (v Variation) String() string {
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	join := func(xs []float64) string {
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = f(x)
		}
		return strings.Join(parts, ",")
	}
	switch v.Kind {
	case VariationEndpoints:
		return "endpoints(" + f(v.Start) + "," + f(v.End) + ")"
	case VariationProfile:
		return "profile([" + join(v.Angles) + "],[" + join(v.Values) + "])"
	case VariationFunc:
		return "func(" + v.Label + ")"
	default:
		return "constant(" + f(v.Value) + ")"
	}
}

// MarshalYAML encodes the variation in the forms accepted by UnmarshalYAML.
func (v Variation) MarshalYAML() (any, error) {
	switch v.Kind {
	case VariationEndpoints:
		return []float64{v.Start, v.End}, nil
	case VariationProfile:
		return [][]float64{v.Angles, v.Values}, nil
	case VariationFunc:
		return nil, fmt.Errorf("profile: function variation %q cannot be encoded", v.Label)
	default:
		return v.Value, nil
	}
}

// UnmarshalYAML accepts a scalar (constant), a pair (endpoints) or a pair
// of lists (angles, values).
func (v *Variation) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var x float64
		if err := node.Decode(&x); err != nil {
			return errdefs.Invalidf("profile.Variation", "line %d: %v", node.Line, err)
		}
		*v = Constant(x)
		return nil
	case yaml.SequenceNode:
		var raw []any
		if err := node.Decode(&raw); err != nil {
			return errdefs.Invalidf("profile.Variation", "line %d: %v", node.Line, err)
		}
		return v.fromList(raw)
	}
	return errdefs.Invalidf("profile.Variation", "line %d: expected a number or a list", node.Line)
}

// UnmarshalJSON accepts the same forms as UnmarshalYAML.
func (v *Variation) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return errdefs.Invalidf("profile.Variation", "%v", err)
	}
	switch t := raw.(type) {
	case float64:
		*v = Constant(t)
		return nil
	case []any:
		return v.fromList(t)
	}
	return errdefs.Invalidf("profile.Variation", "expected a number or a list, got %s", string(b))
}

// MarshalJSON mirrors MarshalYAML.
func (v Variation) MarshalJSON() ([]byte, error) {
	x, err := v.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return json.Marshal(x)
}

func (v *Variation) fromList(raw []any) error {
	const op = "profile.Variation"
	if len(raw) != 2 {
		return errdefs.Invalidf(op, "expected 2 entries, got %d", len(raw))
	}
	a, aok := number(raw[0])
	b, bok := number(raw[1])
	if aok && bok {
		*v = Endpoints(a, b)
		return nil
	}
	angles, err := numbers(raw[0])
	if err != nil {
		return errdefs.Invalidf(op, "angles: %v", err)
	}
	values, err := numbers(raw[1])
	if err != nil {
		return errdefs.Invalidf(op, "values: %v", err)
	}
	*v = Profile(angles, values)
	return v.Validate()
}

func number(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func numbers(x any) ([]float64, error) {
	list, ok := x.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", x)
	}
	out := make([]float64, len(list))
	for i, e := range list {
		n, ok := number(e)
		if !ok {
			return nil, fmt.Errorf("entry %d is %T, not a number", i, e)
		}
		out[i] = n
	}
	return out, nil
}

func reverseFloats(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[len(xs)-1-i] = x
	}
	return out
}
