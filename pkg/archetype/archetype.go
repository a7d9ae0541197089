// Package archetype builds complete parametric reactors from typed
// configurations.
//
// Each archetype is a Config with documented defaults. Build looks the
// archetype up by name, decodes the request parameters over its defaults
// and assembles the resulting shapes into a reactor.Reactor. Parameter
// decoding is strict: unknown keys are rejected.
package archetype

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/reactor"
	"github.com/chazu/reactorcad/pkg/shape"
)

// Config is an archetype's parameter set.
type Config interface {
	// Validate checks the parameters without building anything.
	Validate() error
	// Shapes returns the reactor members in insertion order.
	Shapes() ([]*shape.Shape, error)
}

// Request names an archetype and the parameters that override its
// defaults.
type Request struct {
	Archetype string         `yaml:"archetype" json:"archetype"`
	Params    map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// Archetype names.
const (
	BallName                 = "ball"
	SubmersionBallName       = "submersion_ball"
	CenterColumnStudyName    = "center_column_study"
	SegmentedBlanketBallName = "segmented_blanket_ball"
	SingleNullBallName       = "single_null_ball"
	EUDemoName               = "eu_demo"
)

var registry = map[string]func() Config{
	BallName:                 func() Config { c := DefaultBall(); return &c },
	SubmersionBallName:       func() Config { c := DefaultSubmersionBall(); return &c },
	CenterColumnStudyName:    func() Config { c := DefaultCenterColumnStudy(); return &c },
	SegmentedBlanketBallName: func() Config { c := DefaultSegmentedBlanketBall(); return &c },
	SingleNullBallName:       func() Config { c := DefaultSingleNullBall(); return &c },
	EUDemoName:               func() Config { c := DefaultEUDemo(); return &c },
}

// Register adds an archetype. It panics on a duplicate name.
func Register(name string, defaults func() Config) {
	if _, dup := registry[name]; dup {
		panic("archetype: duplicate archetype " + name)
	}
	registry[name] = defaults
}

// Names returns the registered archetype names, sorted.
func Names() []string {
	names := lo.Keys(registry)
	slices.Sort(names)
	return names
}

// Default returns the default configuration of the named archetype.
func Default(name string) (Config, error) {
	f, ok := registry[normalize(name)]
	if !ok {
		return nil, errdefs.Invalidf("archetype.Default", "unknown archetype %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return f(), nil
}

func normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// Decode resolves req into a validated configuration.
func Decode(req Request) (Config, error) {
	const op = "archetype.Decode"
	cfg, err := Default(req.Archetype)
	if err != nil {
		return nil, err
	}
	if len(req.Params) > 0 {
		if err := decodeStrict(req.Params, cfg); err != nil {
			return nil, errdefs.WithSubject(errdefs.Invalidf(op, "%v", err), req.Archetype)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, errdefs.WithSubject(err, req.Archetype)
	}
	return cfg, nil
}

// decodeStrict overlays params on cfg, rejecting keys cfg does not have.
func decodeStrict(params map[string]any, cfg Config) error {
	data, err := yaml.Marshal(params)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Build decodes req and assembles the reactor.
func Build(req Request, opts ...reactor.Option) (*reactor.Reactor, error) {
	cfg, err := Decode(req)
	if err != nil {
		return nil, err
	}
	return Assemble(cfg, opts...)
}

// Assemble builds the shapes of cfg into a new reactor.
func Assemble(cfg Config, opts ...reactor.Option) (*reactor.Reactor, error) {
	shapes, err := cfg.Shapes()
	if err != nil {
		return nil, err
	}
	r := reactor.New(opts...)
	r.Add(shapes...)
	return r, nil
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// checkRotation validates a revolve angle. Reactors whose blankets wrap the
// whole poloidal circle must stay below 360 degrees.
func checkRotation(op string, angle float64, fullBlanket bool) error {
	if !(angle > 0 && angle <= 360) {
		return errdefs.Invalidf(op, "rotation_angle %v outside (0, 360]", angle)
	}
	if fullBlanket && angle == 360 {
		return errdefs.Invalidf(op, "rotation_angle must be below 360 for blankets covering the full poloidal circle")
	}
	return nil
}

// checkPositive rejects any named value that is not strictly positive.
func checkPositive(op string, values map[string]float64) error {
	for _, name := range sortedKeys(values) {
		if v := values[name]; !(v > 0) {
			return errdefs.Invalidf(op, "%s must be positive, got %v", name, v)
		}
	}
	return nil
}

// checkNonNegative rejects any named value below zero.
func checkNonNegative(op string, values map[string]float64) error {
	for _, name := range sortedKeys(values) {
		if v := values[name]; !(v >= 0) {
			return errdefs.Invalidf(op, "%s must not be negative, got %v", name, v)
		}
	}
	return nil
}

func sortedKeys(values map[string]float64) []string {
	keys := lo.Keys(values)
	slices.Sort(keys)
	return keys
}

// rect is a revolved rectangle spanning [r0, r1] by [z0, z1].
type rect struct {
	name, material string
	r0, r1, z0, z1 float64
}

func (r rect) shape(rotation float64, p shape.Params) (*shape.Shape, error) {
	p.Name, p.Material = r.name, r.material
	p.Points = []geom.Point{
		geom.P(r.r0, r.z1),
		geom.P(r.r1, r.z1),
		geom.P(r.r1, r.z0),
		geom.P(r.r0, r.z0),
	}
	p.Verb = shape.Revolve{Angle: rotation}
	s, err := shape.New(p)
	if err != nil {
		return nil, fmt.Errorf("archetype: %s: %w", r.name, err)
	}
	return s, nil
}
