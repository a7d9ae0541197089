package reactor_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/chazu/reactorcad/pkg/errdefs"
	"github.com/chazu/reactorcad/pkg/geom"
	"github.com/chazu/reactorcad/pkg/kernel/sdfx"
	"github.com/chazu/reactorcad/pkg/reactor"
	"github.com/chazu/reactorcad/pkg/shape"
)

func TestMain(m *testing.M) {
	// sdfx leaves its marching cubes workers parked between renders.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/deadsy/sdfx/render.evalRoutines.func1"))
}

const testCells = 60

// ring revolves a rectangle between radii r0 and r1, 10 high, by angle.
func ring(t *testing.T, name string, r0, r1, angle float64) *shape.Shape {
	t.Helper()
	s, err := shape.New(shape.Params{
		Name:     name,
		Material: name + "_mat",
		Points:   []geom.Point{geom.P(r0, -5), geom.P(r0, 5), geom.P(r1, 5), geom.P(r1, -5)},
		Verb:     shape.Revolve{Angle: angle},
	})
	require.NoError(t, err)
	return s
}

func newReactor(t *testing.T, mutate func(*reactor.Config), shapes ...*shape.Shape) *reactor.Reactor {
	t.Helper()
	cfg := reactor.DefaultConfig()
	cfg.MeshCells = testCells
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())
	b := shape.NewBuilder(sdfx.New(sdfx.WithMeshCells(testCells)), shape.WithMeshCells(testCells))
	r := reactor.New(reactor.WithConfig(cfg), reactor.WithBuilder(b))
	r.Add(shapes...)
	return r
}

func requireKind(t *testing.T, err error, kind errdefs.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, errdefs.KindOf(err), "error: %v", err)
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	r := newReactor(t, nil, ring(t, "b", 5, 10, 360), nil, ring(t, "a", 11, 15, 360))
	assert.Equal(t, []string{"b", "a"}, r.ShapeNames())
	assert.Len(t, r.Shapes(), 2)
	assert.Equal(t, "a_mat", r.Lookup("a").Material())
	assert.Nil(t, r.Lookup("missing"))
}

func TestConfigValidate(t *testing.T) {
	cfg := reactor.DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Units = "inch"
	requireKind(t, bad.Validate(), errdefs.KindInvalidParameter)

	bad = cfg
	bad.MinMeshSize, bad.MaxMeshSize = 10, 5
	requireKind(t, bad.Validate(), errdefs.KindInvalidParameter)

	bad = cfg
	bad.GraveyardThickness = 0
	requireKind(t, bad.Validate(), errdefs.KindInvalidParameter)
}

func TestBoundingBoxContainsMembers(t *testing.T) {
	ctx := context.Background()
	inner, outer := ring(t, "inner", 5, 10, 360), ring(t, "outer", 12, 15, 360)
	r := newReactor(t, nil, inner, outer)

	box, err := r.BoundingBox(ctx)
	require.NoError(t, err)
	for _, s := range r.Shapes() {
		lo, hi, err := s.BoundingBox(r.Builder())
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			assert.LessOrEqual(t, box.Min[i], lo[i], "%s min[%d]", s.Name(), i)
			assert.GreaterOrEqual(t, box.Max[i], hi[i], "%s max[%d]", s.Name(), i)
		}
	}

	largest, err := r.LargestDimension(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 15, largest, 0.75)

	_, err = newReactor(t, nil).BoundingBox(ctx)
	requireKind(t, err, errdefs.KindInvalidGeometry)
}

func TestGraveyard(t *testing.T) {
	ctx := context.Background()
	r := newReactor(t, func(c *reactor.Config) { c.GraveyardSize = 1000 }, ring(t, "r", 5, 10, 360))
	g, err := r.Graveyard(ctx)
	require.NoError(t, err)
	assert.Equal(t, reactor.GraveyardName, g.Name())
	assert.Equal(t, reactor.GraveyardMaterial, g.Material())
	assert.Equal(t, "graveyard.stp", g.StpFilename())
	cube := g.Verb().(shape.HollowCube)
	assert.Equal(t, 1000.0, cube.Length)
	assert.Equal(t, 10.0, cube.Thickness)

	r = newReactor(t, nil, ring(t, "r", 5, 10, 360))
	largest, err := r.LargestDimension(ctx)
	require.NoError(t, err)
	g, err = r.Graveyard(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2*(largest+100), g.Verb().(shape.HollowCube).Length, 1e-9)
}

func TestSectorWedge(t *testing.T) {
	ctx := context.Background()
	full := newReactor(t, nil, ring(t, "r", 5, 10, 360))
	w, err := full.SectorWedge(ctx)
	require.NoError(t, err)
	assert.Nil(t, w)

	half := newReactor(t, nil, ring(t, "r", 5, 10, 180), ring(t, "s", 11, 12, 360))
	assert.Equal(t, 180.0, half.RotationAngle())
	w, err = half.SectorWedge(ctx)
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, shape.SectorWedgeName, w.Name())
	assert.Equal(t, shape.Revolve{Angle: 180}, w.Verb())
	assert.True(t, w.SurfaceReflectivity())
}

func TestVolumes(t *testing.T) {
	r := newReactor(t, nil, ring(t, "r", 5, 10, 360))
	vols, err := r.Volumes(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, vols["r"], 1)
	assert.InEpsilon(t, 3.14159*(100-25)*10, vols["r"][0], 0.03)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	r := newReactor(t, nil, ring(t, "a", 5, 10, 360), ring(t, "b", 8, 15, 360))
	res, err := r.Validate(ctx)
	require.NoError(t, err)
	assert.True(t, res.OK())
	overlaps := 0
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "overlaps") {
			overlaps++
		}
	}
	assert.Equal(t, 1, overlaps)

	a, b := ring(t, "a", 5, 10, 360), ring(t, "b", 6, 7, 360)
	require.NoError(t, a.SetCut(b))
	require.NoError(t, b.SetCut(a))
	res, err = newReactor(t, nil, a).Validate(ctx)
	require.NoError(t, err)
	assert.False(t, res.OK())
	requireKind(t, res.Err(), errdefs.KindComposition)
}

func TestNeutronicsDescription(t *testing.T) {
	ctx := context.Background()
	plasma := ring(t, "plasma", 20, 30, 180)
	require.NoError(t, plasma.SetMaterial(reactor.PlasmaMaterial))
	blanket := ring(t, "blanket", 31, 40, 180)

	r := newReactor(t, nil, plasma, blanket)
	entries, err := r.NeutronicsDescription(ctx)
	require.NoError(t, err)
	var mats []string
	for _, e := range entries {
		mats = append(mats, e.Material)
	}
	assert.Equal(t, []string{reactor.PlasmaMaterial, "blanket_mat", shape.SectorWedgeMaterial, reactor.GraveyardMaterial}, mats)
	assert.Equal(t, "graveyard.stp", entries[len(entries)-1].Filename)
	assert.True(t, entries[2].SurfaceReflectivity)

	r = newReactor(t, func(c *reactor.Config) {
		c.ExcludePlasma = true
		c.IncludeGraveyard = false
	}, plasma, blanket)
	entries, err = r.NeutronicsDescription(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "blanket_mat", entries[0].Material)
	assert.Equal(t, []string{"blanket_mat"}, r.MaterialTags())

	bare := ring(t, "bare", 5, 10, 360)
	require.NoError(t, bare.SetMaterial(""))
	_, err = newReactor(t, nil, bare).NeutronicsDescription(ctx)
	requireKind(t, err, errdefs.KindExport)
}

func TestExportRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := newReactor(t, nil, ring(t, "dup", 5, 10, 360), ring(t, "dup", 11, 15, 360)).ExportSTP(ctx, dir)
	requireKind(t, err, errdefs.KindExport)

	_, err = newReactor(t, nil, ring(t, "", 5, 10, 360)).ExportSTL(ctx, dir)
	requireKind(t, err, errdefs.KindExport)

	a, b := ring(t, "a", 5, 10, 360), ring(t, "b", 11, 15, 360)
	require.NoError(t, b.SetStlFilename("a.stl"))
	_, err = newReactor(t, nil, a, b).ExportSTL(ctx, dir)
	requireKind(t, err, errdefs.KindExport)

	c := ring(t, "c", 5, 10, 360)
	requireKind(t, c.SetStpFilename("c.txt"), errdefs.KindInvalidParameter)
	assert.Equal(t, "c.stp", c.StpFilename())
}

func TestCancelledExport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newReactor(t, nil, ring(t, "a", 5, 10, 360), ring(t, "b", 11, 15, 360)).ExportSTL(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
