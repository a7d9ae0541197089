package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/reactorcad/pkg/kernel"
)

// testCells keeps marching cubes fast while staying within 1% on volume.
const testCells = 100

var (
	xzFrame = kernel.NewFrame([3]float64{}, [3]float64{1, 0, 0}, [3]float64{0, 0, 1})
	xyFrame = kernel.NewFrame([3]float64{}, [3]float64{1, 0, 0}, [3]float64{0, 1, 0})
)

func square(x0, y0, x1, y1 float64) kernel.Polygon {
	return kernel.Polygon{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}}
}

func circle(cx, cy, r float64, n int) kernel.Polygon {
	p := make(kernel.Polygon, n)
	for i := range p {
		a := 2 * math.Pi * float64(i) / float64(n)
		p[i] = [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return p
}

func volumeOf(t *testing.T, k *SdfxKernel, s kernel.Solid) float64 {
	t.Helper()
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	return m.Volume()
}

func within(got, want, rel float64) bool {
	return math.Abs(got-want) <= rel*math.Abs(want)
}

func TestBox(t *testing.T) {
	k := New(WithMeshCells(testCells))
	box := k.Box(100, 50, 25)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
	if v := mesh.Volume(); !within(v, 100*50*25, 0.01) {
		t.Fatalf("box volume = %f, want ~%d", v, 100*50*25)
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	box := k.Box(100, 50, 25)
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{-50, -25, -12.5}
	expectMax := [3]float64{50, 25, 12.5}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestRevolveFull(t *testing.T) {
	k := New(WithMeshCells(testCells))
	s, err := k.Revolve(square(0, 0, 20, 20), xzFrame, 360)
	if err != nil {
		t.Fatalf("Revolve failed: %v", err)
	}
	want := math.Pi * 20 * 20 * 20
	if v := volumeOf(t, k, s); !within(v, want, 0.01) {
		t.Fatalf("revolve volume = %f, want ~%f", v, want)
	}
	min, max := s.BoundingBox()
	if max[2]-min[2] < 19.9 || max[0] < 19.9 || min[1] > -19.9 {
		t.Fatalf("unexpected bounds %v %v", min, max)
	}
}

func TestRevolvePartialSweepsTowardsPositiveY(t *testing.T) {
	k := New(WithMeshCells(testCells))
	s, err := k.Revolve(square(0, 0, 20, 20), xzFrame, 90)
	if err != nil {
		t.Fatalf("Revolve failed: %v", err)
	}
	want := math.Pi * 20 * 20 * 20 / 4
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if v := m.Volume(); !within(v, want, 0.01) {
		t.Fatalf("quarter revolve volume = %f, want ~%f", v, want)
	}
	min, max := m.Bounds()
	if min[0] < -0.5 || min[1] < -0.5 || max[1] < 19 {
		t.Fatalf("quarter revolve should occupy +X/+Y, bounds %v %v", min, max)
	}
}

func TestRevolveRejectsBadAngle(t *testing.T) {
	k := New()
	for _, a := range []float64{0, -10, 361} {
		if _, err := k.Revolve(square(0, 0, 1, 1), xzFrame, a); err == nil {
			t.Errorf("Revolve(%v) expected error", a)
		}
	}
}

func TestExtrude(t *testing.T) {
	k := New(WithMeshCells(testCells))
	s, err := k.Extrude(circle(0, 0, 10, 180), xyFrame, 0, 20)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	want := math.Pi * 100 * 20
	if v := volumeOf(t, k, s); !within(v, want, 0.01) {
		t.Fatalf("extrude volume = %f, want ~%f", v, want)
	}
	min, max := s.BoundingBox()
	if math.Abs(min[2]) > 0.01 || math.Abs(max[2]-20) > 0.01 {
		t.Fatalf("extrude z range = [%f, %f], want [0, 20]", min[2], max[2])
	}
}

func TestExtrudeAlongWorkplaneNormal(t *testing.T) {
	k := New()
	// XZ normal is -Y.
	s, err := k.Extrude(square(0, 0, 5, 5), xzFrame, 0, 10)
	if err != nil {
		t.Fatalf("Extrude failed: %v", err)
	}
	min, max := s.BoundingBox()
	if math.Abs(min[1]+10) > 0.01 || math.Abs(max[1]) > 0.01 {
		t.Fatalf("extrude y range = [%f, %f], want [-10, 0]", min[1], max[1])
	}
}

func TestSweepFixedStraight(t *testing.T) {
	k := New(WithMeshCells(testCells))
	// Section in XY at z=0, path straight up the Z axis.
	path := [][3]float64{{0, 0, 0}, {0, 0, 15}, {0, 0, 30}}
	s, err := k.Sweep(square(-5, -5, 5, 5), xyFrame, path, true)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if v := volumeOf(t, k, s); !within(v, 3000, 0.01) {
		t.Fatalf("sweep volume = %f, want ~3000", v)
	}
}

func TestSweepFixedShearKeepsVolume(t *testing.T) {
	k := New(WithMeshCells(testCells))
	// A sheared prism has the volume of its upright twin.
	path := [][3]float64{{0, 0, 0}, {10, 0, 30}}
	s, err := k.Sweep(square(-5, -5, 5, 5), xyFrame, path, true)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if v := volumeOf(t, k, s); !within(v, 3000, 0.01) {
		t.Fatalf("sheared sweep volume = %f, want ~3000", v)
	}
}

func TestSweepPerpendicularBend(t *testing.T) {
	k := New(WithMeshCells(testCells))
	path := [][3]float64{{0, 0, 0}, {0, 0, 30}, {30, 0, 60}}
	s, err := k.Sweep(square(-5, -5, 5, 5), xyFrame, path, false)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	// Mitred joints preserve the centreline volume.
	want := 100 * (30 + 30*math.Sqrt2)
	if v := volumeOf(t, k, s); !within(v, want, 0.02) {
		t.Fatalf("bent sweep volume = %f, want ~%f", v, want)
	}
}

func TestSweepRejectsInPlanePath(t *testing.T) {
	k := New()
	path := [][3]float64{{0, 0, 0}, {10, 0, 0}}
	if _, err := k.Sweep(square(-5, -5, 5, 5), xyFrame, path, true); err == nil {
		t.Fatal("expected error for a path lying in the section plane")
	}
}

func TestDifference(t *testing.T) {
	k := New(WithMeshCells(testCells))

	box := k.Box(100, 100, 100)
	hole := k.Box(40, 40, 120)
	diff := k.Difference(box, hole)

	want := 1e6 - 40*40*100.0
	if v := volumeOf(t, k, diff); !within(v, want, 0.01) {
		t.Fatalf("difference volume = %f, want ~%f", v, want)
	}
}

func TestUnion(t *testing.T) {
	k := New(WithMeshCells(testCells))
	box1 := k.Box(50, 50, 50)
	box2 := k.Translate(k.Box(50, 50, 50), 30, 0, 0)
	u := k.Union(box1, box2)
	if v := volumeOf(t, k, u); !within(v, 80*50*50, 0.01) {
		t.Fatalf("union volume = %f, want ~%d", v, 80*50*50)
	}
}

func TestIntersection(t *testing.T) {
	k := New(WithMeshCells(testCells))
	box1 := k.Box(100, 100, 100)
	box2 := k.Translate(k.Box(100, 100, 100), 50, 0, 0)
	inter := k.Intersection(box1, box2)
	if v := volumeOf(t, k, inter); !within(v, 50*100*100, 0.01) {
		t.Fatalf("intersection volume = %f, want ~%d", v, 50*100*100)
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestRotateAxisBounds(t *testing.T) {
	k := New()
	box := k.Box(100, 10, 10)

	// A long box along X turned 90 degrees about Z extends along Y instead.
	rotated := k.RotateAxis(box, [3]float64{}, [3]float64{0, 0, 1}, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestRotateAxis(t *testing.T) {
	k := New(WithMeshCells(testCells))
	s, err := k.Revolve(square(10, 0, 20, 10), xzFrame, 90)
	if err != nil {
		t.Fatalf("Revolve failed: %v", err)
	}
	// Quarter ring in +X/+Y turned 180 degrees about Z lands in -X/-Y.
	r := k.RotateAxis(s, [3]float64{}, [3]float64{0, 0, 1}, 180)
	m, err := k.ToMesh(r)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	_, max := m.Bounds()
	if max[0] > 0.5 || max[1] > 0.5 {
		t.Fatalf("rotated quarter ring max = %v, want <= 0", max)
	}
}

func TestExportSTL(t *testing.T) {
	k := New()
	path := filepath.Join(t.TempDir(), "box.stl")
	if err := k.ExportSTL(k.Box(10, 10, 10), path, 20); err != nil {
		t.Fatalf("ExportSTL failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("stl file is empty")
	}
}
