package kernel

import (
	"math"
	"testing"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

// unitCube returns an unwelded cube mesh [0,s]^3 with 12 triangles.
func unitCube(s float32) *Mesh {
	corners := [8][3]float32{
		{0, 0, 0}, {s, 0, 0}, {s, s, 0}, {0, s, 0},
		{0, 0, s}, {s, 0, s}, {s, s, s}, {0, s, s},
	}
	faces := [12][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}
	m := &Mesh{}
	for i, f := range faces {
		for j, c := range f {
			p := corners[c]
			m.Vertices = append(m.Vertices, p[0], p[1], p[2])
			m.Normals = append(m.Normals, 0, 0, 0)
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m
}

func TestMeshVolume(t *testing.T) {
	m := unitCube(2)
	if got := m.Volume(); math.Abs(got-8) > 1e-9 {
		t.Fatalf("Volume() = %f, want 8", got)
	}
}

func TestMeshBounds(t *testing.T) {
	min, max := unitCube(3).Bounds()
	if min != [3]float64{0, 0, 0} || max != [3]float64{3, 3, 3} {
		t.Fatalf("Bounds() = %v %v, want [0 0 0] [3 3 3]", min, max)
	}
}

func TestMeshWeld(t *testing.T) {
	m := unitCube(1)
	w := m.Weld(1e-6)
	if w.VertexCount() != 8 {
		t.Errorf("welded vertex count = %d, want 8", w.VertexCount())
	}
	if w.TriangleCount() != 12 {
		t.Errorf("welded triangle count = %d, want 12", w.TriangleCount())
	}
	if len(w.Normals) != len(w.Vertices) {
		t.Errorf("normals length %d != vertices length %d", len(w.Normals), len(w.Vertices))
	}
	if math.Abs(w.Volume()-1) > 1e-9 {
		t.Errorf("welded volume = %f, want 1", w.Volume())
	}
}

func TestMeshAppend(t *testing.T) {
	a := unitCube(1)
	b := unitCube(1)
	a.Append(b)
	if a.TriangleCount() != 24 {
		t.Fatalf("TriangleCount() = %d, want 24", a.TriangleCount())
	}
	if a.Indices[len(a.Indices)-1] != 71 {
		t.Fatalf("last index = %d, want 71", a.Indices[len(a.Indices)-1])
	}
}

func TestFrameToWorld(t *testing.T) {
	// XZ workplane: u along X, v along Z, normal along -Y.
	f := NewFrame([3]float64{}, [3]float64{1, 0, 0}, [3]float64{0, 0, 1})
	if f.N != [3]float64{0, -1, 0} {
		t.Fatalf("N = %v, want [0 -1 0]", f.N)
	}
	got := f.ToWorld(2, 3, 4)
	if got != [3]float64{2, -4, 3} {
		t.Fatalf("ToWorld = %v, want [2 -4 3]", got)
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{-x / 2, -y / 2, -z / 2},
		maxBB: [3]float64{x / 2, y / 2, z / 2},
	}
}

func (k *stubKernel) Revolve(_ Polygon, _ Frame, _ float64) (Solid, error) {
	return &stubSolid{}, nil
}
func (k *stubKernel) Extrude(_ Polygon, _ Frame, _, _ float64) (Solid, error) {
	return &stubSolid{}, nil
}
func (k *stubKernel) Sweep(_ Polygon, _ Frame, _ [][3]float64, _ bool) (Solid, error) {
	return &stubSolid{}, nil
}

func (k *stubKernel) Union(a, _ Solid) Solid        { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid   { return a }
func (k *stubKernel) Intersection(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid             { return s }
func (k *stubKernel) RotateAxis(s Solid, _, _ [3]float64, _ float64) Solid { return s }
func (k *stubKernel) ToMeshCells(_ Solid, _ int) (*Mesh, error)            { return &Mesh{}, nil }
func (k *stubKernel) ExportSTL(_ Solid, _ string, _ int) error             { return nil }
func (k *stubKernel) ExportMeshSTL(_ *Mesh, _ string) error                { return nil }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{-5, -10, -15} {
		t.Errorf("Box min = %v, want [-5 -10 -15]", min)
	}
	if max != [3]float64{5, 10, 15} {
		t.Errorf("Box max = %v, want [5 10 15]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(1, 1, 1)
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
