package kernel

import "math"

// Mesh is a triangle mesh suitable for rendering and export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which shape this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i in float64.
func (m *Mesh) Vertex(i uint32) [3]float64 {
	return [3]float64{float64(m.Vertices[3*i]), float64(m.Vertices[3*i+1]), float64(m.Vertices[3*i+2])}
}

// Triangle returns the corners of triangle t.
func (m *Mesh) Triangle(t int) [3][3]float64 {
	return [3][3]float64{m.Vertex(m.Indices[3*t]), m.Vertex(m.Indices[3*t+1]), m.Vertex(m.Indices[3*t+2])}
}

// Volume returns the enclosed volume by the divergence theorem. The mesh
// must be closed; orientation does not matter.
func (m *Mesh) Volume() float64 {
	var v float64
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		v += Dot(tri[0], Cross(tri[1], tri[2]))
	}
	return math.Abs(v / 6)
}

// Bounds returns the axis-aligned bounds of the vertices.
func (m *Mesh) Bounds() (min, max [3]float64) {
	min = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i := 0; i < m.VertexCount(); i++ {
		p := m.Vertex(uint32(i))
		for k := 0; k < 3; k++ {
			min[k] = math.Min(min[k], p[k])
			max[k] = math.Max(max[k], p[k])
		}
	}
	return min, max
}

// Weld merges vertices closer than tol and drops triangles that collapse.
// Normals are recomputed per face and averaged per vertex.
func (m *Mesh) Weld(tol float64) *Mesh {
	if tol <= 0 {
		tol = 1e-6
	}
	type key [3]int64
	quant := func(p [3]float64) key {
		return key{int64(math.Round(p[0] / tol)), int64(math.Round(p[1] / tol)), int64(math.Round(p[2] / tol))}
	}
	out := &Mesh{PartName: m.PartName}
	index := make(map[key]uint32, m.VertexCount()/2)
	var normals [][3]float64
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		var ids [3]uint32
		for j, p := range tri {
			k := quant(p)
			id, ok := index[k]
			if !ok {
				id = uint32(len(out.Vertices) / 3)
				index[k] = id
				out.Vertices = append(out.Vertices, float32(p[0]), float32(p[1]), float32(p[2]))
				normals = append(normals, [3]float64{})
			}
			ids[j] = id
		}
		if ids[0] == ids[1] || ids[1] == ids[2] || ids[0] == ids[2] {
			continue
		}
		n := Cross(Sub(tri[1], tri[0]), Sub(tri[2], tri[0]))
		for _, id := range ids {
			normals[id] = Add(normals[id], n)
		}
		out.Indices = append(out.Indices, ids[0], ids[1], ids[2])
	}
	out.Normals = make([]float32, 0, len(out.Vertices))
	for _, n := range normals {
		n = Normalize(n)
		out.Normals = append(out.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
	return out
}

// Append adds the triangles of o to m.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}
