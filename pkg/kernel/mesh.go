package kernel

// Mesh is a triangle mesh produced by a kernel or read from a file.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // body name the mesh was tessellated from
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

// Triangle returns the three vertex positions of triangle i.
func (m *Mesh) Triangle(i int) [3][3]float32 {
	var tri [3][3]float32
	for j := 0; j < 3; j++ {
		v := m.Indices[i*3+j]
		tri[j] = [3]float32{m.Vertices[v*3], m.Vertices[v*3+1], m.Vertices[v*3+2]}
	}
	return tri
}
