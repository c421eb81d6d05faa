// Package mesh reads triangle meshes and exposes the vertices, triangles
// and edges a frame is built from. A Mesh is never mutated by readers of
// it; transformations return copies.
package mesh

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrIndexOutOfRange reports malformed mesh topology.
var ErrIndexOutOfRange = errors.New("index out of range")

// Mesh is an indexed triangle mesh. Indices is a flat buffer holding
// three 0-based vertex indices per triangle.
type Mesh struct {
	Vertices []r3.Vec
	Indices  []int
}

// Triangle holds the vertex indices of one face.
type Triangle [3]int

// EdgeKey is an unordered vertex pair with A < B.
type EdgeKey struct {
	A, B int
}

// NewEdgeKey orders the pair.
func NewEdgeKey(a, b int) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{A: a, B: b}
}

func (e EdgeKey) String() string {
	return fmt.Sprintf("{%d,%d}", e.A, e.B)
}

// DirectedEdge is an ordered vertex pair.
type DirectedEdge struct {
	From, To int
}

// Key returns the undirected key of the edge.
func (d DirectedEdge) Key() EdgeKey {
	return NewEdgeKey(d.From, d.To)
}

func (d DirectedEdge) String() string {
	return fmt.Sprintf("%d->%d", d.From, d.To)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of complete triangles in the index buffer.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexAt returns the coordinates of vertex idx.
func (m *Mesh) VertexAt(idx int) (r3.Vec, error) {
	if idx < 0 || idx >= len(m.Vertices) {
		return r3.Vec{}, fmt.Errorf("%w: vertex %d, mesh has %d vertices", ErrIndexOutOfRange, idx, len(m.Vertices))
	}
	return m.Vertices[idx], nil
}

// Triangles reads the index buffer in groups of three, preserving order.
// Every index is checked against the vertex count.
func (m *Mesh) Triangles() ([]Triangle, error) {
	if len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index buffer length %d is not a multiple of 3", ErrIndexOutOfRange, len(m.Indices))
	}

	tris := make([]Triangle, 0, len(m.Indices)/3)
	for i := 0; i < len(m.Indices); i += 3 {
		tri := Triangle{m.Indices[i], m.Indices[i+1], m.Indices[i+2]}
		for _, idx := range tri {
			if idx < 0 || idx >= len(m.Vertices) {
				return nil, fmt.Errorf("%w: triangle %d references vertex %d, mesh has %d vertices",
					ErrIndexOutOfRange, i/3, idx, len(m.Vertices))
			}
		}
		tris = append(tris, tri)
	}
	return tris, nil
}

// Edges returns the unique undirected edges in first-seen order.
func (m *Mesh) Edges() ([]EdgeKey, error) {
	tris, err := m.Triangles()
	if err != nil {
		return nil, err
	}

	seen := make(map[EdgeKey]struct{})
	var edges []EdgeKey
	for _, t := range tris {
		for _, e := range [3]EdgeKey{NewEdgeKey(t[0], t[1]), NewEdgeKey(t[0], t[2]), NewEdgeKey(t[1], t[2])} {
			if e.A == e.B {
				continue
			}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}
	return edges, nil
}

// ReferencedVertices returns, sorted, the indices of vertices used by at
// least one triangle.
func (m *Mesh) ReferencedVertices() ([]int, error) {
	tris, err := m.Triangles()
	if err != nil {
		return nil, err
	}

	used := make(map[int]struct{})
	for _, t := range tris {
		for _, idx := range t {
			used[idx] = struct{}{}
		}
	}
	out := make([]int, 0, len(used))
	for idx := range used {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out, nil
}

// Scaled returns a copy with every coordinate multiplied by f.
func (m *Mesh) Scaled(f float64) *Mesh {
	out := &Mesh{
		Vertices: make([]r3.Vec, len(m.Vertices)),
		Indices:  append([]int(nil), m.Indices...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = r3.Scale(f, v)
	}
	return out
}
