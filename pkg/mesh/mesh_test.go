package mesh

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/framegen/pkg/kernel"
	"github.com/hschendel/stl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// square is a 10x10 square split along the 0-2 diagonal.
func square() *Mesh {
	return &Mesh{
		Vertices: []r3.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		Indices:  []int{0, 1, 2, 0, 2, 3},
	}
}

func TestTrianglesPreserveOrder(t *testing.T) {
	tris, err := square().Triangles()
	require.NoError(t, err)
	assert.Equal(t, []Triangle{{0, 1, 2}, {0, 2, 3}}, tris)
}

func TestTrianglesRejectsPartialTriangle(t *testing.T) {
	m := square()
	m.Indices = append(m.Indices, 1)
	_, err := m.Triangles()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	assert.Contains(t, err.Error(), "multiple of 3")
}

func TestTrianglesRejectsBadIndex(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		want    string
	}{
		{"too large", []int{0, 1, 4}, "triangle 0 references vertex 4"},
		{"negative", []int{0, 1, 2, 0, -1, 3}, "triangle 1 references vertex -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := square()
			m.Indices = tt.indices
			_, err := m.Triangles()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIndexOutOfRange))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVertexAt(t *testing.T) {
	m := square()
	v, err := m.VertexAt(2)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{X: 10, Y: 10}, v)

	_, err = m.VertexAt(4)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = m.VertexAt(-1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestEdgesAreUniqueAndUndirected(t *testing.T) {
	edges, err := square().Edges()
	require.NoError(t, err)
	// The shared diagonal {0,2} appears once.
	assert.Equal(t, []EdgeKey{{0, 1}, {0, 2}, {1, 2}, {0, 3}, {2, 3}}, edges)
}

func TestEdgeKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, NewEdgeKey(3, 1), NewEdgeKey(1, 3))
	assert.Equal(t, EdgeKey{A: 1, B: 3}, DirectedEdge{From: 3, To: 1}.Key())
	assert.Equal(t, "{1,3}", NewEdgeKey(3, 1).String())
	assert.Equal(t, "3->1", DirectedEdge{From: 3, To: 1}.String())
}

func TestReferencedVertices(t *testing.T) {
	m := square()
	m.Vertices = append(m.Vertices, r3.Vec{X: 99})
	used, err := m.ReferencedVertices()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, used)
}

func TestScaledCopies(t *testing.T) {
	m := square()
	s := m.Scaled(0.1)
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, s.Vertices[2])
	assert.Equal(t, r3.Vec{X: 10, Y: 10}, m.Vertices[2], "source mesh must not change")
	s.Indices[0] = 3
	assert.Equal(t, 0, m.Indices[0])
}

func TestDecodeSTLMergesCorners(t *testing.T) {
	solid := &stl.Solid{
		Name: "square",
		Triangles: []stl.Triangle{
			{Vertices: [3]stl.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}}},
			{Vertices: [3]stl.Vec3{{0, 0, 0}, {10, 10, 0}, {0, 10, 0}}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, solid.WriteAll(&buf))

	m, err := DecodeSTL(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, []int{0, 1, 2, 0, 2, 3}, m.Indices)

	edges, err := m.Edges()
	require.NoError(t, err)
	assert.Len(t, edges, 5)
}

func TestDecodeOBJ(t *testing.T) {
	src := `
# a quad and a triangle using relative indices
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
v 0 0 1
f -1 -5 -4
`
	m, err := DecodeOBJ(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 5, m.VertexCount())
	assert.Equal(t, []int{0, 1, 2, 0, 2, 3, 4, 0, 1}, m.Indices)
}

func TestDecodeOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"short vertex", "v 1 2\n", "line 1"},
		{"bad coordinate", "v 1 x 2\n", "vertex coordinate"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", "index 0"},
		{"forward reference", "v 0 0 0\nf 1 2 3\n", "face index 2"},
		{"short face", "v 0 0 0\nf 1 1\n", "at least 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOBJ(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWriteOBJRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, square()))

	m, err := DecodeOBJ(&buf)
	require.NoError(t, err)
	assert.Equal(t, square(), m)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "square.OBJ")
	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, square()))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.TriangleCount())

	_, err = Load(filepath.Join(dir, "model.ply"))
	assert.Error(t, err)
}

func TestFromKernelMesh(t *testing.T) {
	km := &kernel.Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2},
	}
	m, err := FromKernelMesh(km)
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{}, {X: 1}, {Y: 1}}, m.Vertices)
	assert.Equal(t, []int{0, 1, 2}, m.Indices)

	km.Indices = []uint32{0, 1, 7}
	_, err = FromKernelMesh(km)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}
