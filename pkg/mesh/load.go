package mesh

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/framegen/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Load reads a mesh file, choosing the format from the extension.
func Load(path string) (*Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return ReadSTL(path)
	case ".obj":
		return ReadOBJ(path)
	}
	return nil, fmt.Errorf("mesh: unsupported file type %q (want .stl or .obj)", filepath.Ext(path))
}

// FromKernelMesh converts a flat kernel mesh. Vertices are not merged;
// kernel meshes that repeat corners per triangle yield no shared edges.
func FromKernelMesh(km *kernel.Mesh) (*Mesh, error) {
	if len(km.Vertices)%3 != 0 {
		return nil, fmt.Errorf("%w: vertex buffer length %d is not a multiple of 3", ErrIndexOutOfRange, len(km.Vertices))
	}

	m := &Mesh{
		Vertices: make([]r3.Vec, km.VertexCount()),
		Indices:  make([]int, len(km.Indices)),
	}
	for i := range m.Vertices {
		m.Vertices[i] = r3.Vec{
			X: float64(km.Vertices[i*3]),
			Y: float64(km.Vertices[i*3+1]),
			Z: float64(km.Vertices[i*3+2]),
		}
	}
	for i, idx := range km.Indices {
		m.Indices[i] = int(idx)
	}
	if _, err := m.Triangles(); err != nil {
		return nil, err
	}
	return m, nil
}
