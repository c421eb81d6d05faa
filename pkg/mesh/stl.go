package mesh

import (
	"fmt"
	"io"

	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadSTL reads an ASCII or binary STL file.
func ReadSTL(path string) (*Mesh, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: read stl %s: %w", path, err)
	}
	return fromSTL(solid), nil
}

// DecodeSTL reads an ASCII or binary STL stream. The reader must seek:
// the format is detected from the header before decoding.
func DecodeSTL(r io.ReadSeeker) (*Mesh, error) {
	solid, err := stl.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("mesh: decode stl: %w", err)
	}
	return fromSTL(solid), nil
}

// fromSTL merges bitwise-equal corners into shared vertices, numbered in
// the order they are first seen. STL stores every triangle corner
// separately, so without this no two triangles would share an edge.
func fromSTL(solid *stl.Solid) *Mesh {
	index := make(map[stl.Vec3]int)
	m := &Mesh{Indices: make([]int, 0, len(solid.Triangles)*3)}

	for _, tri := range solid.Triangles {
		for _, v := range tri.Vertices {
			idx, ok := index[v]
			if !ok {
				idx = len(m.Vertices)
				index[v] = idx
				m.Vertices = append(m.Vertices, r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
			}
			m.Indices = append(m.Indices, idx)
		}
	}
	return m
}
