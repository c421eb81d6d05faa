package export

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/framegen/pkg/kernel"
	"github.com/chazu/framegen/pkg/mesh"
	"github.com/chazu/framegen/pkg/tessellate"
)

// OBJ merges meshes into one indexed mesh, offsetting each mesh's
// indices past the vertices already written.
func OBJ(meshes ...*kernel.Mesh) (*mesh.Mesh, error) {
	out := &mesh.Mesh{}
	for _, km := range meshes {
		m, err := mesh.FromKernelMesh(km)
		if err != nil {
			return nil, fmt.Errorf("export: obj %q: %w", km.PartName, err)
		}
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out, nil
}

// WriteOBJ writes meshes as a single OBJ object.
func WriteOBJ(w io.Writer, meshes ...*kernel.Mesh) error {
	m, err := OBJ(meshes...)
	if err != nil {
		return err
	}
	if err := mesh.WriteOBJ(w, m); err != nil {
		return fmt.Errorf("export: write obj: %w", err)
	}
	return nil
}

// WriteOBJFiles writes parts into dir as OBJ files and returns the paths
// written.
func WriteOBJFiles(dir string, parts []tessellate.Part, layout Layout) ([]string, error) {
	return writeFiles(dir, parts, layout, ".obj", func(path string, f meshFile) error {
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := WriteOBJ(out, f.meshes...); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}
