// Package export writes generated frames to disk: STL meshes for printing
// and a YAML cut list for assembly.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/chazu/framegen/pkg/kernel"
	"github.com/chazu/framegen/pkg/solid"
	"github.com/chazu/framegen/pkg/tessellate"
	"github.com/hschendel/stl"
	"gonum.org/v1/gonum/spatial/r3"
)

// STL converts meshes to a single STL solid named name.
func STL(name string, meshes ...*kernel.Mesh) *stl.Solid {
	s := &stl.Solid{Name: name}
	for _, m := range meshes {
		for i := 0; i < m.TriangleCount(); i++ {
			tri := m.Triangle(i)
			t := stl.Triangle{}
			for j, v := range tri {
				t.Vertices[j] = stl.Vec3{v[0], v[1], v[2]}
			}
			t.Normal = faceNormal(tri)
			s.Triangles = append(s.Triangles, t)
		}
	}
	return s
}

func faceNormal(tri [3][3]float32) stl.Vec3 {
	vec := func(v [3]float32) r3.Vec {
		return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
	}
	a, b, c := vec(tri[0]), vec(tri[1]), vec(tri[2])
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if r3.Norm(n) == 0 {
		return stl.Vec3{}
	}
	n = r3.Unit(n)
	return stl.Vec3{float32(n.X), float32(n.Y), float32(n.Z)}
}

// WriteSTL writes meshes as one STL solid, ASCII or binary.
func WriteSTL(w io.Writer, name string, ascii bool, meshes ...*kernel.Mesh) error {
	s := STL(name, meshes...)
	s.IsAscii = ascii
	if err := s.WriteAll(w); err != nil {
		return fmt.Errorf("export: write stl %q: %w", name, err)
	}
	return nil
}

// Layout selects how parts are split across output files.
type Layout string

const (
	// PerPart writes one file per body.
	PerPart Layout = "part"
	// PerCollection writes one file per collection (connectors, rods).
	PerCollection Layout = "collection"
)

// meshFile is one output file: a name and the meshes it holds.
type meshFile struct {
	name   string
	meshes []*kernel.Mesh
}

// group splits parts into output files according to layout.
func group(parts []tessellate.Part, layout Layout) ([]meshFile, error) {
	var files []meshFile
	switch layout {
	case PerPart:
		for _, p := range parts {
			files = append(files, meshFile{name: p.Name(), meshes: []*kernel.Mesh{p.Mesh}})
		}
	case PerCollection, "":
		byCollection := tessellate.Split(parts)
		seen := make(map[solid.Collection]bool)
		for _, p := range parts {
			if seen[p.Collection] {
				continue
			}
			seen[p.Collection] = true
			files = append(files, meshFile{name: string(p.Collection), meshes: byCollection[p.Collection]})
		}
	default:
		return nil, fmt.Errorf("export: unknown layout %q", layout)
	}
	return files, nil
}

// WriteSTLFiles writes parts into dir and returns the paths written.
func WriteSTLFiles(dir string, parts []tessellate.Part, layout Layout, ascii bool) ([]string, error) {
	return writeFiles(dir, parts, layout, ".stl", func(path string, f meshFile) error {
		return writeSTLFile(path, f.name, ascii, f.meshes)
	})
}

func writeFiles(dir string, parts []tessellate.Part, layout Layout, ext string, write func(string, meshFile) error) ([]string, error) {
	files, err := group(parts, layout)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, Slug(f.name)+ext)
		if err := write(path, f); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeSTLFile(path, name string, ascii bool, meshes []*kernel.Mesh) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := WriteSTL(out, name, ascii, meshes...); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Slug turns a body name into a file name: "Rod 3 - 9.2 cm" becomes
// "rod-3-9-2-cm".
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
