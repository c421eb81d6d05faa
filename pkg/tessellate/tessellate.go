// Package tessellate walks the output collections of a frame workspace
// and produces one triangle mesh per body.
package tessellate

import (
	"fmt"

	"github.com/chazu/framegen/pkg/kernel"
	"github.com/chazu/framegen/pkg/solid"
)

// Source is the body store the tessellator reads. *solid.Workspace
// satisfies it.
type Source interface {
	Bodies(c solid.Collection) []solid.Body
	ToMesh(h solid.Handle) (*kernel.Mesh, error)
}

// Part is one tessellated body.
type Part struct {
	Collection solid.Collection
	Mesh       *kernel.Mesh
}

// Name returns the body name carried by the mesh.
func (p Part) Name() string { return p.Mesh.PartName }

// Tessellate meshes every body of the given collections, in collection
// order then creation order. With no collections it meshes connectors
// then rods. The tessellator is read-only and never mutates the source.
func Tessellate(src Source, collections ...solid.Collection) ([]Part, error) {
	if src == nil {
		return nil, nil
	}
	if len(collections) == 0 {
		collections = []solid.Collection{solid.Connectors, solid.Rods}
	}

	var parts []Part
	for _, c := range collections {
		for _, b := range src.Bodies(c) {
			m, err := src.ToMesh(b.Handle)
			if err != nil {
				return nil, fmt.Errorf("tessellate: %s %q: %w", c, b.Name, err)
			}
			if m.IsEmpty() {
				return nil, fmt.Errorf("tessellate: %s %q produced an empty mesh", c, b.Name)
			}
			parts = append(parts, Part{Collection: c, Mesh: m})
		}
	}
	return parts, nil
}

// Split groups parts by collection, keeping order.
func Split(parts []Part) map[solid.Collection][]*kernel.Mesh {
	out := make(map[solid.Collection][]*kernel.Mesh)
	for _, p := range parts {
		out[p.Collection] = append(out[p.Collection], p.Mesh)
	}
	return out
}
