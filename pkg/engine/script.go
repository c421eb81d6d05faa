package engine

import (
	"fmt"

	"github.com/chazu/framegen/pkg/mesh"
	"github.com/chazu/framegen/pkg/params"
)

// Script is what a frame script declared: a mesh in MeshUnits and a
// parameter source carrying its own units.
type Script struct {
	Mesh      *mesh.Mesh
	Params    params.Source
	MeshUnits string

	// HasParams reports whether the script called (parameters ...).
	HasParams bool
}

func newScript() *Script {
	return &Script{Mesh: &mesh.Mesh{}, MeshUnits: params.UnitCentimetre}
}

// NormalizedMesh returns the script's mesh scaled to centimetres.
func (s *Script) NormalizedMesh() (*mesh.Mesh, error) {
	f, err := params.UnitScale(s.MeshUnits)
	if err != nil {
		return nil, fmt.Errorf("engine: mesh units: %w", err)
	}
	return s.Mesh.Scaled(f), nil
}
