//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold provides
// guaranteed-manifold mesh boolean operations with face identity tracking.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/framegen/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel. Returns an error if the Manifold
// C library cannot be initialized.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// Sphere creates a sphere centered at the origin, approximated with the
// given number of circular segments.
func (k *ManifoldKernel) Sphere(radius float64, segments int) (kernel.Solid, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("manifold: sphere radius %f must be positive", radius)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_sphere(alloc, C.double(radius), C.int(segments))
	return newSolid(ptr), nil
}

// Cylinder creates a cylinder along the Z axis with the given height,
// end radii, and number of circular segments. The cylinder is centered
// at the origin.
func (k *ManifoldKernel) Cylinder(height, radiusLow, radiusHigh float64, segments int) (kernel.Solid, error) {
	if height <= 0 || radiusLow <= 0 || radiusHigh < 0 {
		return nil, fmt.Errorf("manifold: invalid cylinder height=%f radius=%f/%f", height, radiusLow, radiusHigh)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(radiusLow),
		C.double(radiusHigh),
		C.int(segments),
		C.int(1), // center=true
	)
	return newSolid(ptr), nil
}

// Union returns the boolean union of two solids.
func (k *ManifoldKernel) Union(a, b kernel.Solid) kernel.Solid {
	sa := a.(*manifoldSolid)
	sb := b.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_union(alloc, sa.ptr, sb.ptr)
	return newSolid(ptr)
}

// Difference returns the boolean difference (a minus b).
func (k *ManifoldKernel) Difference(a, b kernel.Solid) kernel.Solid {
	sa := a.(*manifoldSolid)
	sb := b.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_difference(alloc, sa.ptr, sb.ptr)
	return newSolid(ptr)
}

// Translate moves the solid by (x, y, z).
func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ms := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// Rotate rotates the solid by Euler angles (in degrees), X first, then Y, then Z.
func (k *ManifoldKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ms := s.(*manifoldSolid)
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_rotate(alloc, ms.ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// ToMesh extracts a triangle mesh from the solid's MeshGL. MeshGL
// interleaves numProp floats per vertex: position first, then normals
// when present.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	ms := s.(*manifoldSolid)

	gl := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), ms.ptr)
	defer C.manifold_delete_meshgl(gl)

	numVert := int(C.manifold_meshgl_num_vert(gl))
	numTri := int(C.manifold_meshgl_num_tri(gl))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}
	numProp := int(C.manifold_meshgl_num_prop(gl))

	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&props[0])), gl)
	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&indices[0])), gl)

	m := &kernel.Mesh{
		Vertices: strided(props, numProp, 0),
		Indices:  indices,
	}
	if numProp >= 6 {
		m.Normals = strided(props, numProp, 3)
	} else {
		m.Normals = computeFlatNormals(m.Vertices, indices)
	}
	if m.VertexCount() != numVert {
		return nil, fmt.Errorf("manifold: vertex count mismatch: got %d, expected %d", m.VertexCount(), numVert)
	}
	return m, nil
}

// strided copies three floats starting at offset from every stride-wide
// record of props.
func strided(props []float32, stride, offset int) []float32 {
	n := len(props) / stride
	out := make([]float32, 0, n*3)
	for i := 0; i < n; i++ {
		base := i*stride + offset
		out = append(out, props[base], props[base+1], props[base+2])
	}
	return out
}

// computeFlatNormals averages the face normals of the triangles around
// each vertex. Used when MeshGL carries positions only.
func computeFlatNormals(vertices []float32, indices []uint32) []float32 {
	at := func(i uint32) r3.Vec {
		return r3.Vec{X: float64(vertices[i*3]), Y: float64(vertices[i*3+1]), Z: float64(vertices[i*3+2])}
	}

	acc := make([]r3.Vec, len(vertices)/3)
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		a := at(i0)
		n := r3.Cross(r3.Sub(at(i1), a), r3.Sub(at(i2), a))
		acc[i0] = r3.Add(acc[i0], n)
		acc[i1] = r3.Add(acc[i1], n)
		acc[i2] = r3.Add(acc[i2], n)
	}

	normals := make([]float32, len(vertices))
	for i, n := range acc {
		if r3.Norm(n) < 1e-12 {
			continue
		}
		n = r3.Unit(n)
		normals[i*3+0] = float32(n.X)
		normals[i*3+1] = float32(n.Y)
		normals[i*3+2] = float32(n.Z)
	}
	return normals
}
