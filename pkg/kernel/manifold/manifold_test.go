//go:build manifold

package manifold

import (
	"math"
	"testing"

	"github.com/chazu/framegen/pkg/kernel"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func TestSphere(t *testing.T) {
	k := mustNew(t)
	s, err := k.Sphere(5, 64)
	if err != nil {
		t.Fatalf("Sphere() error = %v", err)
	}
	min, max := s.BoundingBox()

	// Polygonal approximation stays within the true radius.
	for i := 0; i < 3; i++ {
		if min[i] < -5.01 || min[i] > -4.5 {
			t.Errorf("Sphere min[%d] = %f, want ~-5", i, min[i])
		}
		if max[i] > 5.01 || max[i] < 4.5 {
			t.Errorf("Sphere max[%d] = %f, want ~5", i, max[i])
		}
	}
}

func TestCylinder(t *testing.T) {
	k := mustNew(t)
	s, err := k.Cylinder(20, 5, 5, 32)
	if err != nil {
		t.Fatalf("Cylinder() error = %v", err)
	}
	min, max := s.BoundingBox()

	if min[2] < -10.01 || min[2] > -9.99 {
		t.Errorf("Cylinder min Z = %f, want ~-10", min[2])
	}
	if max[2] < 9.99 || max[2] > 10.01 {
		t.Errorf("Cylinder max Z = %f, want ~10", max[2])
	}
	for i := 0; i < 2; i++ {
		if min[i] > -4.5 {
			t.Errorf("Cylinder min[%d] = %f, want <= -4.5", i, min[i])
		}
		if max[i] < 4.5 {
			t.Errorf("Cylinder max[%d] = %f, want >= 4.5", i, max[i])
		}
	}
}

func TestCylinderRejectsZeroHeight(t *testing.T) {
	k := mustNew(t)
	if _, err := k.Cylinder(0, 1, 1, 32); err == nil {
		t.Fatal("Cylinder(0, ...) error = nil, want error")
	}
}

func TestDifferenceKeepsOuterBounds(t *testing.T) {
	k := mustNew(t)
	ball, _ := k.Sphere(5, 64)
	hole, _ := k.Cylinder(4, 1, 1, 32)
	result := k.Difference(ball, hole)

	min, max := result.BoundingBox()
	wantMin, wantMax := ball.BoundingBox()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > 1e-6 || math.Abs(max[i]-wantMax[i]) > 1e-6 {
			t.Errorf("Difference axis %d = [%f, %f], want [%f, %f]", i, min[i], max[i], wantMin[i], wantMax[i])
		}
	}
}

func TestRotateThenTranslate(t *testing.T) {
	k := mustNew(t)
	cyl, _ := k.Cylinder(20, 1, 1, 32)
	moved := k.Translate(k.Rotate(cyl, 0, 90, 0), 100, 0, 0)

	min, max := moved.BoundingBox()
	if math.Abs(min[0]-90) > 1e-3 || math.Abs(max[0]-110) > 1e-3 {
		t.Errorf("X bounds = [%f, %f], want [90, 110]", min[0], max[0])
	}
}

func TestToMesh(t *testing.T) {
	k := mustNew(t)
	ball, _ := k.Sphere(5, 32)
	mesh, err := k.ToMesh(ball)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("ToMesh() returned empty mesh for a sphere")
	}
	if len(mesh.Normals) != len(mesh.Vertices) {
		t.Errorf("ToMesh() normals length = %d, vertices length = %d, want equal",
			len(mesh.Normals), len(mesh.Vertices))
	}
}

func TestComputeFlatNormals(t *testing.T) {
	// Single CCW triangle in the XY plane.
	vertices := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := computeFlatNormals(vertices, []uint32{0, 1, 2})
	for i := 0; i < 3; i++ {
		if normals[i*3+2] != 1 {
			t.Errorf("vertex %d normal = %v, want +Z", i, normals[i*3:i*3+3])
		}
	}
}
