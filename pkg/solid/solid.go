// Package solid defines the handle-based solid kernel the frame builder
// talks to: primitive creation, boolean combine with tool retention,
// deletion, naming, and the two output collections.
package solid

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrKernelOperationFailed wraps any failure of a create, combine or
	// collection call.
	ErrKernelOperationFailed = errors.New("kernel operation failed")

	// ErrDegenerateGeometry reports a zero-length cylinder axis.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// Handle identifies a body in a kernel. The zero Handle is never issued.
type Handle uint64

// Collection names an output body collection.
type Collection string

const (
	Connectors Collection = "connectors"
	Rods       Collection = "rods"
)

func (c Collection) valid() bool {
	return c == Connectors || c == Rods
}

// Kernel is the capability set the frame builder needs. Calls are
// synchronous and either succeed or fail without side effects.
type Kernel interface {
	CreateSphere(center r3.Vec, radius float64) (Handle, error)
	CreateCylinder(start r3.Vec, radiusStart float64, end r3.Vec, radiusEnd float64) (Handle, error)

	// Union adds tools into target and returns target. Unless keepTools
	// is set the tools are deleted.
	Union(target Handle, tools []Handle, keepTools bool) (Handle, error)
	// Subtract removes tools from target and returns target. Unless
	// keepTools is set the tools are deleted.
	Subtract(target Handle, tools []Handle, keepTools bool) (Handle, error)

	// Delete discards a body. Unknown or already deleted handles are ignored.
	Delete(h Handle)

	AddToCollection(c Collection, h Handle) (Handle, error)
	Rename(h Handle, name string) error
}

// Segment is an oriented axis.
type Segment struct {
	Start r3.Vec
	End   r3.Vec
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return r3.Norm(r3.Sub(s.End, s.Start))
}

// Direction returns the unit vector from Start to End.
func (s Segment) Direction() (r3.Vec, error) {
	d := r3.Sub(s.End, s.Start)
	if r3.Norm(d) < Epsilon {
		return r3.Vec{}, fmt.Errorf("%w: zero-length axis at %v", ErrDegenerateGeometry, s.Start)
	}
	return r3.Unit(d), nil
}

// Along returns the segment starting at distance from and ending at
// distance to, measured from s.Start along s's direction.
func (s Segment) Along(from, to float64) (Segment, error) {
	dir, err := s.Direction()
	if err != nil {
		return Segment{}, err
	}
	return Segment{
		Start: r3.Add(s.Start, r3.Scale(from, dir)),
		End:   r3.Add(s.Start, r3.Scale(to, dir)),
	}, nil
}

// Epsilon is the shortest axis a cylinder may have.
const Epsilon = 1e-9
