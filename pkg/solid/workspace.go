package solid

import (
	"fmt"
	"math"

	"github.com/chazu/framegen/pkg/kernel"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compile-time interface check.
var _ Kernel = (*Workspace)(nil)

// DefaultSegments is the circular resolution requested from polygonal kernels.
const DefaultSegments = 48

// Body is a live solid in a Workspace.
type Body struct {
	Handle     Handle
	Name       string
	Collection Collection
	Solid      kernel.Solid
}

// Workspace implements Kernel on top of a geometry kernel.Kernel. It
// owns every body created through it. A Workspace is not safe for
// concurrent use.
type Workspace struct {
	k        kernel.Kernel
	segments int
	next     Handle
	bodies   map[Handle]*Body
	order    []Handle
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithSegments sets the circular resolution for polygonal kernels.
func WithSegments(n int) Option {
	return func(w *Workspace) {
		if n > 2 {
			w.segments = n
		}
	}
}

// NewWorkspace returns an empty workspace over k.
func NewWorkspace(k kernel.Kernel, opts ...Option) *Workspace {
	w := &Workspace{
		k:        k,
		segments: DefaultSegments,
		bodies:   make(map[Handle]*Body),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Workspace) add(s kernel.Solid) Handle {
	w.next++
	h := w.next
	w.bodies[h] = &Body{Handle: h, Solid: s}
	w.order = append(w.order, h)
	return h
}

func (w *Workspace) get(h Handle) (*Body, error) {
	b, ok := w.bodies[h]
	if !ok {
		return nil, fmt.Errorf("%w: no live body %d", ErrKernelOperationFailed, h)
	}
	return b, nil
}

// CreateSphere creates a sphere centered at center.
func (w *Workspace) CreateSphere(center r3.Vec, radius float64) (Handle, error) {
	s, err := w.k.Sphere(radius, w.segments)
	if err != nil {
		return 0, fmt.Errorf("%w: sphere at %v: %v", ErrKernelOperationFailed, center, err)
	}
	return w.add(w.k.Translate(s, center.X, center.Y, center.Z)), nil
}

// CreateCylinder creates a cylinder (a cone when the radii differ) whose
// axis runs from start to end.
func (w *Workspace) CreateCylinder(start r3.Vec, radiusStart float64, end r3.Vec, radiusEnd float64) (Handle, error) {
	axis := Segment{Start: start, End: end}
	dir, err := axis.Direction()
	if err != nil {
		return 0, err
	}

	s, err := w.k.Cylinder(axis.Length(), radiusStart, radiusEnd, w.segments)
	if err != nil {
		return 0, fmt.Errorf("%w: cylinder %v-%v: %v", ErrKernelOperationFailed, start, end, err)
	}

	// The kernel cylinder is centered on the origin with its low end at
	// -Z. Turn +Z onto dir, then move the center to the midpoint.
	pitch, yaw := alignZ(dir)
	s = w.k.Rotate(s, 0, pitch, yaw)
	mid := r3.Scale(0.5, r3.Add(start, end))
	return w.add(w.k.Translate(s, mid.X, mid.Y, mid.Z)), nil
}

// alignZ returns the Y then Z rotation (degrees) that carries +Z onto dir.
func alignZ(dir r3.Vec) (pitch, yaw float64) {
	theta := math.Acos(math.Max(-1, math.Min(1, dir.Z)))
	phi := math.Atan2(dir.Y, dir.X)
	return theta * 180 / math.Pi, phi * 180 / math.Pi
}

// Union implements Kernel.
func (w *Workspace) Union(target Handle, tools []Handle, keepTools bool) (Handle, error) {
	return w.combine("union", target, tools, keepTools, w.k.Union)
}

// Subtract implements Kernel.
func (w *Workspace) Subtract(target Handle, tools []Handle, keepTools bool) (Handle, error) {
	return w.combine("subtract", target, tools, keepTools, w.k.Difference)
}

func (w *Workspace) combine(op string, target Handle, tools []Handle, keepTools bool, fn func(a, b kernel.Solid) kernel.Solid) (Handle, error) {
	tb, err := w.get(target)
	if err != nil {
		return 0, fmt.Errorf("%s target: %w", op, err)
	}

	toolBodies := make([]*Body, 0, len(tools))
	for _, h := range tools {
		if h == target {
			return 0, fmt.Errorf("%w: %s: body %d used as its own tool", ErrKernelOperationFailed, op, h)
		}
		b, err := w.get(h)
		if err != nil {
			return 0, fmt.Errorf("%s tool: %w", op, err)
		}
		toolBodies = append(toolBodies, b)
	}

	result := tb.Solid
	for _, b := range toolBodies {
		result = fn(result, b.Solid)
	}
	tb.Solid = result

	if !keepTools {
		for _, h := range tools {
			w.Delete(h)
		}
	}
	return target, nil
}

// Delete implements Kernel.
func (w *Workspace) Delete(h Handle) {
	if _, ok := w.bodies[h]; !ok {
		return
	}
	delete(w.bodies, h)
	for i, oh := range w.order {
		if oh == h {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// AddToCollection implements Kernel.
func (w *Workspace) AddToCollection(c Collection, h Handle) (Handle, error) {
	if !c.valid() {
		return 0, fmt.Errorf("%w: unknown collection %q", ErrKernelOperationFailed, c)
	}
	b, err := w.get(h)
	if err != nil {
		return 0, err
	}
	b.Collection = c
	return h, nil
}

// Rename implements Kernel.
func (w *Workspace) Rename(h Handle, name string) error {
	b, err := w.get(h)
	if err != nil {
		return err
	}
	b.Name = name
	return nil
}

// Body returns a copy of the live body h.
func (w *Workspace) Body(h Handle) (Body, bool) {
	b, ok := w.bodies[h]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// Bodies returns the live bodies of c in creation order.
func (w *Workspace) Bodies(c Collection) []Body {
	var out []Body
	for _, h := range w.order {
		if b := w.bodies[h]; b.Collection == c {
			out = append(out, *b)
		}
	}
	return out
}

// Live returns the number of live bodies, in or out of a collection.
func (w *Workspace) Live() int {
	return len(w.bodies)
}

// ToMesh tessellates body h. The mesh is named after the body.
func (w *Workspace) ToMesh(h Handle) (*kernel.Mesh, error) {
	b, err := w.get(h)
	if err != nil {
		return nil, err
	}
	m, err := w.k.ToMesh(b.Solid)
	if err != nil {
		return nil, fmt.Errorf("%w: tessellate %q: %v", ErrKernelOperationFailed, b.Name, err)
	}
	m.PartName = b.Name
	return m, nil
}
