package frame

import (
	"fmt"

	"github.com/chazu/framegen/pkg/solid"
	"gonum.org/v1/gonum/spatial/r3"
)

type fakeKind int

const (
	fakeSphere fakeKind = iota
	fakeCylinder
)

type fakeBody struct {
	kind       fakeKind
	start, end r3.Vec
	radius     float64
	name       string
	collection solid.Collection
	joined     []solid.Handle
	cut        []solid.Handle
}

type fakeCall struct {
	op        string
	target    solid.Handle
	tools     []solid.Handle
	keepTools bool
}

// fakeKernel records every call and keeps just enough state to check
// handle lifetimes.
type fakeKernel struct {
	next    solid.Handle
	bodies  map[solid.Handle]*fakeBody
	all     map[solid.Handle]*fakeBody
	calls   []fakeCall
	deletes []solid.Handle

	failCylinderAfter int
}

func newFakeKernel() *fakeKernel {
	return &fakeKernel{
		bodies:            make(map[solid.Handle]*fakeBody),
		all:               make(map[solid.Handle]*fakeBody),
		failCylinderAfter: -1,
	}
}

func (k *fakeKernel) add(b *fakeBody) solid.Handle {
	k.next++
	k.bodies[k.next] = b
	k.all[k.next] = b
	return k.next
}

func (k *fakeKernel) CreateSphere(center r3.Vec, radius float64) (solid.Handle, error) {
	k.calls = append(k.calls, fakeCall{op: "sphere"})
	return k.add(&fakeBody{kind: fakeSphere, start: center, end: center, radius: radius}), nil
}

func (k *fakeKernel) CreateCylinder(start r3.Vec, radiusStart float64, end r3.Vec, radiusEnd float64) (solid.Handle, error) {
	k.calls = append(k.calls, fakeCall{op: "cylinder"})
	if k.failCylinderAfter == 0 {
		return 0, fmt.Errorf("%w: injected", solid.ErrKernelOperationFailed)
	}
	if k.failCylinderAfter > 0 {
		k.failCylinderAfter--
	}
	if r3.Norm(r3.Sub(end, start)) < solid.Epsilon {
		return 0, solid.ErrDegenerateGeometry
	}
	return k.add(&fakeBody{kind: fakeCylinder, start: start, end: end, radius: radiusStart}), nil
}

func (k *fakeKernel) combine(op string, target solid.Handle, tools []solid.Handle, keep bool) (solid.Handle, error) {
	k.calls = append(k.calls, fakeCall{op: op, target: target, tools: append([]solid.Handle(nil), tools...), keepTools: keep})
	t, ok := k.bodies[target]
	if !ok {
		return 0, fmt.Errorf("%w: %s target %d", solid.ErrKernelOperationFailed, op, target)
	}
	for _, h := range tools {
		if _, ok := k.bodies[h]; !ok {
			return 0, fmt.Errorf("%w: %s tool %d", solid.ErrKernelOperationFailed, op, h)
		}
	}
	if op == "union" {
		t.joined = append(t.joined, tools...)
	} else {
		t.cut = append(t.cut, tools...)
	}
	if !keep {
		for _, h := range tools {
			delete(k.bodies, h)
		}
	}
	return target, nil
}

func (k *fakeKernel) Union(target solid.Handle, tools []solid.Handle, keepTools bool) (solid.Handle, error) {
	return k.combine("union", target, tools, keepTools)
}

func (k *fakeKernel) Subtract(target solid.Handle, tools []solid.Handle, keepTools bool) (solid.Handle, error) {
	return k.combine("subtract", target, tools, keepTools)
}

func (k *fakeKernel) Delete(h solid.Handle) {
	k.deletes = append(k.deletes, h)
	delete(k.bodies, h)
}

func (k *fakeKernel) AddToCollection(c solid.Collection, h solid.Handle) (solid.Handle, error) {
	b, ok := k.bodies[h]
	if !ok {
		return 0, fmt.Errorf("%w: collect %d", solid.ErrKernelOperationFailed, h)
	}
	b.collection = c
	return h, nil
}

func (k *fakeKernel) Rename(h solid.Handle, name string) error {
	b, ok := k.bodies[h]
	if !ok {
		return fmt.Errorf("%w: rename %d", solid.ErrKernelOperationFailed, h)
	}
	b.name = name
	return nil
}

func (k *fakeKernel) count(op string) int {
	n := 0
	for _, c := range k.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (k *fakeKernel) ops(op string) []fakeCall {
	var out []fakeCall
	for _, c := range k.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (k *fakeKernel) live(c solid.Collection) []*fakeBody {
	var out []*fakeBody
	for h := solid.Handle(1); h <= k.next; h++ {
		if b, ok := k.bodies[h]; ok && b.collection == c {
			out = append(out, b)
		}
	}
	return out
}
