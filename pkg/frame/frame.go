// Package frame turns a triangle mesh into a lattice frame: one connector
// hub per vertex and one rod per edge, built through a solid.Kernel.
package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/framegen/pkg/mesh"
	"github.com/chazu/framegen/pkg/params"
	"github.com/chazu/framegen/pkg/solid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrBusy is returned when Execute is called on a builder that is
// already running.
var ErrBusy = errors.New("frame: builder is already executing")

// Rod describes one generated rod.
type Rod struct {
	Number  int           `json:"number"`
	Name    string        `json:"name"`
	Edge    mesh.EdgeKey  `json:"edge"`
	Segment solid.Segment `json:"-"`
	Length  float64       `json:"length"`
	Handle  solid.Handle  `json:"-"`
}

// Result is the output of one Execute call.
type Result struct {
	Connectors     []solid.Handle
	Rods           []solid.Handle
	RodCuts        []Rod
	TotalRodLength float64
	Sockets        int
}

// Builder generates frames. A Builder runs one Execute at a time.
type Builder struct {
	k   solid.Kernel
	log zerolog.Logger
	mu  sync.Mutex
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for run progress.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// New returns a Builder that creates bodies through k.
func New(k solid.Kernel, opts ...Option) *Builder {
	b := &Builder{k: k, log: zerolog.Nop()}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Execute builds the frame for m. Parameters and mesh indices are
// validated before the first kernel call. On error, bodies created so
// far are left in the kernel.
func (b *Builder) Execute(ctx context.Context, m *mesh.Mesh, p params.Parameters) (*Result, error) {
	if !b.mu.TryLock() {
		return nil, ErrBusy
	}
	defer b.mu.Unlock()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	tris, err := m.Triangles()
	if err != nil {
		return nil, err
	}

	if err := checkEdges(m, p); err != nil {
		return nil, err
	}

	c := newConstruction(b.k, m, p, b.log)
	if err := c.createHubs(ctx); err != nil {
		return nil, err
	}
	for i, t := range tris {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("frame: triangle %d: %w", i, err)
		}
		if err := c.buildTriangle(t); err != nil {
			return nil, err
		}
	}
	for _, v := range c.order {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("frame: hub %d: %w", v, err)
		}
		if err := c.finishHub(c.hubs[v]); err != nil {
			return nil, err
		}
	}
	if err := c.cleanup(); err != nil {
		return nil, err
	}

	b.log.Info().
		Int("connectors", len(c.result.Connectors)).
		Int("rods", len(c.result.Rods)).
		Int("sockets", c.result.Sockets).
		Float64("total_rod_length_cm", c.result.TotalRodLength).
		Msg("frame generated")
	return c.result, nil
}

// checkEdges rejects, before any kernel call, an edge too short to leave
// a rod once both ends are pulled in.
func checkEdges(m *mesh.Mesh, p params.Parameters) error {
	edges, err := m.Edges()
	if err != nil {
		return err
	}
	pull := p.RodPullback()
	for _, e := range edges {
		l := r3.Norm(r3.Sub(m.Vertices[e.B], m.Vertices[e.A]))
		if l <= 2*pull {
			return fmt.Errorf("frame: edge %v: %w: length %.4f cm leaves no rod after %.4f cm pull-back at each end",
				e, solid.ErrDegenerateGeometry, l, pull)
		}
	}
	return nil
}
