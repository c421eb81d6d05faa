package frame

import (
	"context"
	"fmt"

	"github.com/chazu/framegen/pkg/mesh"
	"github.com/chazu/framegen/pkg/params"
	"github.com/chazu/framegen/pkg/solid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"
)

type socket struct {
	handle solid.Handle
	axis   solid.Segment
}

// hubRecord is the per-vertex state accumulated during pass 1.
type hubRecord struct {
	vertex  int
	center  r3.Vec
	sphere  solid.Handle
	sockets []socket
	bores   []*boreTool
}

// construction holds everything one Execute call owns.
type construction struct {
	k   solid.Kernel
	m   *mesh.Mesh
	p   params.Parameters
	log zerolog.Logger

	hubs  map[int]*hubRecord
	order []int

	visitedSockets map[mesh.DirectedEdge]struct{}
	visitedRods    map[mesh.EdgeKey]struct{}
	bores          []*boreTool
	rodNumber      int

	result *Result
}

func newConstruction(k solid.Kernel, m *mesh.Mesh, p params.Parameters, log zerolog.Logger) *construction {
	return &construction{
		k:              k,
		m:              m,
		p:              p,
		log:            log,
		hubs:           make(map[int]*hubRecord),
		visitedSockets: make(map[mesh.DirectedEdge]struct{}),
		visitedRods:    make(map[mesh.EdgeKey]struct{}),
		rodNumber:      1,
		result:         &Result{},
	}
}

// createHubs places a sphere on every vertex used by a triangle, in
// vertex-index order.
func (c *construction) createHubs(ctx context.Context) error {
	order, err := c.m.ReferencedVertices()
	if err != nil {
		return err
	}
	c.order = order

	for _, v := range c.order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("frame: hub %d: %w", v, err)
		}
		center := c.m.Vertices[v]
		h, err := c.k.CreateSphere(center, c.p.SphereRadius())
		if err != nil {
			return fmt.Errorf("frame: hub %d: %w", v, err)
		}
		c.hubs[v] = &hubRecord{vertex: v, center: center, sphere: h}
	}
	return nil
}

// buildTriangle requests the six directed sockets and three rods of t.
func (c *construction) buildTriangle(t mesh.Triangle) error {
	a, b, v := t[0], t[1], t[2]
	for _, d := range []mesh.DirectedEdge{
		{From: a, To: b}, {From: a, To: v}, {From: b, To: v},
		{From: b, To: a}, {From: v, To: a}, {From: v, To: b},
	} {
		if err := c.socket(d); err != nil {
			return err
		}
	}
	for _, d := range []mesh.DirectedEdge{{From: a, To: b}, {From: a, To: v}, {From: b, To: v}} {
		if err := c.rod(d); err != nil {
			return err
		}
	}
	return nil
}

// socket adds a shell cylinder to the hub at d.From pointing at d.To.
func (c *construction) socket(d mesh.DirectedEdge) error {
	if _, ok := c.visitedSockets[d]; ok {
		return nil
	}
	c.visitedSockets[d] = struct{}{}

	hub := c.hubs[d.From]
	edge := solid.Segment{Start: hub.center, End: c.m.Vertices[d.To]}
	axis, err := edge.Along(0, c.p.SocketLength())
	if err != nil {
		return fmt.Errorf("frame: socket %v: %w", d, err)
	}

	r := c.p.ConnectorRadius()
	h, err := c.k.CreateCylinder(axis.Start, r, axis.End, r)
	if err != nil {
		return fmt.Errorf("frame: socket %v: %w", d, err)
	}
	hub.sockets = append(hub.sockets, socket{handle: h, axis: axis})
	c.result.Sockets++
	return nil
}

// rod creates the rod for the undirected edge of d and its bore tool.
func (c *construction) rod(d mesh.DirectedEdge) error {
	key := d.Key()
	if _, ok := c.visitedRods[key]; ok {
		return nil
	}
	c.visitedRods[key] = struct{}{}

	edge := solid.Segment{Start: c.m.Vertices[d.From], End: c.m.Vertices[d.To]}
	pull := c.p.RodPullback()
	full := edge.Length()
	if full <= 2*pull {
		return fmt.Errorf("frame: rod %v: %w: edge length %.4f cm leaves no rod after %.4f cm pull-back at each end",
			d, solid.ErrDegenerateGeometry, full, pull)
	}
	seg, err := edge.Along(pull, full-pull)
	if err != nil {
		return fmt.Errorf("frame: rod %v: %w", d, err)
	}
	length := seg.Length()

	rr := c.p.RodRadius()
	h, err := c.k.CreateCylinder(seg.Start, rr, seg.End, rr)
	if err != nil {
		return fmt.Errorf("frame: rod %v: %w", d, err)
	}
	name := fmt.Sprintf("Rod %d - %.1f cm", c.rodNumber, length)
	if err := c.k.Rename(h, name); err != nil {
		return fmt.Errorf("frame: rod %v: %w", d, err)
	}
	if _, err := c.k.AddToCollection(solid.Rods, h); err != nil {
		return fmt.Errorf("frame: rod %v: %w", d, err)
	}

	cr := c.p.RodCutRadius()
	cut, err := c.k.CreateCylinder(seg.Start, cr, seg.End, cr)
	if err != nil {
		return fmt.Errorf("frame: rod %v bore: %w", d, err)
	}
	tool := &boreTool{handle: cut, rod: c.rodNumber, edge: key}
	c.bores = append(c.bores, tool)
	c.hubs[d.From].bores = append(c.hubs[d.From].bores, tool)
	c.hubs[d.To].bores = append(c.hubs[d.To].bores, tool)

	c.result.Rods = append(c.result.Rods, h)
	c.result.RodCuts = append(c.result.RodCuts, Rod{
		Number:  c.rodNumber,
		Name:    name,
		Edge:    key,
		Segment: seg,
		Length:  length,
		Handle:  h,
	})
	c.result.TotalRodLength += length

	c.log.Debug().Int("rod", c.rodNumber).Stringer("edge", key).Float64("length_cm", length).Msg("rod")
	c.rodNumber++
	return nil
}

// finishHub marks, joins and bores one hub.
func (c *construction) finishHub(hub *hubRecord) error {
	number := hub.vertex + 1
	tools := make([]solid.Handle, 0, len(hub.sockets)+8)
	for _, s := range hub.sockets {
		tools = append(tools, s.handle)
	}

	if len(hub.sockets) > 0 {
		ref := hub.sockets[0].axis
		rr := c.p.ConnectorRadius() * params.MarkingRidgeScale
		for _, r := range MarkingLayout(number, c.p) {
			seg, err := ref.Along(r.Start, r.End)
			if err != nil {
				return fmt.Errorf("frame: hub %d marking: %w", hub.vertex, err)
			}
			h, err := c.k.CreateCylinder(seg.Start, rr, seg.End, rr)
			if err != nil {
				return fmt.Errorf("frame: hub %d marking: %w", hub.vertex, err)
			}
			tools = append(tools, h)
		}
	}

	body, err := c.k.Union(hub.sphere, tools, false)
	if err != nil {
		return fmt.Errorf("frame: hub %d join: %w", hub.vertex, err)
	}
	if err := c.k.Rename(body, fmt.Sprintf("Connector %d", number)); err != nil {
		return fmt.Errorf("frame: hub %d: %w", hub.vertex, err)
	}
	if _, err := c.k.AddToCollection(solid.Connectors, body); err != nil {
		return fmt.Errorf("frame: hub %d: %w", hub.vertex, err)
	}

	if len(hub.bores) > 0 {
		cuts := make([]solid.Handle, len(hub.bores))
		for i, t := range hub.bores {
			cuts[i] = t.handle
		}
		if _, err := c.k.Subtract(body, cuts, true); err != nil {
			return fmt.Errorf("frame: hub %d bore: %w", hub.vertex, err)
		}
		for _, t := range hub.bores {
			if err := t.consume(); err != nil {
				return err
			}
		}
	}

	c.result.Connectors = append(c.result.Connectors, body)
	c.log.Debug().
		Int("connector", number).
		Int("sockets", len(hub.sockets)).
		Int("bores", len(hub.bores)).
		Msg("connector")
	return nil
}

// cleanup deletes every bore tool once both of its hubs have been cut.
func (c *construction) cleanup() error {
	for _, t := range c.bores {
		if err := t.release(c.k); err != nil {
			return err
		}
	}
	return nil
}
