package frame

import (
	"fmt"

	"github.com/chazu/framegen/pkg/mesh"
	"github.com/chazu/framegen/pkg/solid"
)

// boreState tracks a rod bore tool from creation through its two hub
// subtractions to deletion.
type boreState int

const (
	boreCreated boreState = iota
	boreConsumedByOne
	boreConsumedByBoth
	boreDeleted
)

func (s boreState) String() string {
	switch s {
	case boreCreated:
		return "created"
	case boreConsumedByOne:
		return "consumed-by-one"
	case boreConsumedByBoth:
		return "consumed-by-both"
	case boreDeleted:
		return "deleted"
	}
	return fmt.Sprintf("boreState(%d)", int(s))
}

// boreTool is a clearance cylinder shared by the two hubs of one rod.
type boreTool struct {
	handle solid.Handle
	rod    int
	edge   mesh.EdgeKey
	state  boreState
}

// consume records one hub subtraction.
func (t *boreTool) consume() error {
	switch t.state {
	case boreCreated:
		t.state = boreConsumedByOne
	case boreConsumedByOne:
		t.state = boreConsumedByBoth
	default:
		return fmt.Errorf("frame: bore tool for rod %d %v consumed while %v", t.rod, t.edge, t.state)
	}
	return nil
}

// release deletes the tool once both hubs have been cut.
func (t *boreTool) release(k solid.Kernel) error {
	if t.state != boreConsumedByBoth {
		return fmt.Errorf("frame: bore tool for rod %d %v released while %v", t.rod, t.edge, t.state)
	}
	k.Delete(t.handle)
	t.state = boreDeleted
	return nil
}
