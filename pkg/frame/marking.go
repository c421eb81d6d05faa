package frame

import (
	"fmt"
	"math"
	"strconv"

	"github.com/chazu/framegen/pkg/params"
)

// Ridge is one marking cylinder, given as distances from the hub
// center along the hub's reference socket axis.
type Ridge struct {
	Start     float64
	End       float64
	Separator bool
}

// Length returns End - Start.
func (r Ridge) Length() float64 { return r.End - r.Start }

// markingOrigin returns the distance from the hub center where the bit
// field begins and the width of one bit slot.
func markingOrigin(p params.Parameters) (initial, bit float64) {
	return p.SphereRadius() + p.ConnectorLength/5, p.ConnectorLength / 10
}

// MarkingLayout returns the ridges that encode n (n >= 1) on a hub. Bits
// are taken MSB first from the binary representation of n. Every bit
// position emits one separator ridge spanning [0, initial]; a 1-bit at
// position p additionally emits a data ridge spanning
// [initial+p*bit, initial+(p+1)*bit].
func MarkingLayout(n int, p params.Parameters) []Ridge {
	if n < 1 {
		return nil
	}
	initial, bit := markingOrigin(p)
	bits := strconv.FormatInt(int64(n), 2)

	ridges := make([]Ridge, 0, 2*len(bits))
	for i, c := range bits {
		pos := float64(i + 1)
		ridges = append(ridges, Ridge{Start: 0, End: initial, Separator: true})
		if c == '1' {
			ridges = append(ridges, Ridge{
				Start: initial + pos*bit,
				End:   initial + (pos+1)*bit,
			})
		}
	}
	return ridges
}

// DecodeMarking recovers the number encoded by ridges. The number of
// separators gives the bit count; each data ridge sets the bit for the
// slot it starts in.
func DecodeMarking(ridges []Ridge, p params.Parameters) (int, error) {
	initial, bit := markingOrigin(p)

	width := 0
	for _, r := range ridges {
		if r.Separator {
			width++
		}
	}
	if width == 0 {
		return 0, fmt.Errorf("frame: marking has no separator ridges")
	}
	if width > 62 {
		return 0, fmt.Errorf("frame: marking has %d bit positions", width)
	}

	n := 0
	for _, r := range ridges {
		if r.Separator {
			continue
		}
		slot := (r.Start - initial) / bit
		pos := int(math.Round(slot))
		if math.Abs(slot-float64(pos)) > 1e-6 || pos < 1 || pos > width {
			return 0, fmt.Errorf("frame: data ridge at %.4f is not on a bit slot", r.Start)
		}
		n |= 1 << (width - pos)
	}
	if n>>(width-1) != 1 {
		return 0, fmt.Errorf("frame: marking has no leading 1-bit")
	}
	return n, nil
}
