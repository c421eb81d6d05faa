package export

import (
	"fmt"
	"io"

	"github.com/chazu/framegen/pkg/frame"
	"github.com/chazu/framegen/pkg/params"
	"github.com/ghodss/yaml"
)

// CutEntry is one rod to cut, with the connectors it joins. Length is
// the cut length: EdgeLength, the vertex-to-vertex distance, less the
// pull-back at each end. Edges no longer than two pull-backs never reach
// the cut list; the frame builder rejects them as degenerate.
type CutEntry struct {
	Number     int     `json:"number"`
	Name       string  `json:"name"`
	Length     float64 `json:"length"`
	EdgeLength float64 `json:"edgeLength"`
	From       int     `json:"fromConnector"`
	To         int     `json:"toConnector"`
}

// CutList summarizes a generated frame for assembly.
type CutList struct {
	Units          string         `json:"units"`
	Parameters     params.Derived `json:"parameters"`
	Connectors     int            `json:"connectors"`
	Sockets        int            `json:"sockets"`
	TotalRodLength float64        `json:"totalRodLength"`
	Rods           []CutEntry     `json:"rods"`
}

// NewCutList builds the cut list for res generated with p.
func NewCutList(res *frame.Result, p params.Parameters) CutList {
	cl := CutList{
		Units:          params.UnitCentimetre,
		Parameters:     params.Describe(p),
		Connectors:     len(res.Connectors),
		Sockets:        res.Sockets,
		TotalRodLength: res.TotalRodLength,
		Rods:           make([]CutEntry, 0, len(res.RodCuts)),
	}
	for _, r := range res.RodCuts {
		cl.Rods = append(cl.Rods, CutEntry{
			Number:     r.Number,
			Name:       r.Name,
			Length:     r.Length,
			EdgeLength: r.Length + 2*p.RodPullback(),
			From:       r.Edge.A + 1,
			To:         r.Edge.B + 1,
		})
	}
	return cl
}

// YAML renders the cut list.
func (cl CutList) YAML() ([]byte, error) {
	b, err := yaml.Marshal(cl)
	if err != nil {
		return nil, fmt.Errorf("export: cut list: %w", err)
	}
	return b, nil
}

// WriteCutList writes the cut list as YAML.
func WriteCutList(w io.Writer, cl CutList) error {
	b, err := cl.YAML()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadCutList parses a cut list written by WriteCutList.
func ReadCutList(data []byte) (CutList, error) {
	var cl CutList
	if err := yaml.Unmarshal(data, &cl); err != nil {
		return CutList{}, fmt.Errorf("export: cut list: %w", err)
	}
	return cl, nil
}
