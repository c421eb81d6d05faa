package params

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
)

// Unit names accepted by Source.
const (
	UnitMillimetre = "mm"
	UnitCentimetre = "cm"
	UnitMetre      = "m"
	UnitInch       = "in"
)

// UnitScale returns the factor converting a length in unit to centimetres.
// An empty unit means centimetres.
func UnitScale(unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", UnitCentimetre:
		return 1, nil
	case UnitMillimetre:
		return 0.1, nil
	case UnitMetre:
		return 100, nil
	case UnitInch:
		return 2.54, nil
	}
	return 0, fmt.Errorf("%w: unknown unit %q (want mm, cm, m or in)", ErrInvalidParameters, unit)
}

// Source is the parameter boundary: values in a declared unit, as read
// from a config file, flags or a frame script. Nil fields fall back to
// the defaults; a field that is set, even to zero, is validated as given.
type Source struct {
	RodDiameter     *float64 `json:"rodDiameter,omitempty"`
	ConnectorLength *float64 `json:"connectorLength,omitempty"`
	WallThickness   *float64 `json:"wallThickness,omitempty"`
	Clearance       *float64 `json:"clearance,omitempty"`
	Units           string   `json:"units,omitempty"`
}

// Float returns a pointer to v for populating a Source.
func Float(v float64) *float64 { return &v }

// Fields returns the source's length fields keyed by their config name.
func (s *Source) Fields() map[string]**float64 {
	return map[string]**float64{
		"rodDiameter":     &s.RodDiameter,
		"connectorLength": &s.ConnectorLength,
		"wallThickness":   &s.WallThickness,
		"clearance":       &s.Clearance,
	}
}

// Parse decodes YAML (or JSON) into the source.
func (s *Source) Parse(data []byte) error {
	return yaml.Unmarshal(data, s)
}

// Resolve converts the source to centimetre Parameters and validates them.
func (s Source) Resolve() (Parameters, error) {
	scale, err := UnitScale(s.Units)
	if err != nil {
		return Parameters{}, err
	}

	p := Default()
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v * scale
		}
	}
	set(&p.RodDiameter, s.RodDiameter)
	set(&p.ConnectorLength, s.ConnectorLength)
	set(&p.WallThickness, s.WallThickness)
	set(&p.Clearance, s.Clearance)

	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Derived is a printable summary of parameters and derived radii.
type Derived struct {
	Parameters
	ConnectorRadius   float64 `json:"connectorRadius"`
	SphereRadius      float64 `json:"sphereRadius"`
	CutCylinderRadius float64 `json:"cutCylinderRadius"`
	RodCutRadius      float64 `json:"rodCutRadius"`
	Units             string  `json:"units"`
}

// Describe returns the derived summary for p.
func Describe(p Parameters) Derived {
	return Derived{
		Parameters:        p,
		ConnectorRadius:   p.ConnectorRadius(),
		SphereRadius:      p.SphereRadius(),
		CutCylinderRadius: p.CutCylinderRadius(),
		RodCutRadius:      p.RodCutRadius(),
		Units:             UnitCentimetre,
	}
}

// YAML renders the summary.
func (d Derived) YAML() ([]byte, error) {
	return yaml.Marshal(d)
}
