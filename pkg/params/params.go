// Package params holds the physical parameters of a frame and the radii
// derived from them. All lengths are centimetres; conversion from other
// units happens once, in Source.Resolve.
package params

import (
	"errors"
	"fmt"
	"math"
)

// Defaults, in centimetres.
const (
	DefaultRodDiameter     = 0.3
	DefaultConnectorLength = 1.5
	DefaultWallThickness   = 0.2
	DefaultClearance       = 0.015
)

const (
	sphereScale = 1.5

	// RodPullbackFraction of the connector length is removed from each
	// end of an edge to get the rod segment.
	RodPullbackFraction = 0.25

	// MarkingRidgeScale is the marking ridge radius relative to the
	// connector radius.
	MarkingRidgeScale = 1.2
)

// ErrInvalidParameters reports a non-positive scalar or a configuration
// that leaves no wall after boring.
var ErrInvalidParameters = errors.New("invalid parameters")

// Parameters are the physical scalars of a frame.
type Parameters struct {
	RodDiameter     float64 `json:"rodDiameter"`
	ConnectorLength float64 `json:"connectorLength"`
	WallThickness   float64 `json:"wallThickness"`
	Clearance       float64 `json:"clearance"`
}

// Default returns the default parameters.
func Default() Parameters {
	return Parameters{
		RodDiameter:     DefaultRodDiameter,
		ConnectorLength: DefaultConnectorLength,
		WallThickness:   DefaultWallThickness,
		Clearance:       DefaultClearance,
	}
}

// ConnectorRadius is the outer radius of a socket.
func (p Parameters) ConnectorRadius() float64 {
	return p.RodDiameter/2 + p.WallThickness + p.Clearance/2
}

// SphereRadius is the radius of the hub sphere.
func (p Parameters) SphereRadius() float64 {
	return p.ConnectorRadius() * sphereScale
}

// CutCylinderRadius is the bore radius of a socket.
func (p Parameters) CutCylinderRadius() float64 {
	return p.ConnectorRadius() - p.WallThickness/2 + p.Clearance/2
}

// RodCutRadius is the radius of the clearance tool cut around a rod.
func (p Parameters) RodCutRadius() float64 {
	return p.RodDiameter/2 + p.Clearance/2
}

// RodRadius is half the rod diameter.
func (p Parameters) RodRadius() float64 {
	return p.RodDiameter / 2
}

// RodPullback is the distance a rod end sits inside the edge from its vertex.
func (p Parameters) RodPullback() float64 {
	return p.ConnectorLength * RodPullbackFraction
}

// SocketLength is the length of a socket cylinder measured from the hub center.
func (p Parameters) SocketLength() float64 {
	return p.ConnectorLength + p.SphereRadius()
}

// Validate checks that every scalar is positive and finite and that a
// wall remains after boring.
func (p Parameters) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"rodDiameter", p.RodDiameter},
		{"connectorLength", p.ConnectorLength},
		{"wallThickness", p.WallThickness},
		{"clearance", p.Clearance},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%w: %s is %v, must be positive", ErrInvalidParameters, f.name, f.v)
		}
	}

	if cut, outer := p.CutCylinderRadius(), p.ConnectorRadius(); cut >= outer {
		return fmt.Errorf("%w: cut radius %.4f leaves no wall inside connector radius %.4f (clearance %.4f must be below wall thickness %.4f)",
			ErrInvalidParameters, cut, outer, p.Clearance, p.WallThickness)
	}
	return nil
}
