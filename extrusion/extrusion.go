// Package extrusion defines the typed toolpaths produced by the support
// generator and consumed by G-code emission.
package extrusion

import (
	"math"

	"github.com/layerforge/support/geom"
)

// Role classifies an extrusion for speed, cooling and extruder selection.
type Role uint8

const (
	// RoleNone marks an unset role.
	RoleNone Role = iota
	// RoleSupportMaterial is sparse support body and raft base.
	RoleSupportMaterial
	// RoleSupportMaterialInterface is dense contact and interface material.
	RoleSupportMaterialInterface
)

// String returns the role name used in G-code comments.
func (r Role) String() string {
	switch r {
	case RoleSupportMaterial:
		return "Support material"
	case RoleSupportMaterialInterface:
		return "Support material interface"
	default:
		return "None"
	}
}

// Flow describes the cross-section of an extruded bead in millimetres.
type Flow struct {
	Width          float64
	Height         float64
	NozzleDiameter float64
	Bridge         bool
}

// NewFlow returns a regular flow.
func NewFlow(width, height, nozzle float64) Flow {
	return Flow{Width: width, Height: height, NozzleDiameter: nozzle}
}

// BridgeFlow returns a round bridging bead of the nozzle diameter.
func BridgeFlow(nozzle float64) Flow {
	return Flow{Width: nozzle, Height: nozzle, NozzleDiameter: nozzle, Bridge: true}
}

// Spacing is the centre distance between adjacent beads that touch without
// overlapping, modelling the bead as a rectangle with semicircular ends.
func (f Flow) Spacing() float64 {
	if f.Bridge {
		return f.Width + 0.05
	}
	return f.Width - f.Height*(1-math.Pi/4)
}

// MM3PerMM returns the extruded volume per millimetre of path.
func (f Flow) MM3PerMM() float64 {
	if f.Bridge {
		return f.Width * f.Width * math.Pi / 4
	}
	return (f.Width - f.Height*(1-math.Pi/4)) * f.Height
}

// WithHeight returns the flow with a new layer height, keeping the width.
func (f Flow) WithHeight(h float64) Flow {
	f.Height = h
	return f
}

// ScaledWidth returns the width in internal units.
func (f Flow) ScaledWidth() int64 { return geom.Scaled(f.Width) }

// ScaledSpacing returns the spacing in internal units.
func (f Flow) ScaledSpacing() int64 { return geom.Scaled(f.Spacing()) }

// Path is a single extrusion along a polyline.
type Path struct {
	Polyline geom.Polyline
	Role     Role
	Width    float64
	Height   float64
	MM3PerMM float64
	// Closed marks a loop whose last point equals its first.
	Closed bool
}

// NewPath creates a path with the given flow.
func NewPath(pl geom.Polyline, role Role, f Flow) Path {
	return Path{
		Polyline: pl,
		Role:     role,
		Width:    f.Width,
		Height:   f.Height,
		MM3PerMM: f.MM3PerMM(),
	}
}

// NewLoop creates a closed path around a ring.
func NewLoop(ring geom.Polygon, role Role, f Flow) Path {
	p := NewPath(ring.Polyline(), role, f)
	p.Closed = true
	return p
}

// Length returns the path length in millimetres.
func (p Path) Length() float64 {
	return p.Polyline.Length() / geom.Scale
}

// Volume returns the extruded volume in mm³.
func (p Path) Volume() float64 {
	return p.Length() * p.MM3PerMM
}

// Collection is an ordered list of extrusions printed on one layer.
type Collection []Path

// Append adds paths for each polyline with the same role and flow.
func (c *Collection) Append(lines []geom.Polyline, role Role, f Flow) {
	for _, l := range lines {
		if len(l) < 2 {
			continue
		}
		*c = append(*c, NewPath(l, role, f))
	}
}

// AppendLoops adds closed paths for each ring.
func (c *Collection) AppendLoops(rings geom.Polygons, role Role, f Flow) {
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		*c = append(*c, NewLoop(r, role, f))
	}
}

// Length returns the summed path length in millimetres.
func (c Collection) Length() float64 {
	var l float64
	for _, p := range c {
		l += p.Length()
	}
	return l
}

// Volume returns the summed extruded volume in mm³.
func (c Collection) Volume() float64 {
	var v float64
	for _, p := range c {
		v += p.Volume()
	}
	return v
}

// ByRole returns the paths with the given role.
func (c Collection) ByRole(r Role) Collection {
	var out Collection
	for _, p := range c {
		if p.Role == r {
			out = append(out, p)
		}
	}
	return out
}
