// Package fill generates infill toolpaths for support regions.
package fill

import (
	"errors"
	"fmt"
	"math"

	"github.com/layerforge/support/geom"
)

var (
	// ErrEmpty is returned for regions without area.
	ErrEmpty = errors.New("fill: empty region")

	// ErrTooSmall is returned when the region is too narrow for a single line.
	ErrTooSmall = errors.New("fill: region too small for pattern")
)

// Params controls line placement.
type Params struct {
	// Spacing is the distance between adjacent lines in internal units.
	Spacing int64
	// Angle is the line direction in radians.
	Angle float64
}

// Filler fills a single island with polylines.
type Filler interface {
	Fill(region geom.ExPolygon, p Params) ([]geom.Polyline, error)
}

// Pattern names accepted by Lookup.
const (
	PatternRectilinear     = "rectilinear"
	PatternRectilinearGrid = "rectilinear-grid"
	PatternHoneycomb       = "honeycomb"
	PatternConcentric      = "concentric"
)

// Lookup returns the filler registered under name.
func Lookup(name string) (Filler, error) {
	switch name {
	case PatternRectilinear:
		return Rectilinear{}, nil
	case PatternRectilinearGrid:
		return Grid{}, nil
	case PatternHoneycomb:
		return Honeycomb{}, nil
	case PatternConcentric:
		return Concentric{}, nil
	}
	return nil, fmt.Errorf("fill: unknown pattern %q", name)
}

// Patterns returns every name Lookup accepts.
func Patterns() []string {
	return []string{PatternRectilinear, PatternRectilinearGrid, PatternHoneycomb, PatternConcentric}
}

func checkRegion(region geom.ExPolygon, p Params) error {
	if len(region.Contour) < 3 || region.Area() <= 0 {
		return ErrEmpty
	}
	if p.Spacing <= 0 {
		return fmt.Errorf("fill: spacing %d: %w", p.Spacing, ErrTooSmall)
	}
	return nil
}

// clipRotated clips lines built in the frame rotated by -angle against the
// region and rotates the survivors back.
func clipRotated(lines []geom.Polyline, rotated geom.ExPolygon, angle float64) []geom.Polyline {
	clipped := geom.ClipPolylines(lines, rotated.Polygons())
	if angle == 0 {
		return clipped
	}
	out := make([]geom.Polyline, len(clipped))
	for i, l := range clipped {
		out[i] = l.Rotate(angle)
	}
	return out
}

func rotateEx(e geom.ExPolygon, angle float64) geom.ExPolygon {
	if angle == 0 {
		return e
	}
	out := geom.ExPolygon{Contour: e.Contour.Rotate(angle)}
	for _, h := range e.Holes {
		out.Holes = append(out.Holes, h.Rotate(angle))
	}
	return out
}

// lineOrigin returns the first line position at or before v. Lines sit half a
// spacing off the grid so they do not run along grid-aligned region edges.
func lineOrigin(v, spacing int64) int64 {
	return int64(math.Floor(float64(v)/float64(spacing)))*spacing + spacing/2
}
