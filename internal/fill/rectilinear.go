package fill

import (
	"math"
	"sort"

	"github.com/layerforge/support/geom"
)

// Rectilinear fills with parallel lines, alternating direction so
// consecutive lines start near the previous end.
type Rectilinear struct{}

// Fill implements Filler.
func (Rectilinear) Fill(region geom.ExPolygon, p Params) ([]geom.Polyline, error) {
	if err := checkRegion(region, p); err != nil {
		return nil, err
	}
	lines := parallelLines(region, p.Spacing, p.Angle)
	if len(lines) == 0 {
		return nil, ErrTooSmall
	}
	return lines, nil
}

// parallelLines returns the clipped lines at angle, ordered across the region.
func parallelLines(region geom.ExPolygon, spacing int64, angle float64) []geom.Polyline {
	// Lines run along Y in the frame rotated by -(angle - 90°).
	frame := angle - math.Pi/2
	rotated := rotateEx(region, -frame)
	bb := geom.NewBoundingBox(geom.Polygons{rotated.Contour})
	if bb.Empty() {
		return nil
	}
	var lines []geom.Polyline
	for x := lineOrigin(bb.Min.X, spacing); x <= bb.Max.X; x += spacing {
		if x < bb.Min.X {
			continue
		}
		lines = append(lines, geom.Polyline{
			{X: x, Y: bb.Min.Y - 1},
			{X: x, Y: bb.Max.Y + 1},
		})
	}
	clipped := geom.ClipPolylines(lines, rotated.Polygons())
	// Clipper returns segments in no particular order; sort by column, then
	// serpentine.
	sort.SliceStable(clipped, func(i, j int) bool {
		a, b := clipped[i], clipped[j]
		if a[0].X != b[0].X {
			return a[0].X < b[0].X
		}
		return minY(a) < minY(b)
	})
	for i, l := range clipped {
		if l[0].Y > l[len(l)-1].Y {
			l.Reverse()
		}
		if i%2 == 1 {
			l.Reverse()
		}
	}
	if frame == 0 {
		return clipped
	}
	out := make([]geom.Polyline, len(clipped))
	for i, l := range clipped {
		out[i] = l.Rotate(frame)
	}
	return out
}

func minY(l geom.Polyline) int64 {
	m := l[0].Y
	for _, p := range l[1:] {
		m = min(m, p.Y)
	}
	return m
}

// Grid fills with two perpendicular families of lines.
type Grid struct{}

// Fill implements Filler.
func (Grid) Fill(region geom.ExPolygon, p Params) ([]geom.Polyline, error) {
	if err := checkRegion(region, p); err != nil {
		return nil, err
	}
	lines := parallelLines(region, p.Spacing, p.Angle)
	lines = append(lines, parallelLines(region, p.Spacing, p.Angle+math.Pi/2)...)
	if len(lines) == 0 {
		return nil, ErrTooSmall
	}
	return lines, nil
}
