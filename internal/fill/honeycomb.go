package fill

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layerforge/support/geom"
)

// Honeycomb fills with regular pointy-top hexagons whose total line length
// per area matches a rectilinear fill at the same spacing.
//
// The pattern is built from vertical zig-zag strips between adjacent vertical
// hexagon edges. Even strips carry the vertical edges on both of their
// borders; odd strips carry only their diagonals, so no edge is extruded
// twice.
type Honeycomb struct{}

// Fill implements Filler.
func (Honeycomb) Fill(region geom.ExPolygon, p Params) ([]geom.Polyline, error) {
	if err := checkRegion(region, p); err != nil {
		return nil, err
	}
	rotated := rotateEx(region, -p.Angle)
	bb := geom.NewBoundingBox(geom.Polygons{rotated.Contour})

	side := 2 * float64(p.Spacing) / math.Sqrt(3)
	halfW := float64(p.Spacing) // half hexagon width
	period := 3 * side

	// Column lines x_m = m*halfW; rows repeat every period.
	m0 := int(math.Floor(float64(bb.Min.X)/halfW)) - 1
	m1 := int(math.Ceil(float64(bb.Max.X)/halfW)) + 1
	y0 := math.Floor(float64(bb.Min.Y)/period)*period - period
	y1 := float64(bb.Max.Y) + period

	var lines []geom.Polyline
	for m := m0; m < m1; m++ {
		left := float64(m) * halfW
		right := left + halfW
		// Strip parity decides which border starts with a vertical edge.
		flip := mod2(m) == 1
		if mod2(m) == 0 {
			lines = append(lines, zigzag(left, right, y0, y1, side, flip))
		} else {
			lines = append(lines, diagonals(left, right, y0, y1, side, flip)...)
		}
	}
	out := clipRotated(lines, rotated, p.Angle)
	if len(out) == 0 {
		return nil, ErrTooSmall
	}
	return out, nil
}

func mod2(m int) int { return ((m % 2) + 2) % 2 }

// zigzag walks up a strip: a vertical edge of length side on one border, a
// diagonal rising side/2 to the other border, and so on.
func zigzag(left, right, y0, y1, side float64, flip bool) geom.Polyline {
	xs := [2]float64{left, right}
	k := 0
	if flip {
		k = 1
	}
	var pts []r2.Vec
	cur := r2.Vec{X: xs[k], Y: y0}
	pts = append(pts, cur)
	for cur.Y < y1 {
		cur = r2.Add(cur, r2.Vec{Y: side})
		pts = append(pts, cur)
		k ^= 1
		cur = r2.Vec{X: xs[k], Y: cur.Y + side/2}
		pts = append(pts, cur)
	}
	return toPolyline(pts)
}

// diagonals returns the diagonal edges of a strip whose vertical edges are
// owned by the neighbouring strips.
func diagonals(left, right, y0, y1, side float64, flip bool) []geom.Polyline {
	xs := [2]float64{left, right}
	k := 0
	if flip {
		k = 1
	}
	var out []geom.Polyline
	y := y0 + side
	for y < y1 {
		a := r2.Vec{X: xs[k], Y: y}
		b := r2.Vec{X: xs[k^1], Y: y + side/2}
		out = append(out, toPolyline([]r2.Vec{a, b}))
		k ^= 1
		y += side + side/2
	}
	return out
}

func toPolyline(pts []r2.Vec) geom.Polyline {
	out := make(geom.Polyline, len(pts))
	for i, v := range pts {
		out[i] = geom.Point{X: int64(math.Round(v.X)), Y: int64(math.Round(v.Y))}
	}
	return out
}
