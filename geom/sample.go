package geom

import "sort"

// InteriorPoint returns a point strictly inside the island (inside the
// contour and outside every hole). It scans a few horizontal lines across
// the bounding box and returns the midpoint of the widest inside span.
// ok is false for degenerate islands.
func (e ExPolygon) InteriorPoint() (pt Point, ok bool) {
	bb := NewBoundingBox(Polygons{e.Contour})
	if bb.Empty() || bb.Height() < 2 {
		return Point{}, false
	}
	rings := e.Polygons()
	var best int64 = -1
	// Half-odd fractions keep the scan line off vertices on regular grids.
	for _, f := range [...]float64{0.5, 0.3125, 0.6875, 0.1875, 0.8125} {
		y := bb.Min.Y + int64(f*float64(bb.Height()))
		xs := crossings(rings, y)
		for i := 0; i+1 < len(xs); i += 2 {
			if w := xs[i+1] - xs[i]; w > best && w > 1 {
				best = w
				pt = Point{X: xs[i] + w/2, Y: y}
			}
		}
		if best > 0 {
			return pt, true
		}
	}
	return Point{}, false
}

// crossings returns the sorted X coordinates where the rings cross the
// horizontal line at y. Paired entries bound inside spans under the even-odd
// rule, which equals non-zero for well-formed islands.
func crossings(rings Polygons, y int64) []int64 {
	var xs []int64
	for _, r := range rings {
		n := len(r)
		for i := 0; i < n; i++ {
			a, b := r[i], r[(i+1)%n]
			if (a.Y <= y) == (b.Y <= y) {
				continue
			}
			t := float64(y-a.Y) / float64(b.Y-a.Y)
			xs = append(xs, a.X+int64(t*float64(b.X-a.X)))
		}
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	return xs
}

// IslandSamples returns one interior sample per island of polys.
func IslandSamples(polys Polygons) []Point {
	islands := UnionEx(polys)
	out := make([]Point, 0, len(islands))
	for _, isl := range islands {
		if pt, ok := isl.InteriorPoint(); ok {
			out = append(out, pt)
		}
	}
	return out
}
