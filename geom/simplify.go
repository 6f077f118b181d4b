package geom

import "math"

// Simplify removes vertices that deviate less than tolerance from the line
// through their neighbours (Douglas-Peucker on the closed ring). Rings that
// collapse below three points are dropped by returning nil.
func (p Polygon) Simplify(tolerance float64) Polygon {
	if len(p) < 4 || tolerance <= 0 {
		return p.Clone()
	}
	// Split the ring at the vertex farthest from p[0] and simplify both halves.
	far := 0
	var farD float64
	for i := 1; i < len(p); i++ {
		if d := p[0].DistanceTo(p[i]); d > farD {
			far, farD = i, d
		}
	}
	if far == 0 {
		return nil
	}
	keep := make([]bool, len(p))
	keep[0], keep[far] = true, true
	douglasPeucker(p, 0, far, tolerance, keep)
	ring := append(p[far:].Clone(), p[0])
	keepTail := make([]bool, len(ring))
	keepTail[0], keepTail[len(ring)-1] = true, true
	douglasPeucker(Polygon(ring), 0, len(ring)-1, tolerance, keepTail)
	for i := 1; i < len(ring)-1; i++ {
		if keepTail[i] {
			keep[far+i] = true
		}
	}
	out := make(Polygon, 0, len(p))
	for i, k := range keep {
		if k {
			out = append(out, p[i])
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

func douglasPeucker(p Polygon, first, last int, tolerance float64, keep []bool) {
	if last <= first+1 {
		return
	}
	idx := -1
	var maxD float64
	for i := first + 1; i < last; i++ {
		if d := segmentDistance(p[i], p[first], p[last]); d > maxD {
			idx, maxD = i, d
		}
	}
	if idx < 0 || maxD <= tolerance {
		return
	}
	keep[idx] = true
	douglasPeucker(p, first, idx, tolerance, keep)
	douglasPeucker(p, idx, last, tolerance, keep)
}

// segmentDistance returns the distance from pt to the segment a-b.
func segmentDistance(pt, a, b Point) float64 {
	abx := float64(b.X - a.X)
	aby := float64(b.Y - a.Y)
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return pt.DistanceTo(a)
	}
	t := (float64(pt.X-a.X)*abx + float64(pt.Y-a.Y)*aby) / l2
	t = math.Max(0, math.Min(1, t))
	dx := float64(a.X) + t*abx - float64(pt.X)
	dy := float64(a.Y) + t*aby - float64(pt.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// RemoveCollinear drops vertices lying exactly on the line through their
// neighbours.
func (p Polygon) RemoveCollinear() Polygon {
	if len(p) < 3 {
		return nil
	}
	out := make(Polygon, 0, len(p))
	n := len(p)
	for i := 0; i < n; i++ {
		prev := p[(i+n-1)%n]
		next := p[(i+1)%n]
		if cross(prev, p[i], next) == 0 {
			continue
		}
		out = append(out, p[i])
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// Simplify simplifies every ring, dropping rings that collapse.
func (ps Polygons) Simplify(tolerance float64) Polygons {
	out := make(Polygons, 0, len(ps))
	for _, p := range ps {
		if s := p.Simplify(tolerance); len(s) >= 3 {
			out = append(out, s)
		}
	}
	return out
}
