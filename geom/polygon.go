package geom

import "math"

// Polygon is a closed ring of points. The closing edge from the last point
// back to the first is implicit.
type Polygon []Point

// Polygons is an unordered set of polygons interpreted with the non-zero rule.
type Polygons []Polygon

// Polyline is an open sequence of points.
type Polyline []Point

// SignedArea returns the signed area in square internal units. Counter-clockwise
// rings are positive.
func (p Polygon) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var a float64
	j := n - 1
	for i := 0; i < n; i++ {
		a += (float64(p[j].X) + float64(p[i].X)) * float64(p[j].Y-p[i].Y)
		j = i
	}
	return -a * 0.5
}

// Area returns the absolute area in square internal units.
func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

// IsCCW reports whether the ring is counter-clockwise.
func (p Polygon) IsCCW() bool {
	return p.SignedArea() > 0
}

// Reverse reverses the ring in place.
func (p Polygon) Reverse() {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

// Clone returns a copy of the ring.
func (p Polygon) Clone() Polygon {
	return append(Polygon(nil), p...)
}

// Contains reports whether pt lies inside the ring or on its boundary.
func (p Polygon) Contains(pt Point) bool {
	return p.winding(pt) != 0
}

// winding returns the winding number of the ring around pt. Points on the
// boundary report 1.
func (p Polygon) winding(pt Point) int {
	n := len(p)
	if n < 3 {
		return 0
	}
	wn := 0
	for i := 0; i < n; i++ {
		a := p[i]
		b := p[(i+1)%n]
		if a.Y <= pt.Y {
			if b.Y > pt.Y {
				c := cross(a, b, pt)
				if c > 0 {
					wn++
				} else if c == 0 {
					return 1
				}
			}
		} else if b.Y <= pt.Y {
			c := cross(a, b, pt)
			if c < 0 {
				wn--
			} else if c == 0 {
				return 1
			}
		}
		if a.Y == pt.Y && b.Y == pt.Y && between(pt.X, a.X, b.X) {
			return 1
		}
	}
	return wn
}

func between(v, a, b int64) bool {
	if a > b {
		a, b = b, a
	}
	return v >= a && v <= b
}

// Perimeter returns the length of the closed ring in internal units.
func (p Polygon) Perimeter() float64 {
	if len(p) < 2 {
		return 0
	}
	var l float64
	for i := range p {
		l += p[i].DistanceTo(p[(i+1)%len(p)])
	}
	return l
}

// Polyline returns the ring opened at its first point with the first point
// repeated at the end.
func (p Polygon) Polyline() Polyline {
	if len(p) == 0 {
		return nil
	}
	out := make(Polyline, 0, len(p)+1)
	out = append(out, p...)
	return append(out, p[0])
}

// Rotate returns the ring rotated around the origin by angle radians.
func (p Polygon) Rotate(angle float64) Polygon {
	s, c := math.Sincos(angle)
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = rotate(pt, s, c)
	}
	return out
}

// Translate returns the ring moved by d.
func (p Polygon) Translate(d Point) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = pt.Add(d)
	}
	return out
}

// Area returns the net signed area of the set. For output of the boolean
// operations this is outer area minus hole area.
func (ps Polygons) Area() float64 {
	var a float64
	for _, p := range ps {
		a += p.SignedArea()
	}
	return a
}

// Rotate returns every ring rotated around the origin.
func (ps Polygons) Rotate(angle float64) Polygons {
	if angle == 0 {
		return ps
	}
	out := make(Polygons, len(ps))
	for i, p := range ps {
		out[i] = p.Rotate(angle)
	}
	return out
}

// Contains reports whether pt is inside the set under the non-zero rule.
func (ps Polygons) Contains(pt Point) bool {
	wn := 0
	for _, p := range ps {
		if len(p) < 3 {
			continue
		}
		w := p.winding(pt)
		if w == 0 {
			continue
		}
		if p.IsCCW() {
			wn++
		} else {
			wn--
		}
	}
	return wn != 0
}

// Length returns the length of the polyline in internal units.
func (pl Polyline) Length() float64 {
	var l float64
	for i := 1; i < len(pl); i++ {
		l += pl[i-1].DistanceTo(pl[i])
	}
	return l
}

// Reverse reverses the polyline in place.
func (pl Polyline) Reverse() {
	for i, j := 0, len(pl)-1; i < j; i, j = i+1, j-1 {
		pl[i], pl[j] = pl[j], pl[i]
	}
}

// First returns the first point. The polyline must not be empty.
func (pl Polyline) First() Point { return pl[0] }

// Last returns the last point. The polyline must not be empty.
func (pl Polyline) Last() Point { return pl[len(pl)-1] }

// Rotate returns the polyline rotated around the origin.
func (pl Polyline) Rotate(angle float64) Polyline {
	s, c := math.Sincos(angle)
	out := make(Polyline, len(pl))
	for i, pt := range pl {
		out[i] = rotate(pt, s, c)
	}
	return out
}

// ExPolygon is an outer contour with zero or more holes.
type ExPolygon struct {
	Contour Polygon
	Holes   Polygons
}

// ExPolygons is a set of non-overlapping ExPolygon islands.
type ExPolygons []ExPolygon

// Area returns the contour area minus hole areas.
func (e ExPolygon) Area() float64 {
	a := e.Contour.Area()
	for _, h := range e.Holes {
		a -= h.Area()
	}
	return a
}

// Contains reports whether pt is inside the contour and outside every hole.
// Points on a hole boundary count as inside.
func (e ExPolygon) Contains(pt Point) bool {
	if !e.Contour.Contains(pt) {
		return false
	}
	for _, h := range e.Holes {
		if h.winding(pt) != 0 && !onBoundary(h, pt) {
			return false
		}
	}
	return true
}

func onBoundary(p Polygon, pt Point) bool {
	n := len(p)
	for i := 0; i < n; i++ {
		a, b := p[i], p[(i+1)%n]
		if cross(a, b, pt) == 0 && between(pt.X, a.X, b.X) && between(pt.Y, a.Y, b.Y) {
			return true
		}
	}
	return false
}

// Polygons returns the contour followed by the holes.
func (e ExPolygon) Polygons() Polygons {
	out := make(Polygons, 0, 1+len(e.Holes))
	out = append(out, e.Contour)
	return append(out, e.Holes...)
}

// Area returns the summed island area.
func (es ExPolygons) Area() float64 {
	var a float64
	for _, e := range es {
		a += e.Area()
	}
	return a
}

// Polygons flattens the islands into contours and holes.
func (es ExPolygons) Polygons() Polygons {
	var out Polygons
	for _, e := range es {
		out = append(out, e.Contour)
		out = append(out, e.Holes...)
	}
	return out
}

// Contours returns only the outer contours.
func (es ExPolygons) Contours() Polygons {
	out := make(Polygons, 0, len(es))
	for _, e := range es {
		out = append(out, e.Contour)
	}
	return out
}

// Rect returns a counter-clockwise axis-aligned rectangle.
func Rect(minX, minY, maxX, maxY int64) Polygon {
	return Polygon{{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}}
}

// RectMM returns a counter-clockwise rectangle given in millimetres.
func RectMM(minX, minY, maxX, maxY float64) Polygon {
	return Rect(Scaled(minX), Scaled(minY), Scaled(maxX), Scaled(maxY))
}

// Circle returns a counter-clockwise regular polygon approximating a circle.
func Circle(center Point, radius float64, segments int) Polygon {
	if segments < 3 {
		segments = 3
	}
	out := make(Polygon, segments)
	for i := range out {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(segments))
		out[i] = Point{
			X: center.X + int64(math.Round(radius*c)),
			Y: center.Y + int64(math.Round(radius*s)),
		}
	}
	return out
}
