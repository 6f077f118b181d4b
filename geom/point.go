package geom

import "math"

// Scale is the number of internal units per millimetre.
const Scale = 1e6

// Scaled converts millimetres to internal units, rounding to the nearest unit.
func Scaled(mm float64) int64 {
	return int64(math.Round(mm * Scale))
}

// Unscaled converts internal units to millimetres.
func Unscaled(v int64) float64 {
	return float64(v) / Scale
}

// Point is a 2D point in internal units.
type Point struct {
	X, Y int64
}

// Pt creates a Point from internal-unit coordinates.
func Pt(x, y int64) Point {
	return Point{X: x, Y: y}
}

// PtMM creates a Point from millimetre coordinates.
func PtMM(x, y float64) Point {
	return Point{X: Scaled(x), Y: Scaled(y)}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// DistanceTo returns the Euclidean distance between p and q in internal units.
func (p Point) DistanceTo(q Point) float64 {
	dx := float64(p.X - q.X)
	dy := float64(p.Y - q.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Rotate rotates p around the origin by angle radians (counter-clockwise).
func (p Point) Rotate(angle float64) Point {
	s, c := math.Sincos(angle)
	return rotate(p, s, c)
}

func rotate(p Point, s, c float64) Point {
	x := float64(p.X)
	y := float64(p.Y)
	return Point{
		X: int64(math.Round(c*x - s*y)),
		Y: int64(math.Round(s*x + c*y)),
	}
}

// cross returns the z component of (b-a) x (c-a).
func cross(a, b, c Point) float64 {
	return float64(b.X-a.X)*float64(c.Y-a.Y) - float64(b.Y-a.Y)*float64(c.X-a.X)
}
