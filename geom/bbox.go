package geom

import "math"

// BoundingBox is an axis-aligned box. The zero value is empty.
type BoundingBox struct {
	Min, Max Point
	defined  bool
}

// NewBoundingBox returns the bounding box of the given polygons.
func NewBoundingBox(polys Polygons) BoundingBox {
	var bb BoundingBox
	for _, p := range polys {
		for _, pt := range p {
			bb.Extend(pt)
		}
	}
	return bb
}

// Empty reports whether the box contains no points.
func (bb BoundingBox) Empty() bool {
	return !bb.defined
}

// Extend grows the box to include pt.
func (bb *BoundingBox) Extend(pt Point) {
	if !bb.defined {
		bb.Min, bb.Max, bb.defined = pt, pt, true
		return
	}
	bb.Min.X = min(bb.Min.X, pt.X)
	bb.Min.Y = min(bb.Min.Y, pt.Y)
	bb.Max.X = max(bb.Max.X, pt.X)
	bb.Max.Y = max(bb.Max.Y, pt.Y)
}

// Merge grows the box to include other.
func (bb *BoundingBox) Merge(other BoundingBox) {
	if other.Empty() {
		return
	}
	bb.Extend(other.Min)
	bb.Extend(other.Max)
}

// Offset grows the box by d on every side.
func (bb BoundingBox) Offset(d int64) BoundingBox {
	if bb.Empty() {
		return bb
	}
	bb.Min.X -= d
	bb.Min.Y -= d
	bb.Max.X += d
	bb.Max.Y += d
	return bb
}

// AlignToGrid snaps Min down and Max up to multiples of step, so boxes
// built from different inputs share the same grid lines.
func (bb BoundingBox) AlignToGrid(step int64) BoundingBox {
	if bb.Empty() || step <= 0 {
		return bb
	}
	bb.Min.X = floorTo(bb.Min.X, step)
	bb.Min.Y = floorTo(bb.Min.Y, step)
	bb.Max.X = ceilTo(bb.Max.X, step)
	bb.Max.Y = ceilTo(bb.Max.Y, step)
	return bb
}

func floorTo(v, step int64) int64 {
	return int64(math.Floor(float64(v)/float64(step))) * step
}

func ceilTo(v, step int64) int64 {
	return int64(math.Ceil(float64(v)/float64(step))) * step
}

// Width returns Max.X-Min.X.
func (bb BoundingBox) Width() int64 { return bb.Max.X - bb.Min.X }

// Height returns Max.Y-Min.Y.
func (bb BoundingBox) Height() int64 { return bb.Max.Y - bb.Min.Y }

// Overlaps reports whether two boxes share any area or boundary.
func (bb BoundingBox) Overlaps(other BoundingBox) bool {
	if bb.Empty() || other.Empty() {
		return false
	}
	return bb.Min.X <= other.Max.X && other.Min.X <= bb.Max.X &&
		bb.Min.Y <= other.Max.Y && other.Min.Y <= bb.Max.Y
}

// Center returns the midpoint of the box.
func (bb BoundingBox) Center() Point {
	return Point{X: (bb.Min.X + bb.Max.X) / 2, Y: (bb.Min.Y + bb.Max.Y) / 2}
}
