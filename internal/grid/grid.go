// Package grid regularizes support polygons by snapping them to an
// oversampled pixel grid aligned with the infill spacing.
//
// Polygon offsetting at arbitrary angles accumulates self-intersections and
// drift when the same region is offset and clipped again by a later stage.
// Rasterizing onto a grid whose origin sits on multiples of the infill
// spacing makes the result a function of the covered grid cells only, so
// repeated extraction of the same area produces the same polygons.
package grid

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/layerforge/support/geom"
)

// DefaultOversampling is the number of pixels per spacing step.
const DefaultOversampling = 3

// coverageThreshold is the minimum alpha for a pixel to count as covered.
const coverageThreshold = 0x80

// simplifyTolerance is the contour simplification tolerance in pixels. It
// stays below half a pixel so re-rasterizing a simplified staircase covers
// the same pixels at coverageThreshold.
const simplifyTolerance = 0.45

// Params configures a Pattern.
type Params struct {
	// Spacing is the infill line spacing in internal units. Macro-blocks
	// are Spacing wide.
	Spacing int64
	// Angle is the infill angle in radians. The grid is built in a frame
	// rotated by -Angle so its axes follow the infill lines.
	Angle float64
	// Oversampling is the number of pixels per Spacing. Zero selects
	// DefaultOversampling.
	Oversampling int
}

// Pattern is the rasterized state of one support region. It is a derived
// cache scoped to a single contact or footprint computation.
type Pattern struct {
	params Params
	// pixel is the pixel edge length in internal units.
	pixel int64
	// origin is the world position of pixel vertex (0,0) in the rotated frame.
	origin  geom.Point
	w, h    int
	filled  []bool
	trim    geom.Polygons // rotated trimming polygons
	samples []geom.Point  // rotated island samples
}

// New rasterizes support and trimming and seed-fills the support grid.
// support and trimming are in world coordinates.
func New(support, trimming geom.Polygons, p Params) *Pattern {
	if p.Oversampling <= 0 {
		p.Oversampling = DefaultOversampling
	}
	pat := &Pattern{params: p}
	if p.Spacing <= 0 || len(support) == 0 {
		return pat
	}
	pat.pixel = max(p.Spacing/int64(p.Oversampling), 1)
	block := pat.pixel * int64(p.Oversampling)

	sup := support.Rotate(-p.Angle)
	pat.trim = trimming.Rotate(-p.Angle)

	bb := geom.NewBoundingBox(sup)
	if bb.Empty() {
		return pat
	}
	bb = bb.Offset(block).AlignToGrid(block)
	pat.origin = bb.Min
	pat.w = int(bb.Width() / pat.pixel)
	pat.h = int(bb.Height() / pat.pixel)
	if pat.w <= 0 || pat.h <= 0 {
		return pat
	}

	covered := pat.rasterize(sup, coverageThreshold)
	frame := geom.Polygons{geom.Rect(bb.Min.X, bb.Min.Y, bb.Max.X, bb.Max.Y)}
	mask := dilate(pat.rasterize(geom.Intersection(pat.trim, frame), 1), pat.w, pat.h)

	pat.filled = seedFill(covered, mask, pat.w, pat.h, p.Oversampling)
	pat.samples = islandSamples(sup)
	return pat
}

// rasterize scan-converts polys into a bitmap. A pixel is set when its
// coverage reaches threshold (1..255).
func (p *Pattern) rasterize(polys geom.Polygons, threshold uint8) []bool {
	out := make([]bool, p.w*p.h)
	if len(polys) == 0 {
		return out
	}
	r := vector.NewRasterizer(p.w, p.h)
	r.DrawOp = draw.Src
	scale := 1 / float64(p.pixel)
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		for i, pt := range poly {
			x := float32(float64(pt.X-p.origin.X) * scale)
			y := float32(float64(pt.Y-p.origin.Y) * scale)
			if i == 0 {
				r.MoveTo(x, y)
			} else {
				r.LineTo(x, y)
			}
		}
		r.ClosePath()
	}
	dst := image.NewAlpha(image.Rect(0, 0, p.w, p.h))
	r.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	for j := 0; j < p.h; j++ {
		row := dst.Pix[j*dst.Stride : j*dst.Stride+p.w]
		for i, a := range row {
			out[j*p.w+i] = a >= threshold
		}
	}
	return out
}

// ExtractSupport traces the filled grid back to polygons, optionally filling
// enclosed holes, offsets the result by offset internal units, subtracts the
// trimming polygons and keeps only islands containing an interior sample of
// the original support. The result is in world coordinates.
func (p *Pattern) ExtractSupport(offset float64, fillHoles bool) geom.Polygons {
	if len(p.filled) == 0 {
		return nil
	}
	rings := traceContours(p.filled, p.w, p.h)
	polys := make(geom.Polygons, 0, len(rings))
	for _, r := range rings {
		if fillHoles && !r.IsCCW() {
			continue
		}
		polys = append(polys, p.toWorld(r))
	}
	polys = geom.Union(polys).Simplify(simplifyTolerance * float64(p.pixel))
	if offset != 0 {
		polys = geom.Offset(polys, offset, geom.JoinMiter)
	}
	islands := geom.DiffEx(polys, p.trim)

	var out geom.Polygons
	for _, isl := range islands {
		if !containsAny(isl, p.samples) {
			continue
		}
		out = append(out, isl.Polygons()...)
	}
	return out.Rotate(p.params.Angle)
}

// toWorld converts pixel-vertex coordinates to the rotated frame.
func (p *Pattern) toWorld(r geom.Polygon) geom.Polygon {
	out := make(geom.Polygon, len(r))
	for i, v := range r {
		out[i] = geom.Point{X: p.origin.X + v.X*p.pixel, Y: p.origin.Y + v.Y*p.pixel}
	}
	return out
}

func containsAny(isl geom.ExPolygon, pts []geom.Point) bool {
	for _, pt := range pts {
		if isl.Contains(pt) {
			return true
		}
	}
	return false
}

// maxContourSamples bounds the number of contour vertices sampled per island.
const maxContourSamples = 8

// islandSamples returns, per island, one interior point and a few contour
// vertices. Contour vertices keep an island whose interior point falls
// inside the trimmed area.
func islandSamples(polys geom.Polygons) []geom.Point {
	var out []geom.Point
	for _, isl := range geom.UnionEx(polys) {
		if pt, ok := isl.InteriorPoint(); ok {
			out = append(out, pt)
		}
		c := isl.Contour
		step := max(int(math.Ceil(float64(len(c))/maxContourSamples)), 1)
		for i := 0; i < len(c); i += step {
			out = append(out, c[i])
		}
	}
	return out
}
