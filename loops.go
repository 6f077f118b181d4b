package support

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/layerforge/support/extrusion"
	"github.com/layerforge/support/geom"
)

// Contact loops are anchored by circles of anchorRadius widths placed every
// anchorPitch radii along the overhang outline.
const (
	anchorRadius   = 1.5
	anchorPitch    = 3.0
	anchorSegments = 16
)

// anchorWalk places points at a fixed arc-length pitch along a polyline.
// It is folded over the vertices with step; carry is the distance walked
// since the last anchor.
type anchorWalk struct {
	pitch   float64
	carry   float64
	prev    r2.Vec
	anchors []r2.Vec
}

// startWalk begins a walk with an anchor at p.
func startWalk(p r2.Vec, pitch float64) anchorWalk {
	return anchorWalk{pitch: pitch, prev: p, anchors: []r2.Vec{p}}
}

// step advances the walk to p, emitting every anchor passed on the way.
func (w anchorWalk) step(p r2.Vec) anchorWalk {
	seg := r2.Sub(p, w.prev)
	l := r2.Norm(seg)
	for l > 0 && w.carry+l >= w.pitch {
		t := (w.pitch - w.carry) / l
		a := r2.Add(w.prev, r2.Scale(t, seg))
		w.anchors = append(w.anchors, a)
		w.prev, w.carry = a, 0
		seg = r2.Sub(p, a)
		l = r2.Norm(seg)
	}
	w.carry += l
	w.prev = p
	return w
}

func vec(p geom.Point) r2.Vec { return r2.Vec{X: float64(p.X), Y: float64(p.Y)} }

func point(v r2.Vec) geom.Point {
	return geom.Point{X: int64(math.Round(v.X)), Y: int64(math.Round(v.Y))}
}

// contactLoops traces the overhang outline of a top contact half a width
// inside the overhang and keeps the pieces around the anchor circles. It
// returns the loop pieces and the anchor area they occupy.
func (r *run) contactLoops(part *Part, flow extrusion.Flow) (loops []geom.Polyline, anchors geom.Polygons) {
	width := float64(flow.ScaledWidth())
	radius := anchorRadius * width
	rings := geom.Offset(part.Overhangs, -width/2, geom.JoinMiter)
	if len(rings) == 0 {
		return nil, nil
	}

	var circles geom.Polygons
	lines := make([]geom.Polyline, 0, len(rings))
	for _, ring := range rings {
		w := startWalk(vec(ring[0]), anchorPitch*radius)
		for _, pt := range ring[1:] {
			w = w.step(vec(pt))
		}
		w = w.step(vec(ring[0]))
		for _, a := range w.anchors {
			circles = append(circles, geom.Circle(point(a), radius, anchorSegments))
		}
		lines = append(lines, ring.Polyline())
	}

	anchors = geom.Intersection(geom.Union(circles), part.Polygons)
	return geom.ClipPolylines(lines, anchors), anchors
}
