package fill

import "github.com/layerforge/support/geom"

// Concentric fills with loops parallel to the region outline, the outermost
// half a spacing inside the boundary.
type Concentric struct{}

// Fill implements Filler. Loops are returned as closed polylines, outermost
// first.
func (Concentric) Fill(region geom.ExPolygon, p Params) ([]geom.Polyline, error) {
	if err := checkRegion(region, p); err != nil {
		return nil, err
	}
	var out []geom.Polyline
	ring := geom.Offset(region.Polygons(), -float64(p.Spacing)/2, geom.JoinMiter)
	for len(ring) > 0 {
		for _, loop := range ring {
			out = append(out, loop.Polyline())
		}
		ring = geom.Offset(ring, -float64(p.Spacing), geom.JoinMiter)
	}
	if len(out) == 0 {
		return nil, ErrTooSmall
	}
	return out, nil
}

// Loops returns the outline loops of polys offset inward by inset.
func Loops(polys geom.Polygons, inset float64) geom.Polygons {
	return geom.Offset(polys, -inset, geom.JoinMiter)
}
