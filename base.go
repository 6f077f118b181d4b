package support

import (
	"math"

	"github.com/layerforge/support/geom"
)

// baseLayers fills every intermediate layer with the support footprint of
// the object layer below it, minus the area owned by contact layers sharing
// its Z span, and trims the result against the object.
func (r *run) baseLayers(intermediate, top, bottom LayerList, footprints []geom.Polygons) {
	contacts := make(LayerList, 0, len(top)+len(bottom))
	contacts = append(contacts, top...)
	contacts = append(contacts, bottom...)

	r.pool.ForEach(len(intermediate), func(k int) {
		l := r.arena.Layer(intermediate[k])
		l.Kind = KindBase
		idx := max(r.objectLayerBelow(l.PrintZ), 0)
		footprint := footprints[idx]
		if len(footprint) == 0 {
			return
		}
		var owned geom.Polygons
		for _, id := range contacts {
			if c := r.arena.Layer(id); r.overlapsZ(l, c) {
				owned = append(owned, c.Polygons...)
			}
		}
		l.Polygons = geom.Diff(footprint, owned)
	})
	r.trim(intermediate, r.cfg.ContactDistanceTop, r.cfg.ContactDistanceBottom)
}

// trimTopByBottom resolves the area shared by top and bottom contacts. A
// bottom contact snapped onto a top contact's print Z gives way to it; any
// other top contact loses the area of bottom contacts sharing its Z span.
func (r *run) trimTopByBottom(top, bottom LayerList) {
	if len(bottom) == 0 {
		return
	}
	eps := r.cfg.ZEpsilon
	r.pool.ForEach(len(bottom), func(k int) {
		bc := r.arena.Layer(bottom[k])
		var clip geom.Polygons
		for _, id := range top {
			if tc := r.arena.Layer(id); math.Abs(tc.PrintZ-bc.PrintZ) < eps {
				clip = append(clip, tc.Polygons...)
			}
		}
		if len(clip) > 0 {
			bc.Polygons = geom.Diff(bc.Polygons, clip)
		}
	})
	r.pool.ForEach(len(top), func(k int) {
		tc := r.arena.Layer(top[k])
		var clip geom.Polygons
		for _, id := range bottom {
			if bc := r.arena.Layer(id); math.Abs(tc.PrintZ-bc.PrintZ) >= eps && r.overlapsZ(tc, bc) {
				clip = append(clip, bc.Polygons...)
			}
		}
		if len(clip) > 0 {
			tc.Polygons = geom.Diff(tc.Polygons, clip)
		}
	})
}

// overlapsZ reports whether the Z spans of a and b overlap by more than the
// merge epsilon.
func (r *run) overlapsZ(a, b *Layer) bool {
	eps := r.cfg.ZEpsilon
	return a.BottomZ < b.PrintZ-eps && b.BottomZ < a.PrintZ-eps
}
