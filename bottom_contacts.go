package support

import (
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/layerforge/support/geom"
)

// bottomContacts sweeps the object from the top down, carrying the support
// demand of the top contacts above as a projection. Where the projection
// meets a top surface of the object a bottom contact is created; what is
// left continues downwards. It returns the bottom contacts, sorted and
// trimmed, and the support footprint below each object layer.
func (r *run) bottomContacts(top LayerList) (LayerList, []geom.Polygons) {
	n := len(r.obj.Layers)
	footprints := make([]geom.Polygons, n)
	eps := r.cfg.ZEpsilon

	var (
		list       LayerList
		projection geom.Polygons
		next       = len(top) - 1
	)
	for i := n - 1; i >= 0; i-- {
		layer := r.obj.Layers[i]
		for ; next >= 0; next-- {
			tc := r.arena.Layer(top[next])
			if tc.PrintZ <= layer.PrintZ-eps {
				break
			}
			projection = append(projection, tc.Polygons...)
		}

		touching, footprint := r.bottomContactStep(projection, i)
		footprints[i] = footprint
		projection = footprint
		if len(touching) > 0 {
			if id := r.newBottomContact(i, touching, top); id != NoLayer {
				list = append(list, id)
			}
		}
	}

	SortLayers(r.arena, list)
	r.spaceBottomContacts(list)
	r.trim(list, r.cfg.ContactDistanceTop, r.cfg.ContactDistanceBottom)
	return list, footprints
}

// bottomContactStep splits the projection arriving at object layer i into
// the area touching the layer's top surfaces and the grid-aligned footprint
// carried to the layers below. Both halves run concurrently.
func (r *run) bottomContactStep(projection geom.Polygons, i int) (touching, footprint geom.Polygons) {
	if len(projection) == 0 {
		return nil, nil
	}
	var g errgroup.Group
	g.Go(func() error {
		touching = geom.Intersection(projection, r.topSurfaces(i))
		return nil
	})
	g.Go(func() error {
		trimming := r.grownSlice(i)
		footprint = r.regularize(projection, trimming)
		return nil
	})
	_ = g.Wait()
	return touching, footprint
}

// topSurfaces returns the upward-facing area of layer i: its top surfaces
// when the regions carry them, else the part not covered by the layer above.
func (r *run) topSurfaces(i int) geom.Polygons {
	if top := surfacesOf(r.obj.Layers[i].Regions, SurfaceTop); len(top) > 0 {
		return top
	}
	if i+1 < len(r.slices) {
		return geom.Diff(r.slices[i], r.slices[i+1])
	}
	return r.slices[i]
}

func (r *run) newBottomContact(i int, touching geom.Polygons, top LayerList) LayerID {
	layer := r.obj.Layers[i]
	var bottomZ, height float64
	if r.soluble {
		bottomZ, height = layer.PrintZ, layer.Height
		if i+1 < len(r.obj.Layers) {
			height = r.obj.Layers[i+1].Height
		}
		height = max(height, r.cfg.MinLayerHeight)
	} else {
		bottomZ = layer.PrintZ + r.cfg.ContactDistanceBottom
		height = r.cfg.LayerHeight
	}
	printZ := bottomZ + height
	if z, ok := r.snapToTopContact(printZ, top); ok && z > bottomZ+r.cfg.ZEpsilon {
		printZ = z
	}

	var trimming geom.Polygons
	if i+1 < len(r.slices) {
		trimming = r.grownSlice(i + 1)
	}
	polys := r.regularizeContact(touching, trimming)
	if len(polys) == 0 {
		return NoLayer
	}

	id, l := r.arena.Alloc(i, KindBottomContact)
	l.BottomZ = bottomZ
	l.PrintZ = printZ
	l.Height = printZ - bottomZ
	l.Polygons = polys
	l.IdxObjectLayerBelow = i
	return id
}

// spaceBottomContacts lowers a bottom contact closer than the minimum layer
// height above the previous one onto that contact's print Z. list must be
// sorted.
func (r *run) spaceBottomContacts(list LayerList) {
	eps, minH := r.cfg.ZEpsilon, r.cfg.MinLayerHeight
	var prev *Layer
	for _, id := range list {
		l := r.arena.Layer(id)
		if prev != nil && l.PrintZ-prev.PrintZ < minH-eps && prev.PrintZ > l.BottomZ+eps {
			l.PrintZ = prev.PrintZ
			l.Height = l.PrintZ - l.BottomZ
			continue
		}
		prev = l
	}
}

// snapToTopContact returns the print Z of the top contact nearest to z when
// it lies within the snap tolerance, or closer than the minimum layer
// height. top must be sorted.
func (r *run) snapToTopContact(z float64, top LayerList) (float64, bool) {
	tol := max(r.cfg.BottomContactSnapTolerance, r.cfg.MinLayerHeight-r.cfg.ZEpsilon)
	k := sort.Search(len(top), func(k int) bool {
		return r.arena.Layer(top[k]).PrintZ >= z
	})
	best, found := 0.0, false
	for _, c := range []int{k - 1, k} {
		if c < 0 || c >= len(top) {
			continue
		}
		tz := r.arena.Layer(top[c]).PrintZ
		d := math.Abs(tz - z)
		if d <= tol && (!found || d < math.Abs(best-z)) {
			best, found = tz, true
		}
	}
	return best, found
}
