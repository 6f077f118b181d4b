package support

import (
	"math"

	"github.com/layerforge/support/geom"
	"github.com/layerforge/support/internal/parallel"
)

// interfaceLayers splits dense interface layers off the base layers next to
// contacts. The contact itself counts as the first interface layer, so a
// count of n yields n-1 extra layers. With a soluble interface over a
// non-soluble base, the lower half of the top interface is printed as
// base-interface in the base material.
func (r *run) interfaceLayers(base, top, bottom LayerList) LayerList {
	topN := r.cfg.TopInterfaceLayers - 1
	botN := r.cfg.bottomInterfaceLayers() - 1
	if (topN <= 0 && botN <= 0) || len(base) == 0 {
		return nil
	}
	nBase := 0
	if r.cfg.SolubleInterface && topN > 1 {
		nBase = topN / 2
	}
	nIface := topN - nBase

	eps := r.cfg.ZEpsilon
	m := len(base)
	zAt := func(k int) float64 {
		switch {
		case k >= m:
			return math.Inf(1)
		case k < 0:
			return math.Inf(-1)
		}
		return r.arena.Layer(base[k]).PrintZ
	}

	perLayer := parallel.Map(r.pool, m, func(k int) []LayerID {
		l := r.arena.Layer(base[k])
		if l.Empty() {
			return nil
		}
		z := l.PrintZ
		var near, far, below geom.Polygons
		if nIface > 0 {
			near = r.unionWhere(top, func(c *Layer) bool {
				return c.PrintZ > z+eps && c.PrintZ <= zAt(k+nIface)+eps
			})
		}
		if nBase > 0 {
			far = r.unionWhere(top, func(c *Layer) bool {
				return c.PrintZ > z+eps && c.PrintZ <= zAt(k+topN)+eps
			})
		}
		if botN > 0 {
			below = r.unionWhere(bottom, func(c *Layer) bool {
				return c.PrintZ < z-eps && c.PrintZ >= zAt(k-botN)-eps
			})
		}

		var ids []LayerID
		split := func(clip geom.Polygons, kind LayerKind, baseInterface bool) {
			if len(clip) == 0 || l.Empty() {
				return
			}
			part := geom.Intersection(l.Polygons, clip)
			if len(part) == 0 {
				return
			}
			l.Polygons = geom.Diff(l.Polygons, clip)
			id, nl := r.arena.Alloc(k, kind)
			nl.PrintZ, nl.BottomZ, nl.Height = l.PrintZ, l.BottomZ, l.Height
			nl.Polygons = part
			nl.BaseInterface = baseInterface
			ids = append(ids, id)
		}
		split(near, KindTopInterface, false)
		split(below, KindBottomInterface, false)
		split(far, KindBase, true)
		return ids
	})

	var list LayerList
	for _, ids := range perLayer {
		list = append(list, ids...)
	}
	SortLayers(r.arena, list)
	return list
}

// unionWhere collects the polygons of the layers in list matching keep.
func (r *run) unionWhere(list LayerList, keep func(*Layer) bool) geom.Polygons {
	var out geom.Polygons
	for _, id := range list {
		if l := r.arena.Layer(id); keep(l) {
			out = append(out, l.Polygons...)
		}
	}
	return out
}
