package support

import (
	"strings"

	"github.com/layerforge/support/extrusion"
	"github.com/layerforge/support/geom"
)

// KindSet is a set of layer kinds.
type KindSet uint16

// Has reports whether k is in the set.
func (s KindSet) Has(k LayerKind) bool { return s&(1<<k) != 0 }

func (s *KindSet) add(k LayerKind) { *s |= 1 << k }

func (s KindSet) String() string {
	var names []string
	for k := LayerKind(0); k < numKinds; k++ {
		if s.Has(k) {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, "+")
}

// Part is the contribution of one internal layer to a published layer.
// Its height may exceed the published height when it overlaps lower
// layers.
type Part struct {
	Kind          LayerKind
	Polygons      geom.Polygons
	Overhangs     geom.Polygons
	Bridging      bool
	BaseInterface bool
	BottomZ       float64
	Height        float64
	// Paths holds the part's toolpaths after modulation.
	Paths extrusion.Collection
}

// SupportLayer is one published support layer.
type SupportLayer struct {
	PrintZ  float64
	BottomZ float64
	// Height is the smallest height among the merged parts.
	Height float64
	Kinds  KindSet

	// Polygons is the union of all parts.
	Polygons geom.Polygons
	// Islands is Polygons split into islands for highlighting.
	Islands geom.ExPolygons
	Parts   []Part

	// Extrusions holds the support body and raft toolpaths.
	Extrusions extrusion.Collection
	// Interface holds the dense contact and interface toolpaths.
	Interface extrusion.Collection
}

// merge concatenates the non-empty layers of every list and merges layers
// whose print Z differ by less than ZEpsilon into published layers.
func (r *run) merge(lists ...LayerList) []*SupportLayer {
	var all LayerList
	for _, list := range lists {
		all = append(all, compact(r.arena, list)...)
	}
	SortLayers(r.arena, all)

	var (
		out []*SupportLayer
		cur *SupportLayer
	)
	for _, id := range all {
		l := r.arena.Layer(id)
		if cur == nil || l.PrintZ-cur.PrintZ >= r.cfg.ZEpsilon {
			cur = &SupportLayer{PrintZ: l.PrintZ, Height: l.Height}
			out = append(out, cur)
		}
		cur.Height = min(cur.Height, l.Height)
		cur.Kinds.add(l.Kind)
		part := Part{
			Kind:          l.Kind,
			Polygons:      l.Polygons,
			Bridging:      l.Bridging,
			BaseInterface: l.BaseInterface,
			BottomZ:       l.BottomZ,
			Height:        l.Height,
		}
		if l.Contact != nil {
			part.Overhangs = l.Contact.OverhangPolygons
		}
		cur.Parts = append(cur.Parts, part)
		cur.Polygons = append(cur.Polygons, l.Polygons...)
	}

	r.pool.ForEach(len(out), func(i int) {
		sl := out[i]
		sl.BottomZ = sl.PrintZ - sl.Height
		sl.Islands = geom.UnionEx(sl.Polygons)
		sl.Polygons = sl.Islands.Polygons()
	})
	r.checkLayers(out)
	return out
}

// checkLayers asserts the published sequence is well formed.
func (r *run) checkLayers(layers []*SupportLayer) {
	if !r.cfg.Debug {
		return
	}
	eps := r.cfg.ZEpsilon
	for i, l := range layers {
		r.assertf(l.Height > 0, "layer %d at z=%g has height %g", i, l.PrintZ, l.Height)
		r.assertf(l.BottomZ <= l.PrintZ, "layer %d bottom %g above top %g", i, l.BottomZ, l.PrintZ)
		r.assertf(l.PrintZ >= r.cfg.FirstLayerHeight-eps, "layer %d at z=%g below the first layer", i, l.PrintZ)
		if i > 0 {
			r.assertf(l.PrintZ-layers[i-1].PrintZ >= r.cfg.MinLayerHeight-eps,
				"layer %d at z=%g within the minimum layer height of z=%g", i, l.PrintZ, layers[i-1].PrintZ)
		}
	}
}
