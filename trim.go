package support

import (
	"sort"

	"github.com/layerforge/support/geom"
)

// trim removes from every support layer in list the object slices that
// overlap the Z band [BottomZ-gapBelow, PrintZ+gapAbove], grown by the XY
// gap. Raft layers are left alone. trim never adds area.
func (r *run) trim(list LayerList, gapAbove, gapBelow float64) {
	r.pool.ForEach(len(list), func(k int) {
		l := r.arena.Layer(list[k])
		if l.Empty() || l.Kind == KindRaftBase || l.Kind == KindRaftInterface {
			return
		}
		clip := r.objectBand(l.BottomZ-gapBelow, l.PrintZ+gapAbove)
		if len(clip) == 0 {
			return
		}
		l.Polygons = geom.Diff(l.Polygons, clip)
	})
}

// bandKey identifies a band of object layers: slices [first, end) plus the
// bridge surfaces of layers [end, bridgeEnd).
type bandKey struct {
	first, end, bridgeEnd int
}

// objectBand returns the object slices overlapping the open Z interval
// (lo, hi), grown by the XY gap. With thick bridges, bridge surfaces whose
// bead hangs down into the interval are included as well.
func (r *run) objectBand(lo, hi float64) geom.Polygons {
	eps := r.cfg.ZEpsilon
	layers := r.obj.Layers
	first := sort.Search(len(layers), func(i int) bool {
		return layers[i].PrintZ > lo+eps
	})
	end := first
	for end < len(layers) && layers[end].BottomZ() < hi-eps {
		end++
	}
	bridgeEnd := end
	if r.cfg.ThickBridges {
		// Bridges of the layers just above hang below their layer bottom.
		for ; bridgeEnd < len(layers); bridgeEnd++ {
			l := layers[bridgeEnd]
			if l.PrintZ-l.bridgeFlow(r.cfg.NozzleDiameter).Height >= hi-eps {
				break
			}
		}
	}
	return r.band(bandKey{first, end, bridgeEnd})
}

// grownSlice returns the slices of object layer i grown by the XY gap.
func (r *run) grownSlice(i int) geom.Polygons {
	return r.band(bandKey{i, i + 1, i + 1})
}

// band builds or fetches the grown polygons of k. Neighbouring support
// layers of one stage usually cover the same object layers.
func (r *run) band(k bandKey) geom.Polygons {
	return r.bands.GetOrCreate(k, func() geom.Polygons {
		var band geom.Polygons
		for i := k.first; i < k.end; i++ {
			band = append(band, r.slices[i]...)
		}
		for i := k.end; i < k.bridgeEnd; i++ {
			band = append(band, surfacesOf(r.obj.Layers[i].Regions, SurfaceBottomBridge)...)
		}
		if len(band) == 0 {
			return nil
		}
		return geom.Offset(band, r.gapXY, geom.JoinMiter)
	})
}
