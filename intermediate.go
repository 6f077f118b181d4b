package support

import (
	"math"
	"sort"
)

// boundary is a Z where the support body must end: the floor, the print Z
// of a contact or the bottom of a top contact that already has a height.
// tcs lists the top contacts still waiting for a height; they take the step
// just below z.
type boundary struct {
	z   float64
	tcs []*Layer
}

// boundaries returns the sorted boundaries of the support body. Contact
// print Z values are already at least MinLayerHeight apart; a top contact
// bottom closer than that to another boundary is moved onto it, so
// consecutive boundaries never form a sliver.
func (r *run) boundaries(top, bottom LayerList) []boundary {
	var (
		eps   = r.cfg.ZEpsilon
		minH  = r.cfg.MinLayerHeight
		floor = r.floorZ()
		bs    = []boundary{{z: floor}}
	)
	for _, id := range top {
		l := r.arena.Layer(id)
		b := boundary{z: l.PrintZ}
		if l.Height == 0 {
			b.tcs = []*Layer{l}
		}
		bs = append(bs, b)
	}
	for _, id := range bottom {
		bs = append(bs, boundary{z: r.arena.Layer(id).PrintZ})
	}
	sort.SliceStable(bs, func(i, j int) bool { return bs[i].z < bs[j].z })

	out := bs[:0]
	for _, b := range bs {
		if n := len(out); n > 0 && b.z-out[n-1].z < eps {
			out[n-1].tcs = append(out[n-1].tcs, b.tcs...)
			continue
		}
		out = append(out, b)
	}

	for _, id := range top {
		l := r.arena.Layer(id)
		if l.Height == 0 || l.BottomZ <= floor+eps {
			continue
		}
		k := sort.Search(len(out), func(k int) bool { return out[k].z >= l.BottomZ })
		near := -1
		for _, c := range []int{k - 1, k} {
			if c < 0 || c >= len(out) || out[c].z >= l.PrintZ-eps {
				continue
			}
			if d := math.Abs(out[c].z - l.BottomZ); d < minH-eps && (near < 0 || d < math.Abs(out[near].z-l.BottomZ)) {
				near = c
			}
		}
		if near >= 0 {
			l.BottomZ = out[near].z
			l.Height = l.PrintZ - l.BottomZ
			continue
		}
		out = append(out, boundary{})
		copy(out[k+1:], out[k:])
		out[k] = boundary{z: l.BottomZ}
	}
	return out
}

// intermediateLayers allocates the body layers between the raft (or the
// bed) and the contacts, and gives zero-height top contacts their height.
func (r *run) intermediateLayers(top, bottom LayerList) LayerList {
	var (
		eps  = r.cfg.ZEpsilon
		prev float64
		list LayerList
	)
	if r.hasRaft {
		prev = r.raftTopZ
	}
	emit := func(lo, hi float64) {
		id, l := r.arena.Alloc(0, KindIntermediate)
		l.BottomZ, l.PrintZ, l.Height = lo, hi, hi-lo
		list = append(list, id)
	}
	setHeight := func(tcs []*Layer, h float64) {
		for _, tc := range tcs {
			if tc.Height == 0 {
				tc.Height = min(h, tc.PrintZ)
				tc.BottomZ = tc.PrintZ - tc.Height
			}
		}
	}

	for _, b := range r.boundaries(top, bottom) {
		if b.z < prev+eps {
			setHeight(b.tcs, r.floorHeight())
			continue
		}
		if prev == 0 {
			// The bed layer, at the first layer height.
			if len(b.tcs) > 0 {
				setHeight(b.tcs, b.z)
			} else {
				emit(0, b.z)
			}
			prev = b.z
			continue
		}
		r.assertf(b.z-prev >= r.cfg.MinLayerHeight-eps, "boundary at z=%g only %g above z=%g", b.z, b.z-prev, prev)

		bounds := r.intervalBounds(prev, b.z)
		if len(b.tcs) > 0 {
			lo := prev
			if len(bounds) > 1 {
				lo = bounds[len(bounds)-2]
			}
			setHeight(b.tcs, b.z-lo)
			bounds = bounds[:len(bounds)-1]
		}
		lo := prev
		for _, z := range bounds {
			emit(lo, z)
			lo = z
		}
		prev = b.z
	}

	SortLayers(r.arena, list)
	return list
}

// intervalBounds returns the ascending layer tops that split (lo, hi]; the
// last one is hi. Stepped mode uses equal steps no taller than the maximum
// layer height; synchronized mode follows the object layers. Neither ever
// makes a step thinner than the minimum layer height: a thin leading or
// trailing slice is folded into its neighbour.
func (r *run) intervalBounds(lo, hi float64) []float64 {
	eps, minH := r.cfg.ZEpsilon, r.cfg.MinLayerHeight
	if r.cfg.SynchronizeLayers {
		var out []float64
		last := lo
		for _, l := range r.obj.Layers {
			if l.PrintZ-last >= minH-eps && hi-l.PrintZ >= minH-eps {
				out = append(out, l.PrintZ)
				last = l.PrintZ
			}
		}
		return append(out, hi)
	}

	n := int(math.Ceil((hi-lo)/r.cfg.MaxLayerHeight - eps))
	n = max(min(n, int(math.Floor((hi-lo)/minH+eps))), 1)
	step := (hi - lo) / float64(n)
	out := make([]float64, n)
	for k := 1; k < n; k++ {
		out[k-1] = lo + float64(k)*step
	}
	out[n-1] = hi
	return out
}
