package support

import "github.com/layerforge/support/geom"

// raftLayers builds the raft under the support columns and the object.
// Without a raft it keeps first-layer support clear of the brim instead.
//
// RaftLayers counts the raft contact created with the top contacts; the
// remaining layers are split into base and interface raft layers, keeping
// at least one base layer.
func (r *run) raftLayers(top, bottom, intermediate, iface LayerList) LayerList {
	lists := []LayerList{top, bottom, intermediate, iface}
	if !r.hasRaft {
		r.trimBrim(lists)
		return nil
	}

	eps := r.cfg.ZEpsilon
	var columns geom.Polygons
	for _, list := range lists {
		for _, id := range list {
			if l := r.arena.Layer(id); l.BottomZ <= r.raftTopZ+eps {
				columns = append(columns, l.Polygons...)
			}
		}
	}
	columns = geom.Union(columns)
	if len(columns) == 0 {
		return nil
	}

	n := r.cfg.RaftLayers
	expanded := geom.Offset(columns, float64(geom.Scaled(r.cfg.RaftExpansion)), geom.JoinRound)
	firstLayer := geom.Offset(expanded, float64(geom.Scaled(r.cfg.RaftFirstLayerExpansion)), geom.JoinRound)

	if contact := r.raftContactLayer(top); contact != nil {
		contact.Polygons = expanded
		if n == 1 {
			contact.Polygons = firstLayer
		}
	}

	nIface := max(min(r.cfg.TopInterfaceLayers, n-2), 0)
	nBase := n - 1 - nIface
	var list LayerList
	for k := 0; k < n-1; k++ {
		kind := KindRaftInterface
		if k < nBase {
			kind = KindRaftBase
		}
		id, l := r.arena.Alloc(k, kind)
		l.PrintZ = raftLayerZ(r.cfg, k)
		if k > 0 {
			l.BottomZ = raftLayerZ(r.cfg, k-1)
		}
		l.Height = l.PrintZ - l.BottomZ
		l.Polygons = expanded
		if k == 0 {
			l.Polygons = firstLayer
		}
		list = append(list, id)
	}
	return list
}

// raftContactLayer returns the top contact sitting on the raft top, or nil.
func (r *run) raftContactLayer(top LayerList) *Layer {
	for _, id := range top {
		l := r.arena.Layer(id)
		if l.PrintZ > r.raftTopZ+r.cfg.ZEpsilon {
			break
		}
		if l.IdxObjectLayerAbove == 0 {
			return l
		}
	}
	return nil
}

// trimBrim removes the brim area from first-layer support.
func (r *run) trimBrim(lists []LayerList) {
	if r.cfg.BrimWidth <= 0 {
		return
	}
	brim := geom.Offset(r.slices[0], float64(geom.Scaled(r.cfg.BrimWidth)), geom.JoinRound)
	limit := r.cfg.FirstLayerHeight - r.cfg.ZEpsilon
	for _, list := range lists {
		for _, id := range list {
			if l := r.arena.Layer(id); l.BottomZ < limit && !l.Empty() {
				l.Polygons = geom.Diff(l.Polygons, brim)
			}
		}
	}
}
