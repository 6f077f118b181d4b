package support

import (
	"math"

	"github.com/layerforge/support/geom"
	"github.com/layerforge/support/internal/parallel"
)

// Contact areas grow in small steps so that each step can be clipped by the
// lower layer; one large offset would jump across thin walls.
const (
	marginSteps = 3
	marginStep  = 0.5 // mm
)

// topContacts creates a top contact layer under every overhang of the
// object, plus a raft contact under the first layer when a raft is printed.
// The returned list is sorted and merged.
func (r *run) topContacts() LayerList {
	masks := r.buildplateMasks()
	perLayer := parallel.Map(r.pool, len(r.obj.Layers), func(i int) []LayerID {
		return r.topContactsAt(i, masks)
	})

	var list LayerList
	for _, ids := range perLayer {
		list = append(list, ids...)
	}
	list = compact(r.arena, list)
	SortLayers(r.arena, list)
	return r.mergeTopContacts(list)
}

// buildplateMasks returns, per layer, the union of all lower slices. Support
// inside a mask would stand on the object. It is nil unless BuildplateOnly.
func (r *run) buildplateMasks() []geom.Polygons {
	if !r.cfg.BuildplateOnly {
		return nil
	}
	masks := make([]geom.Polygons, len(r.slices))
	for i := 1; i < len(r.slices); i++ {
		masks[i] = geom.Union(masks[i-1], r.slices[i-1])
	}
	return masks
}

func (r *run) topContactsAt(i int, masks []geom.Polygons) []LayerID {
	if i == 0 {
		if !r.hasRaft {
			return nil
		}
		return []LayerID{r.raftContact()}
	}

	var mask geom.Polygons
	if masks != nil {
		mask = masks[i]
	}
	overhang, bridges := r.overhangAt(i, mask)
	if len(overhang) == 0 {
		return nil
	}

	layer, lower := r.obj.Layers[i], r.obj.Layers[i-1]
	lowerGrown := r.grownSlice(i - 1)
	contact := r.contactArea(overhang, lowerGrown)
	contact = geom.Diff(contact, geom.Union(perLayer(r.obj.Blockers, i), mask))
	if len(contact) == 0 {
		return nil
	}

	var printZ, height float64
	if r.soluble {
		printZ, height = layer.BottomZ(), max(lower.Height, r.cfg.MinLayerHeight)
	} else {
		printZ = layer.BottomZ() - r.cfg.ContactDistanceTop
	}
	floor := r.floorZ() - r.cfg.ZEpsilon

	var ids []LayerID
	if r.cfg.ThickBridges && !r.soluble && len(bridges) > 0 {
		bf := layer.bridgeFlow(r.cfg.NozzleDiameter)
		bridgeZ := layer.PrintZ - bf.Height - r.cfg.ContactDistanceTop
		bridgeOverhang := geom.Intersection(overhang, bridges)
		if math.Abs(bf.Height-layer.Height) > r.cfg.ZEpsilon && bridgeZ >= floor && len(bridgeOverhang) > 0 {
			reach := float64(geom.Scaled(marginSteps*marginStep)) + r.gapXY
			bridgeContact := geom.Intersection(contact, geom.Offset(bridgeOverhang, reach, geom.JoinRound))
			contact = geom.Diff(contact, bridgeContact)
			overhang = geom.Diff(overhang, bridgeOverhang)

			id, l := r.newTopContact(i, bridgeZ, 0, bridgeContact, bridgeOverhang, lowerGrown)
			l.Bridging = true
			ids = append(ids, id)
		}
	}

	if printZ >= floor && len(contact) > 0 {
		id, _ := r.newTopContact(i, printZ, height, contact, overhang, lowerGrown)
		ids = append(ids, id)
	}
	return ids
}

// overhangAt returns the unsupported part of layer i and the layer's bridge
// surfaces.
func (r *run) overhangAt(i int, mask geom.Polygons) (overhang, bridges geom.Polygons) {
	layer, lower := r.obj.Layers[i], r.obj.Layers[i-1]
	cur, below := r.slices[i], r.slices[i-1]

	var offset float64
	switch {
	case i < r.cfg.EnforceLayers:
	case r.cfg.ThresholdAngle > 0:
		offset = layer.Height / math.Tan(r.cfg.ThresholdAngle*math.Pi/180)
	default:
		offset = 0.5 * lower.perimeterWidth(r.cfg.SupportWidth)
	}
	overhang = geom.Diff(cur, geom.Offset(below, float64(geom.Scaled(offset)), geom.JoinMiter))

	if enf := perLayer(r.obj.Enforcers, i); len(enf) > 0 {
		overhang = geom.Union(overhang, geom.Intersection(geom.Diff(cur, below), enf))
	}
	if blk := perLayer(r.obj.Blockers, i); len(blk) > 0 {
		overhang = geom.Diff(overhang, blk)
	}
	if len(mask) > 0 {
		overhang = geom.Diff(overhang, mask)
	}

	bridges = surfacesOf(layer.Regions, SurfaceBottomBridge)
	if r.cfg.DontSupportBridges && len(bridges) > 0 {
		overhang = geom.Diff(overhang, bridges)
		bridges = nil
	}
	return overhang, bridges
}

// contactArea closes gaps between neighbouring overhangs and grows the
// result by the contact margin, never closer than the XY gap to the lower
// layer.
func (r *run) contactArea(overhang, lowerGrown geom.Polygons) geom.Polygons {
	contact := overhang
	if r.cfg.ClosingRadius > 0 {
		d := float64(geom.Scaled(r.cfg.ClosingRadius))
		contact = geom.Offset2(contact, d, -d, geom.JoinRound)
	}
	contact = geom.Diff(contact, lowerGrown)
	step := float64(geom.Scaled(marginStep))
	for range marginSteps {
		contact = geom.Diff(geom.Offset(contact, step, geom.JoinRound), lowerGrown)
	}
	return contact
}

func (r *run) newTopContact(objIdx int, printZ, height float64, contact, overhang, trimming geom.Polygons) (LayerID, *Layer) {
	id, l := r.arena.Alloc(objIdx, KindTopContact)
	l.PrintZ = printZ
	l.Height = height
	l.BottomZ = printZ - height
	l.Contact = &ContactPayload{ContactPolygons: contact, OverhangPolygons: overhang}
	l.Polygons = r.regularizeContact(contact, trimming)
	l.IdxObjectLayerAbove = objIdx
	return id, l
}

// raftContact places the whole first object layer on the raft top.
func (r *run) raftContact() LayerID {
	slices := r.slices[0]
	id, _ := r.newTopContact(0, r.raftTopZ, r.floorHeight(), slices, slices, nil)
	return id
}

// mergeTopContacts folds contacts closer than the minimum layer height into
// the lowest one, whose Z the group keeps, and snaps contacts just above the
// floor onto it. list must be sorted.
func (r *run) mergeTopContacts(list LayerList) LayerList {
	var (
		eps   = r.cfg.ZEpsilon
		minH  = r.cfg.MinLayerHeight
		floor = r.floorZ()
		out   LayerList
		group *Layer
	)
	for _, id := range list {
		l := r.arena.Layer(id)
		if l.PrintZ < floor+minH-eps {
			l.PrintZ = floor
			if l.Height > 0 && !r.hasRaft {
				l.Height = floor
			}
			l.BottomZ = l.PrintZ - l.Height
		}
		if group != nil && l.PrintZ < group.PrintZ+minH-eps {
			group.Polygons = geom.Union(group.Polygons, l.Polygons)
			group.Contact.ContactPolygons = append(group.Contact.ContactPolygons, l.Contact.ContactPolygons...)
			group.Contact.OverhangPolygons = append(group.Contact.OverhangPolygons, l.Contact.OverhangPolygons...)
			group.Bridging = group.Bridging && l.Bridging
			continue
		}
		out = append(out, id)
		group = l
	}
	return out
}
