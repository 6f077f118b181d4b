package support

import (
	"math"

	"github.com/layerforge/support/extrusion"
	"github.com/layerforge/support/geom"
	"github.com/layerforge/support/internal/fill"
)

// toolpaths fills every published layer, then thins the paths of parts
// that overlap lower layers.
func (r *run) toolpaths(layers []*SupportLayer) {
	r.pool.ForEach(len(layers), func(i int) {
		r.fillLayer(i, layers[i])
	})
	r.pool.ForEach(len(layers), func(i int) {
		r.modulate(layers, i)
		l := layers[i]
		for _, p := range l.Parts {
			l.Extrusions = append(l.Extrusions, p.Paths.ByRole(extrusion.RoleSupportMaterial)...)
			l.Interface = append(l.Interface, p.Paths.ByRole(extrusion.RoleSupportMaterialInterface)...)
		}
	})
}

// interfacePattern resolves the auto interface pattern.
func (r *run) interfacePattern() string {
	if r.cfg.InterfacePattern != InterfacePatternAuto {
		return r.cfg.InterfacePattern
	}
	if r.cfg.SolubleInterface || r.soluble {
		return fill.PatternConcentric
	}
	return fill.PatternRectilinear
}

// fillLayer generates the toolpaths of every part of layer i. Line angles
// turn by 90° on every other layer.
func (r *run) fillLayer(i int, l *SupportLayer) {
	angle := r.cfg.Angle * math.Pi / 180
	if i%2 == 1 {
		angle += math.Pi / 2
	}
	for p := range l.Parts {
		part := &l.Parts[p]
		switch {
		case part.Kind == KindRaftBase && part.BottomZ < r.cfg.ZEpsilon:
			r.fillRaftFirstLayer(l, part, angle)
		case part.Kind.Dense() || part.BaseInterface:
			r.fillInterface(l, part, angle+math.Pi/2)
		default:
			r.fillBase(l, part, angle)
		}
	}
}

func (r *run) fillBase(l *SupportLayer, part *Part, angle float64) {
	flow := r.supportFlow.WithHeight(part.Height)
	filler, err := fill.Lookup(r.cfg.Pattern)
	if err != nil {
		r.log.Warn("fill failed", "z", l.PrintZ, "kind", part.Kind, "err", err)
		return
	}
	region := part.Polygons
	if r.cfg.WithSheath {
		spacing := float64(flow.ScaledSpacing())
		part.Paths.AppendLoops(fill.Loops(region, spacing/2), extrusion.RoleSupportMaterial, flow)
		region = geom.Offset(region, -spacing, geom.JoinMiter)
	}
	params := fill.Params{Spacing: geom.Scaled(r.cfg.Spacing + flow.Spacing()), Angle: angle}
	r.fillRegion(l, part, region, filler, params, extrusion.RoleSupportMaterial, flow)
}

func (r *run) fillInterface(l *SupportLayer, part *Part, angle float64) {
	flow := r.interfaceFlow.WithHeight(part.Height)
	if part.Bridging {
		flow = extrusion.BridgeFlow(r.cfg.NozzleDiameter)
	}
	role := extrusion.RoleSupportMaterialInterface
	pattern := r.interfacePattern()
	if part.BaseInterface || part.Kind == KindRaftInterface {
		role, pattern = extrusion.RoleSupportMaterial, fill.PatternRectilinear
	}
	filler, err := fill.Lookup(pattern)
	if err != nil {
		r.log.Warn("fill failed", "z", l.PrintZ, "kind", part.Kind, "err", err)
		return
	}

	region := part.Polygons
	if part.Kind == KindTopContact && r.cfg.InterfaceContactLoops && len(part.Overhangs) > 0 {
		loops, anchors := r.contactLoops(part, flow)
		part.Paths.Append(loops, extrusion.RoleSupportMaterialInterface, flow)
		region = geom.Diff(region, anchors)
	}
	params := fill.Params{Spacing: geom.Scaled(r.cfg.InterfaceSpacing + flow.Spacing()), Angle: angle}
	r.fillRegion(l, part, region, filler, params, role, flow)
}

// fillRaftFirstLayer fills the bottom raft layer at its own density.
func (r *run) fillRaftFirstLayer(l *SupportLayer, part *Part, angle float64) {
	flow := r.supportFlow.WithHeight(part.Height)
	params := fill.Params{
		Spacing: geom.Scaled(flow.Spacing() / r.cfg.RaftFirstLayerDensity),
		Angle:   angle,
	}
	r.fillRegion(l, part, part.Polygons, fill.Rectilinear{}, params, extrusion.RoleSupportMaterial, flow)
}

// fillRegion fills each island of region. An island the filler rejects is
// logged and left empty.
func (r *run) fillRegion(l *SupportLayer, part *Part, region geom.Polygons, filler fill.Filler, p fill.Params, role extrusion.Role, flow extrusion.Flow) {
	for _, island := range geom.UnionEx(region) {
		lines, err := filler.Fill(island, p)
		if err != nil {
			r.log.Warn("fill failed", "z", l.PrintZ, "kind", part.Kind, "err", err)
			continue
		}
		part.Paths.Append(lines, role, flow)
	}
}
