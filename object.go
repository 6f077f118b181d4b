package support

import (
	"github.com/layerforge/support/extrusion"
	"github.com/layerforge/support/geom"
)

// SurfaceType classifies a region surface of an object layer.
type SurfaceType uint8

const (
	SurfaceInternal SurfaceType = iota
	// SurfaceTop faces upwards; support may stand on it.
	SurfaceTop
	// SurfaceBottom faces downwards and rests on support.
	SurfaceBottom
	// SurfaceBottomBridge faces downwards and is printed as a bridge.
	SurfaceBottomBridge
)

func (t SurfaceType) String() string {
	switch t {
	case SurfaceTop:
		return "top"
	case SurfaceBottom:
		return "bottom"
	case SurfaceBottomBridge:
		return "bottom-bridge"
	default:
		return "internal"
	}
}

// Surface is a typed sub-slice of a region.
type Surface struct {
	Type SurfaceType
	geom.ExPolygon
}

// Region is the part of a layer printed with one material and flow.
type Region struct {
	Surfaces []Surface
	// Flow is the external perimeter flow.
	Flow extrusion.Flow
	// BridgeFlow is the flow used for bridges over air.
	BridgeFlow extrusion.Flow
}

// surfacesOf returns the union of the surfaces of type t across regions.
func surfacesOf(regions []Region, t SurfaceType) geom.Polygons {
	var out geom.Polygons
	for _, r := range regions {
		for _, s := range r.Surfaces {
			if s.Type == t {
				out = append(out, s.Polygons()...)
			}
		}
	}
	return out
}

// ObjectLayer is one sliced cross-section of the object.
type ObjectLayer struct {
	// PrintZ is the top of the layer in millimetres.
	PrintZ float64
	Height float64
	// Slices is the layer silhouette.
	Slices  geom.ExPolygons
	Regions []Region
}

// BottomZ returns the bottom of the layer.
func (l *ObjectLayer) BottomZ() float64 { return l.PrintZ - l.Height }

// polygons returns the slices flattened to contours and holes.
func (l *ObjectLayer) polygons() geom.Polygons { return l.Slices.Polygons() }

// bridgeFlow returns the bridging flow of the first region that has one.
func (l *ObjectLayer) bridgeFlow(nozzle float64) extrusion.Flow {
	for _, r := range l.Regions {
		if r.BridgeFlow.Width > 0 {
			return r.BridgeFlow
		}
	}
	return extrusion.BridgeFlow(nozzle)
}

// perimeterWidth returns the widest external perimeter of the layer.
func (l *ObjectLayer) perimeterWidth(fallback float64) float64 {
	var w float64
	for _, r := range l.Regions {
		w = max(w, r.Flow.Width)
	}
	if w == 0 {
		return fallback
	}
	return w
}

// Object is the sliced input: layers ordered by PrintZ and optional
// per-layer painted regions. Enforcers and Blockers are indexed like Layers
// and may be shorter.
type Object struct {
	Layers    []*ObjectLayer
	Enforcers []geom.Polygons
	Blockers  []geom.Polygons
}

func perLayer(sets []geom.Polygons, i int) geom.Polygons {
	if i < len(sets) {
		return sets[i]
	}
	return nil
}
