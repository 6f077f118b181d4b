package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/layerforge/support"
	"github.com/layerforge/support/geom"
)

// objectFile is the JSON description of a sliced object. Coordinates are in
// millimetres; contours are counter-clockwise, holes clockwise.
type objectFile struct {
	Layers []layerFile `json:"layers"`
}

type layerFile struct {
	Z       float64      `json:"z"`
	Height  float64      `json:"height"`
	Islands []islandFile `json:"islands"`
	// Bridges are bottom surfaces printed as bridges.
	Bridges   []islandFile   `json:"bridges,omitempty"`
	Enforcers [][][2]float64 `json:"enforcers,omitempty"`
	Blockers  [][][2]float64 `json:"blockers,omitempty"`
}

type islandFile struct {
	Contour [][2]float64   `json:"contour"`
	Holes   [][][2]float64 `json:"holes,omitempty"`
}

func ring(pts [][2]float64) geom.Polygon {
	p := make(geom.Polygon, len(pts))
	for i, pt := range pts {
		p[i] = geom.PtMM(pt[0], pt[1])
	}
	return p
}

func rings(in [][][2]float64) geom.Polygons {
	out := make(geom.Polygons, 0, len(in))
	for _, r := range in {
		out = append(out, ring(r))
	}
	return out
}

func islands(in []islandFile) geom.ExPolygons {
	out := make(geom.ExPolygons, 0, len(in))
	for _, is := range in {
		out = append(out, geom.ExPolygon{Contour: ring(is.Contour), Holes: rings(is.Holes)})
	}
	return out
}

// loadObject reads an object description from path.
func loadObject(path string) (*support.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f objectFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	obj := &support.Object{
		Enforcers: make([]geom.Polygons, len(f.Layers)),
		Blockers:  make([]geom.Polygons, len(f.Layers)),
	}
	prev := 0.0
	for i, l := range f.Layers {
		if l.Height <= 0 || l.Z <= prev {
			return nil, fmt.Errorf("%s: layer %d: z=%g height=%g out of order", path, i, l.Z, l.Height)
		}
		prev = l.Z
		layer := &support.ObjectLayer{PrintZ: l.Z, Height: l.Height, Slices: islands(l.Islands)}
		if len(l.Bridges) > 0 {
			var surfaces []support.Surface
			for _, b := range islands(l.Bridges) {
				surfaces = append(surfaces, support.Surface{Type: support.SurfaceBottomBridge, ExPolygon: b})
			}
			layer.Regions = []support.Region{{Surfaces: surfaces}}
		}
		obj.Layers = append(obj.Layers, layer)
		obj.Enforcers[i] = rings(l.Enforcers)
		obj.Blockers[i] = rings(l.Blockers)
	}
	return obj, nil
}
