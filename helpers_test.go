package support

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/layerforge/support/geom"
)

const mm2 = geom.Scale * geom.Scale

// testConfig returns the defaults with debug checks and a small pool.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Workers = 2
	cfg.Debug = true
	return cfg
}

func disk(radius float64) geom.Polygon {
	return geom.Circle(geom.Point{}, float64(geom.Scaled(radius)), 64)
}

// slice unions shapes into one layer silhouette.
func slice(shapes ...geom.Polygon) geom.ExPolygons {
	return geom.UnionEx(geom.Polygons(shapes))
}

// stackObject builds an object of n layers of height h starting at z0,
// taking the silhouette of layer i from shape.
func stackObject(n int, z0, h float64, shape func(i int) geom.ExPolygons) *Object {
	obj := &Object{}
	for i := range n {
		obj.Layers = append(obj.Layers, &ObjectLayer{
			PrintZ: z0 + float64(i+1)*h,
			Height: h,
			Slices: shape(i),
		})
	}
	return obj
}

// tabRect is a 6x4 mm tab reaching 5 mm out of a 10 mm disk.
var tabRect = geom.RectMM(9, -2, 15, 2)

// tabShape is a disk with a tab from layer 10 up.
func tabShape(i int) geom.ExPolygons {
	if i < 10 {
		return slice(disk(10))
	}
	return slice(disk(10), tabRect)
}

// tabObject is a 10 mm disk, 15 layers of 0.2 mm, with a horizontal tab
// from layer 10 up.
func tabObject() *Object {
	return stackObject(15, 0, 0.2, tabShape)
}

// tabOverhangArea is the tab area outside the disk in mm².
func tabOverhangArea() float64 {
	return geom.Diff(geom.Polygons{tabRect}, geom.Polygons{disk(10)}).Area() / mm2
}

// shelfObject is a wide 30 mm block five layers high carrying a 4 mm
// column with a tab above the block from layer 10 up.
func shelfObject() *Object {
	return stackObject(15, 0, 0.2, func(i int) geom.ExPolygons {
		switch {
		case i < 5:
			return slice(geom.RectMM(-15, -15, 15, 15))
		case i < 10:
			return slice(geom.RectMM(-2, -2, 2, 2))
		default:
			return slice(geom.RectMM(-2, -2, 2, 2), geom.RectMM(2, -2, 8, 2))
		}
	})
}

// sliverShelfObject is a 30 mm block five layers of 0.22 mm high carrying a
// 4 mm column with a tab above the block from layer 8 up. The bottom contact
// on the block ends 0.06 mm below the tab's top contact.
func sliverShelfObject() *Object {
	return stackObject(15, 0, 0.22, func(i int) geom.ExPolygons {
		switch {
		case i < 5:
			return slice(geom.RectMM(-15, -15, 15, 15))
		case i < 8:
			return slice(geom.RectMM(-2, -2, 2, 2))
		default:
			return slice(geom.RectMM(-2, -2, 2, 2), geom.RectMM(2, -2, 8, 2))
		}
	})
}

func layersOfKind(layers []*SupportLayer, k LayerKind) []*SupportLayer {
	var out []*SupportLayer
	for _, l := range layers {
		if l.Kinds.Has(k) {
			out = append(out, l)
		}
	}
	return out
}

func partArea(l *SupportLayer, k LayerKind) float64 {
	var a float64
	for _, p := range l.Parts {
		if p.Kind == k {
			a += p.Polygons.Area()
		}
	}
	return a / mm2
}

// testRun prepares a generation pass over obj without running any stage.
func testRun(t *testing.T, cfg Config, obj *Object) *run {
	t.Helper()
	g, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(g.Close)
	return newRun(g, obj)
}
