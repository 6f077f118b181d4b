package support

import (
	"math"

	"github.com/layerforge/support/extrusion"
	"github.com/layerforge/support/geom"
)

// modulate thins the paths of parts in layer i that reach down into lower
// published layers. A piece lying over a lower layer's polygons only needs
// the height between that layer's top and this layer's top; the rest keeps
// the part height. Pieces are then stitched back together.
func (r *run) modulate(layers []*SupportLayer, i int) {
	eps := r.cfg.ZEpsilon
	l := layers[i]
	for p := range l.Parts {
		part := &l.Parts[p]
		if len(part.Paths) == 0 || i == 0 || layers[i-1].PrintZ <= part.BottomZ+eps {
			continue
		}
		var out extrusion.Collection
		for _, path := range part.Paths {
			out = append(out, r.modulatePath(layers, i, part, path)...)
		}
		part.Paths = out
	}
}

func (r *run) modulatePath(layers []*SupportLayer, i int, part *Part, path extrusion.Path) extrusion.Collection {
	eps := r.cfg.ZEpsilon
	top := layers[i].PrintZ
	remaining := []geom.Polyline{path.Polyline}
	var pieces extrusion.Collection
	for m := i - 1; m >= 0 && len(remaining) > 0; m-- {
		lower := layers[m]
		if lower.PrintZ <= part.BottomZ+eps {
			break
		}
		inside := geom.ClipPolylines(remaining, lower.Polygons)
		if len(inside) == 0 {
			continue
		}
		remaining = geom.DiffPolylines(remaining, lower.Polygons)
		h := top - lower.PrintZ
		for _, pl := range inside {
			pieces = append(pieces, r.reshape(path, pl, h))
		}
	}
	if len(pieces) == 0 {
		return extrusion.Collection{path}
	}
	for _, pl := range remaining {
		pieces = append(pieces, r.reshape(path, pl, path.Height))
	}
	return restitch(pieces, float64(geom.Scaled(path.Width))/2, eps)
}

// reshape returns path along pl at height h with the matching flow.
func (r *run) reshape(path extrusion.Path, pl geom.Polyline, h float64) extrusion.Path {
	out := path
	out.Polyline = pl
	out.Closed = false
	if math.Abs(h-path.Height) > r.cfg.ZEpsilon {
		out.Height = h
		out.MM3PerMM = extrusion.NewFlow(path.Width, h, r.cfg.NozzleDiameter).MM3PerMM()
	}
	return out
}

// restitch joins pieces of equal role and height whose endpoints lie within
// radius. Each chain grows from its end, then from its start, so the result
// does not depend on the order of the pieces.
func restitch(pieces extrusion.Collection, radius, eps float64) extrusion.Collection {
	idx := newEndpointIndex(radius)
	for k, p := range pieces {
		idx.insert(p.Polyline.First(), 2*k)
		idx.insert(p.Polyline.Last(), 2*k+1)
	}

	used := make([]bool, len(pieces))
	extend := func(chain *extrusion.Path) {
		for {
			end := chain.Polyline.Last()
			j, rev := -1, false
			for _, e := range idx.near(end) {
				c := e / 2
				if used[c] || pieces[c].Role != chain.Role || math.Abs(pieces[c].Height-chain.Height) > eps {
					continue
				}
				pt := pieces[c].Polyline.First()
				if e%2 == 1 {
					pt = pieces[c].Polyline.Last()
				}
				if pt.DistanceTo(end) <= radius {
					j, rev = c, e%2 == 1
					break
				}
			}
			if j < 0 {
				return
			}
			used[j] = true
			next := append(geom.Polyline(nil), pieces[j].Polyline...)
			if rev {
				next.Reverse()
			}
			if next.First() == end {
				next = next[1:]
			}
			chain.Polyline = append(chain.Polyline, next...)
		}
	}

	var out extrusion.Collection
	for k := range pieces {
		if used[k] {
			continue
		}
		used[k] = true
		chain := pieces[k]
		chain.Polyline = append(geom.Polyline(nil), chain.Polyline...)
		extend(&chain)
		chain.Polyline.Reverse()
		extend(&chain)
		chain.Polyline.Reverse()
		out = append(out, chain)
	}
	return out
}

// endpointIndex hashes path endpoints into square cells of the search
// radius so a lookup only visits the 3x3 cells around a point.
type endpointIndex struct {
	cell  float64
	cells map[int64][]int
}

func newEndpointIndex(radius float64) *endpointIndex {
	return &endpointIndex{cell: max(radius, 1), cells: make(map[int64][]int)}
}

func (ix *endpointIndex) coords(p geom.Point) (int64, int64) {
	return int64(math.Floor(float64(p.X) / ix.cell)), int64(math.Floor(float64(p.Y) / ix.cell))
}

func (ix *endpointIndex) insert(p geom.Point, id int) {
	cx, cy := ix.coords(p)
	key := cellKey(cx, cy)
	ix.cells[key] = append(ix.cells[key], id)
}

// near returns the endpoint ids in the cells around p.
func (ix *endpointIndex) near(p geom.Point) []int {
	cx, cy := ix.coords(p)
	var out []int
	for dy := int64(-1); dy <= 1; dy++ {
		for dx := int64(-1); dx <= 1; dx++ {
			out = append(out, ix.cells[cellKey(cx+dx, cy+dy)]...)
		}
	}
	return out
}

// cellKey pairs two signed cell coordinates into one key: zigzag encoding
// maps them to non-negative integers, then Szudzik's pairing combines them.
func cellKey(x, y int64) int64 {
	a, b := zigzag(x), zigzag(y)
	if a >= b {
		return a*a + a + b
	}
	return b*b + a
}

func zigzag(v int64) int64 {
	if v >= 0 {
		return 2 * v
	}
	return -2*v - 1
}
