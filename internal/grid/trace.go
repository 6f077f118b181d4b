package grid

import "github.com/layerforge/support/geom"

// Edge directions along pixel boundaries.
const (
	dirRight = iota
	dirUp
	dirLeft
	dirDown
)

type edge struct {
	from, to geom.Point
	dir      int
	used     bool
}

// traceContours returns the boundary rings of the set pixels in pixel-vertex
// coordinates. Outer boundaries are counter-clockwise and holes clockwise.
// Diagonally touching pixels are traced as separate rings.
func traceContours(set []bool, w, h int) geom.Polygons {
	at := func(i, j int) bool {
		return i >= 0 && j >= 0 && i < w && j < h && set[j*w+i]
	}

	var edges []edge
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			if !set[j*w+i] {
				continue
			}
			x, y := int64(i), int64(j)
			if !at(i, j-1) {
				edges = append(edges, edge{from: geom.Pt(x, y), to: geom.Pt(x+1, y), dir: dirRight})
			}
			if !at(i+1, j) {
				edges = append(edges, edge{from: geom.Pt(x+1, y), to: geom.Pt(x+1, y+1), dir: dirUp})
			}
			if !at(i, j+1) {
				edges = append(edges, edge{from: geom.Pt(x+1, y+1), to: geom.Pt(x, y+1), dir: dirLeft})
			}
			if !at(i-1, j) {
				edges = append(edges, edge{from: geom.Pt(x, y+1), to: geom.Pt(x, y), dir: dirDown})
			}
		}
	}

	stride := int64(w + 1)
	key := func(p geom.Point) int64 { return p.Y*stride + p.X }
	outgoing := make(map[int64][]int, len(edges))
	for idx, e := range edges {
		k := key(e.from)
		outgoing[k] = append(outgoing[k], idx)
	}

	var rings geom.Polygons
	for start := range edges {
		if edges[start].used {
			continue
		}
		var ring geom.Polygon
		cur := start
		for {
			e := &edges[cur]
			e.used = true
			ring = append(ring, e.from)
			next := -1
			for _, cand := range outgoing[key(e.to)] {
				if edges[cand].used && cand != start {
					continue
				}
				// At a saddle vertex prefer the left turn so the ring hugs
				// the pixel it is tracing.
				if next < 0 || edges[cand].dir == (e.dir+1)%4 {
					next = cand
				}
			}
			if next < 0 || next == start {
				break
			}
			cur = next
		}
		if r := ring.RemoveCollinear(); len(r) >= 3 {
			rings = append(rings, r)
		}
	}
	return rings
}
