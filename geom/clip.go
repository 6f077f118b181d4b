package geom

import (
	clipper "github.com/ctessum/go.clipper"
)

// JoinType selects the corner shape produced by Offset.
type JoinType int

const (
	// JoinMiter extends edges to a sharp corner, limited by MiterLimit.
	JoinMiter JoinType = iota
	// JoinRound rounds corners with an arc.
	JoinRound
	// JoinSquare cuts corners at the offset distance.
	JoinSquare
)

// MiterLimit bounds the miter length as a multiple of the offset distance.
const MiterLimit = 3.0

// ArcTolerance is the maximum deviation of rounded joins from a true arc.
var ArcTolerance = float64(Scaled(0.005))

func (j JoinType) clipper() clipper.JoinType {
	switch j {
	case JoinRound:
		return clipper.JtRound
	case JoinSquare:
		return clipper.JtSquare
	default:
		return clipper.JtMiter
	}
}

func toPath(p []Point) clipper.Path {
	out := make(clipper.Path, len(p))
	for i, pt := range p {
		out[i] = &clipper.IntPoint{X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y)}
	}
	return out
}

func toPaths(ps Polygons) clipper.Paths {
	out := make(clipper.Paths, 0, len(ps))
	for _, p := range ps {
		if len(p) < 3 {
			continue
		}
		out = append(out, toPath(p))
	}
	return out
}

func fromPath(p clipper.Path) []Point {
	out := make([]Point, len(p))
	for i, ip := range p {
		out[i] = Point{X: int64(ip.X), Y: int64(ip.Y)}
	}
	return out
}

func fromPaths(ps clipper.Paths) Polygons {
	out := make(Polygons, 0, len(ps))
	for _, p := range ps {
		if len(p) < 3 {
			continue
		}
		out = append(out, Polygon(fromPath(p)))
	}
	return out
}

// execute runs a closed boolean operation and returns flat polygons.
func execute(op clipper.ClipType, subject, clip Polygons) Polygons {
	subj := toPaths(subject)
	if len(subj) == 0 {
		return nil
	}
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(subj, clipper.PtSubject, true)
	if cp := toPaths(clip); len(cp) > 0 {
		c.AddPaths(cp, clipper.PtClip, true)
	}
	out, ok := c.Execute1(op, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return nil
	}
	return fromPaths(out)
}

// executeEx runs a closed boolean operation and returns islands with holes.
func executeEx(op clipper.ClipType, subject, clip Polygons) ExPolygons {
	subj := toPaths(subject)
	if len(subj) == 0 {
		return nil
	}
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(subj, clipper.PtSubject, true)
	if cp := toPaths(clip); len(cp) > 0 {
		c.AddPaths(cp, clipper.PtClip, true)
	}
	tree, ok := c.Execute2(op, clipper.PftNonZero, clipper.PftNonZero)
	if !ok || tree == nil {
		return nil
	}
	var out ExPolygons
	for _, node := range tree.Childs() {
		out = appendOuter(out, node)
	}
	return out
}

// appendOuter converts an outer PolyNode and its descendants to ExPolygons.
func appendOuter(out ExPolygons, outer *clipper.PolyNode) ExPolygons {
	if outer.IsOpen || len(outer.Contour()) < 3 {
		return out
	}
	ex := ExPolygon{Contour: Polygon(fromPath(outer.Contour()))}
	var islands []*clipper.PolyNode
	for _, hole := range outer.Childs() {
		if len(hole.Contour()) >= 3 {
			ex.Holes = append(ex.Holes, Polygon(fromPath(hole.Contour())))
		}
		islands = append(islands, hole.Childs()...)
	}
	out = append(out, ex)
	for _, island := range islands {
		out = appendOuter(out, island)
	}
	return out
}

// Union merges the given polygon sets.
func Union(sets ...Polygons) Polygons {
	var all Polygons
	for _, s := range sets {
		all = append(all, s...)
	}
	return execute(clipper.CtUnion, all, nil)
}

// UnionEx merges polygons into islands with holes.
func UnionEx(polys Polygons) ExPolygons {
	return executeEx(clipper.CtUnion, polys, nil)
}

// Diff returns subject minus clip.
func Diff(subject, clip Polygons) Polygons {
	if len(clip) == 0 {
		return execute(clipper.CtUnion, subject, nil)
	}
	return execute(clipper.CtDifference, subject, clip)
}

// DiffEx returns subject minus clip as islands.
func DiffEx(subject, clip Polygons) ExPolygons {
	return executeEx(clipper.CtDifference, subject, clip)
}

// Intersection returns the area covered by both subject and clip.
func Intersection(subject, clip Polygons) Polygons {
	if len(subject) == 0 || len(clip) == 0 {
		return nil
	}
	return execute(clipper.CtIntersection, subject, clip)
}

// Offset grows (delta > 0) or shrinks (delta < 0) polygons by delta internal
// units. Holes move in the opposite direction of contours.
func Offset(polys Polygons, delta float64, join JoinType) Polygons {
	paths := toPaths(polys)
	if len(paths) == 0 {
		return nil
	}
	if delta == 0 {
		return execute(clipper.CtUnion, polys, nil)
	}
	co := clipper.NewClipperOffset()
	co.MiterLimit = MiterLimit
	co.ArcTolerance = ArcTolerance
	co.AddPaths(paths, join.clipper(), clipper.EtClosedPolygon)
	return fromPaths(co.Execute(delta))
}

// OffsetEx offsets islands and returns the merged result as islands.
func OffsetEx(expolys ExPolygons, delta float64, join JoinType) ExPolygons {
	return UnionEx(Offset(expolys.Polygons(), delta, join))
}

// Offset2 offsets by delta1 and then by delta2. A negative delta1 followed
// by a positive delta2 removes features narrower than 2*|delta1|.
func Offset2(polys Polygons, delta1, delta2 float64, join JoinType) Polygons {
	return Offset(Offset(polys, delta1, join), delta2, join)
}

// clipOpen clips open polylines against closed polygons.
func clipOpen(op clipper.ClipType, lines []Polyline, clip Polygons) []Polyline {
	var subj clipper.Paths
	for _, l := range lines {
		if len(l) < 2 {
			continue
		}
		subj = append(subj, toPath(l))
	}
	if len(subj) == 0 {
		return nil
	}
	cp := toPaths(clip)
	if len(cp) == 0 {
		if op == clipper.CtIntersection {
			return nil
		}
		return append([]Polyline(nil), lines...)
	}
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(subj, clipper.PtSubject, false)
	c.AddPaths(cp, clipper.PtClip, true)
	tree, ok := c.Execute2(op, clipper.PftNonZero, clipper.PftNonZero)
	if !ok || tree == nil {
		return nil
	}
	open := c.OpenPathsFromPolyTree(tree)
	out := make([]Polyline, 0, len(open))
	for _, p := range open {
		if len(p) < 2 {
			continue
		}
		out = append(out, Polyline(fromPath(p)))
	}
	return out
}

// ClipPolylines returns the parts of lines inside clip.
func ClipPolylines(lines []Polyline, clip Polygons) []Polyline {
	return clipOpen(clipper.CtIntersection, lines, clip)
}

// DiffPolylines returns the parts of lines outside clip.
func DiffPolylines(lines []Polyline, clip Polygons) []Polyline {
	return clipOpen(clipper.CtDifference, lines, clip)
}
