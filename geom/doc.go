// Package geom provides the scaled integer 2D geometry used by the support
// generator.
//
// # Coordinates
//
// All coordinates are int64 values in nanometres: one millimetre is [Scale]
// units. Integer coordinates keep polygon boolean operations exact and make
// repeated operations on the same input reproducible. Use [Scaled] and
// [Unscaled] to move between millimetres and internal units.
//
// # Orientation
//
// Outer contours are counter-clockwise (positive signed area) and holes are
// clockwise, with the Y axis pointing up. Every operation in this package
// returns polygons in that orientation.
//
// # Boolean Operations
//
// Union, difference, intersection and offsetting are delegated to the
// Clipper library (Vatti clipping) and always use the non-zero fill rule:
//
//	overhang := geom.Diff(layer, geom.Offset(lower, geom.Scaled(0.2), geom.JoinMiter))
//	islands := geom.UnionEx(overhang)
//
// Open polylines can be clipped by closed polygons with [ClipPolylines] and
// [DiffPolylines]; the infill generators use this to trim scan lines.
package geom
