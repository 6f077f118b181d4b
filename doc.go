// Package support generates support structures for layer-based additive
// manufacturing.
//
// # Overview
//
// Given the per-layer cross-sections of an object, the generator finds the
// unsupported overhangs, builds a scaffold of contact, interface, base and
// raft layers that carries them down to the print bed (or onto the object's
// own top surfaces), merges the scaffold into one layer per printable Z and
// converts every layer into typed extrusion paths.
//
// # Quick Start
//
//	cfg := support.DefaultConfig()
//	cfg.ThresholdAngle = 45
//
//	res, err := support.Generate(obj, cfg)
//	if err != nil {
//	    return err
//	}
//	for _, l := range res.Layers {
//	    fmt.Println(l.PrintZ, len(l.Extrusions))
//	}
//
// # Pipeline
//
// Generation runs as a sequence of barriers. Work inside a stage is spread
// across a worker pool, one task per layer:
//
//  1. Top contacts: overhangs of every object layer and the contact areas
//     placed under them.
//  2. Bottom contacts: a top-down sweep that lands the projected contact
//     areas on the object's top surfaces and records the support footprint
//     below every object layer.
//  3. Intermediate layers between the contact Z extremes.
//  4. Base layers filled from the recorded footprints.
//  5. Top contacts trimmed by overlapping bottom contacts.
//  6. Interface layers split off next to contacts.
//  7. Raft layers under the first object layer.
//  8. Merge into one [SupportLayer] per print Z.
//  9. Toolpaths, then height modulation of overlapping extrusions.
//
// # Coordinates
//
// Z values are millimetres. Planar geometry uses the scaled integer
// coordinates of package geom.
//
// # Errors
//
// Geometric degeneracy never fails a run: empty overhangs, zero-area islands
// and unfillable regions simply contribute nothing. [Generate] only returns
// an error for a missing object or an invalid [Config]. With Config.Debug set,
// internal consistency checks panic.
package support
