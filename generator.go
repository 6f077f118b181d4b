package support

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/layerforge/support/extrusion"
	"github.com/layerforge/support/geom"
	"github.com/layerforge/support/internal/cache"
	"github.com/layerforge/support/internal/grid"
	"github.com/layerforge/support/internal/parallel"
	"github.com/layerforge/support/internal/plotdump"
)

// Generator builds support layers for sliced objects. A Generator may be
// reused for several objects; Generate calls must not overlap when the
// generator owns a debug dumper writing to the same directory.
type Generator struct {
	cfg      Config
	opts     options
	pool     *parallel.Pool
	ownsPool bool
	dump     *plotdump.Dumper
}

// New validates cfg and creates a Generator.
func New(cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions(cfg)
	for _, opt := range opts {
		opt(&o)
	}

	g := &Generator{cfg: cfg, opts: o, pool: o.pool}
	if g.pool == nil {
		g.pool = parallel.NewPool(o.workers)
		g.ownsPool = true
	}
	if o.dumpDir != "" {
		d, err := plotdump.New(o.dumpDir)
		if err != nil {
			g.Close()
			return nil, err
		}
		g.dump = d
	}
	return g, nil
}

// Close releases the worker pool if the generator created it.
func (g *Generator) Close() {
	if g.ownsPool {
		g.pool.Close()
	}
}

// Stats counts the layers produced by each stage of one run.
type Stats struct {
	TopContacts    int
	BottomContacts int
	Intermediate   int
	Interface      int
	Raft           int
	Published      int
	Elapsed        time.Duration
}

// Result is the output of one generation run.
type Result struct {
	// Layers is ordered by strictly increasing PrintZ.
	Layers []*SupportLayer
	RunID  uuid.UUID
	Stats  Stats
}

// Generate runs all stages for obj. An object that needs no support yields
// a Result without layers and a nil error.
func (g *Generator) Generate(obj *Object) (*Result, error) {
	if obj == nil || len(obj.Layers) == 0 {
		return nil, ErrNoObject
	}
	for i, l := range obj.Layers {
		if l == nil {
			return nil, fmt.Errorf("%w: layer %d is nil", ErrNoObject, i)
		}
	}

	r := newRun(g, obj)
	start := time.Now()
	layers := r.generate()
	r.stats.Published = len(layers)
	r.stats.Elapsed = time.Since(start)

	r.log.Info("support generated",
		"layers", len(layers),
		"top_contacts", r.stats.TopContacts,
		"bottom_contacts", r.stats.BottomContacts,
		"elapsed", r.stats.Elapsed)
	return &Result{Layers: layers, RunID: r.id, Stats: r.stats}, nil
}

// Generate is a convenience wrapper creating a short-lived Generator.
func Generate(obj *Object, cfg Config, opts ...Option) (*Result, error) {
	g, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	return g.Generate(obj)
}

// run is the state of one generation pass. Stages read the object and the
// derived parameters and write layers into the arena.
type run struct {
	cfg   Config
	obj   *Object
	pool  *parallel.Pool
	arena *Arena
	log   *slog.Logger
	dump  *plotdump.Dumper
	id    uuid.UUID
	stats Stats

	noToolpaths bool

	// slices caches the flattened object slices per layer.
	slices []geom.Polygons
	bands  *cache.Cache[bandKey, geom.Polygons]

	supportFlow   extrusion.Flow
	interfaceFlow extrusion.Flow

	gapXY    float64 // internal units
	soluble  bool
	hasRaft  bool
	raftTopZ float64
}

func newRun(g *Generator, obj *Object) *run {
	cfg := g.cfg
	id := uuid.New()
	r := &run{
		cfg:         cfg,
		obj:         obj,
		pool:        g.pool,
		arena:       NewArena(g.pool.Workers()),
		log:         Logger().With("run", id.String()),
		dump:        g.dump,
		id:          id,
		noToolpaths: g.opts.noToolpaths,

		supportFlow:   extrusion.NewFlow(cfg.SupportWidth, cfg.LayerHeight, cfg.NozzleDiameter),
		interfaceFlow: extrusion.NewFlow(cfg.InterfaceWidth, cfg.LayerHeight, cfg.NozzleDiameter),
		gapXY:         float64(geom.Scaled(cfg.XYSpacing)),
		soluble:       cfg.ContactDistanceTop == 0,
		hasRaft:       cfg.RaftLayers > 0,
	}
	if r.hasRaft {
		r.raftTopZ = raftLayerZ(cfg, cfg.RaftLayers-1)
	}
	r.bands = cache.New[bandKey, geom.Polygons](4 * len(obj.Layers))
	r.slices = make([]geom.Polygons, len(obj.Layers))
	for i, l := range obj.Layers {
		r.slices[i] = l.polygons()
	}
	return r
}

// raftLayerZ returns the print Z of raft layer k counted from the bed. Every
// raft layer is RaftLayerHeight tall; the bottom one is raised to the first
// layer height when that is taller.
func raftLayerZ(cfg Config, k int) float64 {
	return max(cfg.FirstLayerHeight, cfg.RaftLayerHeight) + float64(k)*cfg.RaftLayerHeight
}

// floorZ is the lowest print Z a support layer above the raft may take.
func (r *run) floorZ() float64 {
	if r.hasRaft {
		return r.raftTopZ
	}
	return r.cfg.FirstLayerHeight
}

// floorHeight is the height of the support layer at floorZ.
func (r *run) floorHeight() float64 {
	switch {
	case !r.hasRaft:
		return r.cfg.FirstLayerHeight
	case r.cfg.RaftLayers == 1:
		return r.raftTopZ
	default:
		return r.cfg.RaftLayerHeight
	}
}

// supportSpacing returns the base line pitch in internal units.
func (r *run) supportSpacing() int64 {
	return geom.Scaled(r.cfg.Spacing + r.supportFlow.Spacing())
}

// interfaceSpacing returns the interface line pitch in internal units.
func (r *run) interfaceSpacing() int64 {
	return geom.Scaled(r.cfg.InterfaceSpacing + r.interfaceFlow.Spacing())
}

// gridParams returns the rasterizer settings for a grid of the given line
// spacing.
func (r *run) gridParams(spacing int64) grid.Params {
	return grid.Params{
		Spacing:      spacing,
		Angle:        r.cfg.Angle * math.Pi / 180,
		Oversampling: r.cfg.GridOversampling,
	}
}

// regularize snaps support onto the base support grid, keeping it out of
// trimming.
func (r *run) regularize(support, trimming geom.Polygons) geom.Polygons {
	if len(support) == 0 {
		return nil
	}
	pat := grid.New(support, trimming, r.gridParams(r.supportSpacing()))
	return pat.ExtractSupport(float64(r.supportFlow.ScaledSpacing())/2, true)
}

// regularizeContact snaps a contact area onto the finer interface grid so
// the contact stays close to the overhang plus its margin.
func (r *run) regularizeContact(support, trimming geom.Polygons) geom.Polygons {
	if len(support) == 0 {
		return nil
	}
	pat := grid.New(support, trimming, r.gridParams(r.interfaceSpacing()))
	return pat.ExtractSupport(float64(r.interfaceFlow.ScaledSpacing())/2, true)
}

func (r *run) generate() []*SupportLayer {
	var top, bottom, intermediate, iface, raft LayerList
	var footprints []geom.Polygons

	r.stage("top contacts", func() int {
		top = r.topContacts()
		return len(top)
	})
	r.stats.TopContacts = len(top)
	if len(top) == 0 {
		r.log.Debug("no overhangs need support")
		return nil
	}

	r.stage("bottom contacts", func() int {
		bottom, footprints = r.bottomContacts(top)
		return len(bottom)
	})
	r.stats.BottomContacts = len(bottom)

	r.stage("intermediate layers", func() int {
		intermediate = r.intermediateLayers(top, bottom)
		return len(intermediate)
	})
	r.stats.Intermediate = len(intermediate)

	r.stage("base layers", func() int {
		r.baseLayers(intermediate, top, bottom, footprints)
		return len(intermediate)
	})

	r.stage("contact trim", func() int {
		r.trimTopByBottom(top, bottom)
		return len(top)
	})

	r.stage("interface layers", func() int {
		iface = r.interfaceLayers(intermediate, top, bottom)
		return len(iface)
	})
	r.stats.Interface = len(iface)

	r.stage("raft", func() int {
		raft = r.raftLayers(top, bottom, intermediate, iface)
		return len(raft)
	})
	r.stats.Raft = len(raft)

	var published []*SupportLayer
	r.stage("merge", func() int {
		published = r.merge(raft, bottom, top, intermediate, iface)
		return len(published)
	})

	if !r.noToolpaths {
		r.stage("toolpaths", func() int {
			r.toolpaths(published)
			return len(published)
		})
	}
	r.dumpLayers("published", published)
	return published
}

// stage runs fn, logging its layer count and duration.
func (r *run) stage(name string, fn func() int) {
	start := time.Now()
	n := fn()
	r.log.Debug("stage done", "stage", name, "layers", n, "elapsed", time.Since(start))
}

var (
	colorSupport   = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	colorInterface = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	colorObject    = color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}
)

// dumpLayers plots published layers when a debug dump directory is set.
func (r *run) dumpLayers(stage string, layers []*SupportLayer) {
	if !r.dump.Enabled() {
		return
	}
	for _, l := range layers {
		sets := []plotdump.Set{{Label: "support", Polygons: l.Polygons, Color: colorSupport}}
		if idx := r.objectLayerBelow(l.PrintZ); idx >= 0 {
			sets = append([]plotdump.Set{{Label: "object", Polygons: r.slices[idx], Color: colorObject}}, sets...)
		}
		var lines []geom.Polyline
		for _, p := range l.Extrusions {
			lines = append(lines, p.Polyline)
		}
		for _, p := range l.Interface {
			lines = append(lines, p.Polyline)
		}
		if len(lines) > 0 {
			sets = append(sets, plotdump.Set{Label: "toolpaths", Lines: lines, Color: colorInterface})
		}
		if err := r.dump.Layer(stage, l.PrintZ, sets...); err != nil {
			r.log.Warn("debug dump failed", "z", l.PrintZ, "err", err)
			return
		}
	}
}

// objectLayerBelow returns the index of the highest object layer with
// PrintZ ≤ z, or -1.
func (r *run) objectLayerBelow(z float64) int {
	layers := r.obj.Layers
	return sort.Search(len(layers), func(i int) bool {
		return layers[i].PrintZ > z+r.cfg.ZEpsilon
	}) - 1
}
