package support

import "github.com/layerforge/support/internal/parallel"

// Option configures a Generator during creation.
//
// Example:
//
//	// Default: a private pool sized by GOMAXPROCS
//	g, err := support.New(cfg)
//
//	// Single-threaded, with per-layer debug plots
//	g, err := support.New(cfg, support.WithWorkers(1), support.WithDebugDump("dump"))
type Option func(*options)

type options struct {
	workers     int
	pool        *parallel.Pool
	dumpDir     string
	noToolpaths bool
}

func defaultOptions(cfg Config) options {
	return options{workers: cfg.Workers}
}

// WithWorkers sets the number of pool workers. Zero or negative selects
// GOMAXPROCS. It overrides Config.Workers.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPool runs the generator on an existing pool. The caller keeps
// ownership: Generator.Close does not close it.
func WithPool(p *parallel.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithDebugDump writes a PNG plot of every stage's layers into dir.
func WithDebugDump(dir string) Option {
	return func(o *options) {
		o.dumpDir = dir
	}
}

// WithoutToolpaths stops generation after the layer merge; published layers
// carry polygons but no extrusions.
func WithoutToolpaths() Option {
	return func(o *options) {
		o.noToolpaths = true
	}
}
