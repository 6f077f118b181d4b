// Package plotdump writes per-layer debug plots of support polygons and
// toolpaths.
package plotdump

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/layerforge/support/geom"
)

// Set is one group of shapes drawn with a common style.
type Set struct {
	Label    string
	Polygons geom.Polygons
	Lines    []geom.Polyline
	Color    color.Color
}

// Dumper writes plots into a directory. The zero value is disabled.
type Dumper struct {
	mu    sync.Mutex
	dir   string
	count int
}

// New creates a dumper writing into dir, creating it if needed.
func New(dir string) (*Dumper, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("plotdump: create %s: %w", dir, err)
	}
	return &Dumper{dir: dir}, nil
}

// Enabled reports whether the dumper writes files.
func (d *Dumper) Enabled() bool {
	return d != nil && d.dir != ""
}

// Count returns the number of files written.
func (d *Dumper) Count() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Layer plots the sets for one layer into <dir>/<stage>_<z>.png.
// It is a no-op on a disabled dumper.
func (d *Dumper) Layer(stage string, z float64, sets ...Set) error {
	if !d.Enabled() {
		return nil
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s z=%.3f mm", stage, z)
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Y (mm)"

	for _, s := range sets {
		if err := addSet(p, s); err != nil {
			return fmt.Errorf("plotdump: %s: %w", s.Label, err)
		}
	}

	file := filepath.Join(d.dir, fmt.Sprintf("%s_%08.3f.png", stage, z))
	if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		return fmt.Errorf("plotdump: save %s: %w", file, err)
	}
	d.mu.Lock()
	d.count++
	d.mu.Unlock()
	return nil
}

func addSet(p *plot.Plot, s Set) error {
	col := s.Color
	if col == nil {
		col = color.Black
	}
	var legend plot.Thumbnailer
	for _, poly := range s.Polygons {
		if len(poly) < 3 {
			continue
		}
		shape, err := plotter.NewPolygon(toXYs(poly))
		if err != nil {
			return err
		}
		shape.Color = nil
		shape.LineStyle.Color = col
		shape.LineStyle.Width = vg.Points(1)
		p.Add(shape)
		legend = shape
	}
	for _, l := range s.Lines {
		if len(l) < 2 {
			continue
		}
		line, err := plotter.NewLine(toXYs(l))
		if err != nil {
			return err
		}
		line.Color = col
		line.Width = vg.Points(0.5)
		p.Add(line)
		legend = line
	}
	if legend != nil && s.Label != "" {
		p.Legend.Add(s.Label, legend)
	}
	return nil
}

func toXYs(pts []geom.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		out[i] = plotter.XY{X: geom.Unscaled(pt.X), Y: geom.Unscaled(pt.Y)}
	}
	return out
}
