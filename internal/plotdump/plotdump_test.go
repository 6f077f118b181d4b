package plotdump

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layerforge/support/geom"
)

func TestDumper_Layer(t *testing.T) {
	dir := t.TempDir()
	d, err := New(filepath.Join(dir, "dump"))
	require.NoError(t, err)

	err = d.Layer("top_contact", 1.2,
		Set{Label: "contact", Polygons: geom.Polygons{geom.RectMM(0, 0, 5, 5)}, Color: color.RGBA{R: 255, A: 255}},
		Set{Label: "infill", Lines: []geom.Polyline{{geom.PtMM(0, 1), geom.PtMM(5, 1)}}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Count())

	entries, err := os.ReadDir(filepath.Join(dir, "dump"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "top_contact_0001.200.png", entries[0].Name())
}

func TestDumper_Disabled(t *testing.T) {
	var d *Dumper
	assert.False(t, d.Enabled())
	assert.NoError(t, d.Layer("base", 0.2))
	assert.Equal(t, 0, d.Count())
}
