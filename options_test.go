package support

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layerforge/support/internal/parallel"
)

// TestNewDefault tests that New creates a private pool from Config.Workers.
func TestNewDefault(t *testing.T) {
	g, err := New(testConfig())
	require.NoError(t, err)
	defer g.Close()

	if !g.ownsPool {
		t.Error("ownsPool = false, want true")
	}
	if g.pool.Workers() != 2 {
		t.Errorf("Workers() = %d, want 2", g.pool.Workers())
	}
	if g.dump.Enabled() {
		t.Error("debug dump enabled without WithDebugDump")
	}
}

func TestWithWorkers(t *testing.T) {
	g, err := New(testConfig(), WithWorkers(3))
	require.NoError(t, err)
	defer g.Close()

	if g.pool.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", g.pool.Workers())
	}
}

// TestWithPool tests that a shared pool survives Generator.Close.
func TestWithPool(t *testing.T) {
	pool := parallel.NewPool(2)
	defer pool.Close()

	g, err := New(testConfig(), WithPool(pool))
	require.NoError(t, err)
	if g.ownsPool {
		t.Error("ownsPool = true for a caller pool")
	}
	res, err := g.Generate(tabObject())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Layers)
	g.Close()

	if !pool.IsRunning() {
		t.Error("Close stopped a pool it does not own")
	}
}

func TestWithDebugDump(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dump")
	res, err := Generate(tabObject(), testConfig(), WithDebugDump(dir))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(res.Layers))
	for _, e := range entries {
		assert.Equal(t, ".png", filepath.Ext(e.Name()))
	}
}

func TestWithDebugDump_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := New(testConfig(), WithDebugDump(filepath.Join(file, "dump")))
	assert.Error(t, err)
}

// TestOptionsOrder tests that later options override earlier ones.
func TestOptionsOrder(t *testing.T) {
	o := defaultOptions(testConfig())
	for _, opt := range []Option{WithWorkers(4), WithWorkers(1), WithoutToolpaths()} {
		opt(&o)
	}
	if o.workers != 1 {
		t.Errorf("workers = %d, want 1", o.workers)
	}
	if !o.noToolpaths {
		t.Error("noToolpaths = false, want true")
	}
}
