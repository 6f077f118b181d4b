package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Pool Creation Tests
// =============================================================================

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestPool_CreateZeroWorkers(t *testing.T) {
	pool := NewPool(0)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

func TestPool_Nil(t *testing.T) {
	var pool *Pool
	if pool.Workers() != 1 {
		t.Errorf("nil Workers() = %d, want 1", pool.Workers())
	}
	if pool.IsRunning() {
		t.Error("nil pool should not report running")
	}
	got := Map(pool, 5, func(i int) int { return i * i })
	for i, v := range got {
		if v != i*i {
			t.Errorf("Map()[%d] = %d, want %d", i, v, i*i)
		}
	}
	pool.Close()
}

// =============================================================================
// ExecuteAll / ForEach Tests
// =============================================================================

func TestPool_ExecuteAll(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numTasks := 100

	tasks := make([]func(), numTasks)
	for i := range tasks {
		tasks[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(tasks)

	if counter.Load() != int64(numTasks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	pool.ExecuteAll(nil)
	pool.ExecuteAll([]func(){})
}

func TestPool_ForEach_EveryIndexOnce(t *testing.T) {
	pool := NewPool(3)
	defer pool.Close()

	const n = 257
	hits := make([]int32, n)
	pool.ForEach(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d ran %d times, want 1", i, h)
		}
	}
}

func TestPool_ForEach_IsBarrier(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var finished atomic.Int64
	pool.ForEach(16, func(i int) {
		time.Sleep(time.Duration(i%4) * time.Millisecond)
		finished.Add(1)
	})
	if finished.Load() != 16 {
		t.Errorf("ForEach returned with %d/16 tasks finished", finished.Load())
	}
}

func TestMap_Order(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	got := Map(pool, 50, func(i int) int { return 2 * i })
	if len(got) != 50 {
		t.Fatalf("len = %d, want 50", len(got))
	}
	for i, v := range got {
		if v != 2*i {
			t.Errorf("Map()[%d] = %d, want %d", i, v, 2*i)
		}
	}
	if got := Map(pool, 0, func(int) int { return 1 }); len(got) != 0 {
		t.Errorf("Map(0) = %v, want empty", got)
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestPool_CloseIdempotent(t *testing.T) {
	pool := NewPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("Pool should not be running after Close")
	}
}

func TestPool_ExecuteAfterClose(t *testing.T) {
	pool := NewPool(2)
	pool.Close()

	var counter atomic.Int64
	pool.ForEach(10, func(int) { counter.Add(1) })
	if counter.Load() != 10 {
		t.Errorf("counter = %d, want 10 (closed pool runs inline)", counter.Load())
	}
}

func TestPool_WorkStealing(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	// Every slow task lands on worker 0's queue; the others must steal.
	var counter atomic.Int64
	tasks := make([]func(), 16)
	for i := range tasks {
		if i%4 == 0 {
			tasks[i] = func() {
				time.Sleep(5 * time.Millisecond)
				counter.Add(1)
			}
		} else {
			tasks[i] = func() { counter.Add(1) }
		}
	}

	start := time.Now()
	pool.ExecuteAll(tasks)
	elapsed := time.Since(start)

	if counter.Load() != 16 {
		t.Errorf("counter = %d, want 16", counter.Load())
	}
	if elapsed > 2*time.Second {
		t.Errorf("ExecuteAll took %v", elapsed)
	}
}

func TestPool_NoGoroutineLeak(t *testing.T) {
	before := runtime.NumGoroutine()

	for range 5 {
		pool := NewPool(4)
		pool.ForEach(10, func(int) {})
		pool.Close()
	}

	time.Sleep(10 * time.Millisecond)
	after := runtime.NumGoroutine()
	if after > before+2 {
		t.Errorf("goroutines: before=%d after=%d", before, after)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkPool_ForEach(b *testing.B) {
	pool := NewPool(0)
	defer pool.Close()

	var sink atomic.Int64
	b.ResetTimer()
	for range b.N {
		pool.ForEach(256, func(i int) { sink.Add(int64(i)) })
	}
}
