package search

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/treesearch/pool"
	"github.com/timewinder-dev/treesearch/tree"
)

func newEngine(t *testing.T, cfg Config, opts ...Option) *Engine[int64] {
	t.Helper()
	e, err := New[int64](cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func config(threads, cutoff, spawn int) Config {
	return Config{Threads: threads, CutoffDepth: cutoff, MaxSpawnPerNode: spawn}
}

func TestNewRejectsInvalidConfiguration(t *testing.T) {
	testCases := []struct {
		name string
		cfg  Config
	}{
		{"Zero threads", config(0, 3, 4)},
		{"Negative threads", config(-2, 3, 4)},
		{"Negative cutoff", config(4, -1, 4)},
		{"Negative spawn cap", config(4, 3, -1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New[int64](tc.cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	e := newEngine(t, DefaultConfig())
	assert.Equal(t, DefaultConfig(), e.Config())
}

func TestBalancedTreeAcrossThreadCounts(t *testing.T) {
	root := tree.NewGenerator(42).Balanced(3, 2)
	for _, threads := range []int{1, 2, 4, 16} {
		t.Run(fmt.Sprintf("%d threads", threads), func(t *testing.T) {
			e := newEngine(t, config(threads, DefaultCutoffDepth, DefaultMaxSpawnPerNode))

			res, err := e.Search(root, 14)
			require.NoError(t, err)
			require.True(t, res.Found())
			assert.Equal(t, int64(14), res.Node.Value)
			assert.Equal(t, Found, res.Outcome)
			assert.LessOrEqual(t, res.Visited, int64(15))

			res, err = e.Search(root, 99)
			require.NoError(t, err)
			assert.False(t, res.Found())
			assert.Nil(t, res.Node)
			assert.Equal(t, Exhausted, res.Outcome)
			assert.Equal(t, int64(15), res.Visited)
			assert.Zero(t, res.Discarded)
		})
	}
}

func TestEmptyRoot(t *testing.T) {
	var phases []Phase
	e := newEngine(t, config(4, 3, 4), WithPhaseHook(func(p Phase) { phases = append(phases, p) }))
	res, err := e.Search(nil, 1)
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Zero(t, res.Visited)
	assert.Zero(t, res.Spawned)
	assert.Empty(t, phases)
}

func TestRootMatchVisitsOnlyRoot(t *testing.T) {
	root := tree.NewGenerator(1).Balanced(6, 3)
	e := newEngine(t, config(8, 3, 4))
	res, err := e.Search(root, 0)
	require.NoError(t, err)
	assert.Same(t, root, res.Node)
	assert.Equal(t, int64(1), res.Visited)
	assert.Zero(t, res.Spawned)
}

func TestEveryValueOnReusedEngine(t *testing.T) {
	root := tree.NewGenerator(11).Random(500, 1, 5)
	total := int64(tree.Count(root))
	e := newEngine(t, config(4, 2, 3))

	for v := int64(0); v < total; v++ {
		res, err := e.Search(root, v)
		require.NoError(t, err)
		require.True(t, res.Found(), "value %d", v)
		require.Equal(t, v, res.Node.Value)
		require.LessOrEqual(t, res.Visited, total)
	}
	res, err := e.Search(root, -1)
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t, total, res.Visited)
}

func TestDifferentTreesOnSameEngine(t *testing.T) {
	e := newEngine(t, config(4, 3, 4))
	g := tree.NewGenerator(5)
	trees := []*tree.Node[int64]{g.Balanced(4, 2), g.Skewed(30), g.Random(800, 1, 4), tree.Sample()}
	for i, root := range trees {
		total := int64(tree.Count(root))
		res, err := e.Search(root, -7)
		require.NoError(t, err, "tree %d", i)
		assert.Equal(t, total, res.Visited, "tree %d", i)
	}
}

func TestMultipleMatches(t *testing.T) {
	root := tree.NewGenerator(3).Random(5000, 1, 4)
	total := int64(tree.Count(root))
	// Every third node holds the target.
	tree.Walk(root, func(n *tree.Node[int64], _ int) bool {
		if n.Value%3 == 1 {
			n.Value = -1
		}
		return true
	})
	for _, threads := range []int{1, 2, 4, 16} {
		t.Run(fmt.Sprintf("%d threads", threads), func(t *testing.T) {
			e := newEngine(t, config(threads, 3, 4))
			res, err := e.Search(root, -1)
			require.NoError(t, err)
			require.True(t, res.Found())
			assert.Equal(t, int64(-1), res.Node.Value)
			assert.Less(t, res.Visited, total)
		})
	}
}

func TestSequentialSubsearchStopsAtMatch(t *testing.T) {
	// The match is the first child; its sibling is a large subtree that must
	// not be explored once the match is published.
	big := tree.NewGenerator(100).Balanced(10, 3)
	root := tree.New[int64](-5, tree.New[int64](-10), big)

	testCases := []struct {
		name string
		cfg  Config
	}{
		{"No spawning", config(1, 0, 4)},
		{"Spawn cap zero", config(4, 5, 0)},
		{"Spawn both children", config(1, 1, 2)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.cfg)
			res, err := e.Search(root, -10)
			require.NoError(t, err)
			require.True(t, res.Found())
			assert.Equal(t, int64(2), res.Visited)
		})
	}
}

func TestCancellationLatency(t *testing.T) {
	// Many workers deep in large subtrees; once the single match is found
	// the total work must stay far below a full traversal.
	g := tree.NewGenerator(8)
	subtrees := make([]*tree.Node[int64], 0, 8)
	for i := 0; i < 8; i++ {
		subtrees = append(subtrees, g.Balanced(9, 3))
	}
	root := tree.New[int64](-1, append([]*tree.Node[int64]{tree.New[int64](-2)}, subtrees...)...)
	subtree := int64(tree.Count(subtrees[0]))

	// The match is the first task queued, so at most threads-1 workers can
	// be inside a subtree before it is published, and each makes at most
	// one more visit after that.
	const threads = 4
	limit := 2 + (threads-1)*subtree + threads

	e := newEngine(t, config(threads, 1, 16))
	for i := 0; i < 20; i++ {
		res, err := e.Search(root, -2)
		require.NoError(t, err)
		require.True(t, res.Found())
		require.LessOrEqual(t, res.Visited, limit, "run %d", i)
	}
}

func TestQueuedTasksAreAccountedAfterMatch(t *testing.T) {
	// One worker spawns every leaf, then finds the match in the last child
	// on its own. The queued leaves are either skipped by the worker or
	// dropped while draining, never visited.
	const leaves = 4999
	children := make([]*tree.Node[int64], 0, leaves+1)
	for i := 0; i < leaves; i++ {
		children = append(children, tree.New(int64(i+1)))
	}
	children = append(children, tree.New[int64](-1))
	root := tree.New[int64](0, children...)

	e := newEngine(t, config(1, 1, leaves))
	var discarded bool
	for i := 0; i < 50; i++ {
		res, err := e.Search(root, -1)
		require.NoError(t, err)
		require.True(t, res.Found())
		require.Equal(t, int64(2), res.Visited)
		require.Equal(t, int64(leaves), res.Spawned)
		require.Equal(t, res.Spawned, res.Skipped+res.Discarded)
		if res.Discarded > 0 {
			discarded = true
		}
	}
	if runtime.GOMAXPROCS(0) > 1 {
		assert.True(t, discarded, "no run left tasks queued at close")
	}
}

func TestPanicDuringVisitFailsSearch(t *testing.T) {
	e, err := New[any](config(2, 3, 4))
	require.NoError(t, err)
	t.Cleanup(e.Close)

	// Comparing two slices held as any panics.
	root := tree.New[any](1, tree.New[any]([]int{1}), tree.New[any](3))

	done := make(chan error, 1)
	go func() {
		_, err := e.Search(root, any([]int{2}))
		done <- err
	}()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWorkerPanic))
	case <-time.After(5 * time.Second):
		t.Fatal("search did not return after a panic")
	}
	assert.Equal(t, Idle, e.Phase())

	res, err := e.Search(root, any(3))
	require.NoError(t, err)
	require.True(t, res.Found())
	assert.Equal(t, any(3), res.Node.Value)
}

func TestSpawnPolicies(t *testing.T) {
	root := tree.NewGenerator(21).Random(20000, 1, 6)
	total := int64(tree.Count(root))
	testCases := []struct {
		name string
		cfg  Config
	}{
		{"Single task", config(4, 0, 4)},
		{"Cap of one", config(4, 8, 1)},
		{"Default", config(4, DefaultCutoffDepth, DefaultMaxSpawnPerNode)},
		{"Spawn everything", config(8, 1000, 1000)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEngine(t, tc.cfg)

			res, err := e.Search(root, total+1)
			require.NoError(t, err)
			assert.False(t, res.Found())
			assert.Equal(t, total, res.Visited)
			if tc.cfg.CutoffDepth == 0 || tc.cfg.MaxSpawnPerNode == 0 {
				assert.Zero(t, res.Spawned)
			}
			if tc.cfg.CutoffDepth == 1000 {
				// Every node but the root became its own task.
				assert.Equal(t, total-1, res.Spawned)
			}

			res, err = e.Search(root, total-1)
			require.NoError(t, err)
			require.True(t, res.Found())
			assert.Equal(t, total-1, res.Node.Value)
		})
	}
}

func TestPhaseTransitions(t *testing.T) {
	var phases []Phase
	e := newEngine(t, config(4, 3, 4), WithPhaseHook(func(p Phase) { phases = append(phases, p) }))
	root := tree.NewGenerator(1).Balanced(3, 2)

	_, err := e.Search(root, 14)
	require.NoError(t, err)
	assert.Equal(t, []Phase{Seeded, Running, Found, Draining, Stopped, Idle}, phases)
	assert.Equal(t, Idle, e.Phase())

	phases = nil
	_, err = e.Search(root, 99)
	require.NoError(t, err)
	assert.Equal(t, []Phase{Seeded, Running, Exhausted, Draining, Stopped, Idle}, phases)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "draining", Draining.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestSearchAfterClose(t *testing.T) {
	e, err := New[int64](config(2, 3, 4))
	require.NoError(t, err)
	e.Close()
	e.Close()

	_, err = e.Search(tree.Sample(), 7)
	assert.True(t, errors.Is(err, pool.ErrPoolClosed))

	// A fresh engine works.
	e2 := newEngine(t, config(2, 3, 4))
	res, err := e2.Search(tree.Sample(), 7)
	require.NoError(t, err)
	assert.True(t, res.Found())
}

func TestConcurrentSearchesOnOneEngine(t *testing.T) {
	root := tree.NewGenerator(2).Random(3000, 1, 5)
	e := newEngine(t, config(4, 3, 4))

	var wg sync.WaitGroup
	errs := make([]error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target := int64(i * 90)
			res, err := e.Search(root, target)
			if err != nil {
				errs[i] = err
				return
			}
			if !res.Found() || res.Node.Value != target {
				errs[i] = fmt.Errorf("target %d not found", target)
			}
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestLargeTreeNoDeadlock(t *testing.T) {
	if testing.Short() {
		t.Skip("large tree")
	}
	root := tree.NewGenerator(42).Random(150000, 1, 6)
	total := int64(tree.Count(root))
	require.GreaterOrEqual(t, total, int64(100000))

	e := newEngine(t, config(16, DefaultCutoffDepth, DefaultMaxSpawnPerNode))
	done := make(chan *Result[int64], 1)
	go func() {
		res, err := e.Search(root, -1)
		if err != nil {
			done <- nil
			return
		}
		done <- res
	}()
	select {
	case res := <-done:
		require.NotNil(t, res)
		assert.False(t, res.Found())
		assert.Equal(t, total, res.Visited)
	case <-time.After(60 * time.Second):
		t.Fatal("search did not finish")
	}
}

func TestRepeatedRunsStress(t *testing.T) {
	root := tree.NewGenerator(77).Random(2000, 1, 4)
	total := int64(tree.Count(root))
	e := newEngine(t, config(8, 2, 2))
	for i := 0; i < 200; i++ {
		target := int64(i*37) % (total + 50)
		res, err := e.Search(root, target)
		require.NoError(t, err)
		if target < total {
			require.True(t, res.Found(), "target %d", target)
			require.Equal(t, target, res.Node.Value)
		} else {
			require.False(t, res.Found(), "target %d", target)
			require.Equal(t, total, res.Visited)
		}
	}
}
