// Package search finds a node with a given value in a tree using a fixed set
// of workers that split the tree into disjoint subtrees and stop as soon as
// any of them finds a match.
package search

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/treesearch/pool"
	"github.com/timewinder-dev/treesearch/tree"
)

// Result describes a finished run.
type Result[T comparable] struct {
	RunID uuid.UUID
	// Node is the published match, nil when the target is absent.
	Node    *tree.Node[T]
	Outcome Phase
	// Visited counts node visits. A run that finds nothing visits every
	// node exactly once.
	Visited int64
	// Spawned counts tasks created beyond the root.
	Spawned int64
	// Skipped counts tasks a worker popped after cancellation and retired
	// without a visit.
	Skipped int64
	// Discarded counts queued tasks dropped while draining.
	Discarded int64
	Elapsed   time.Duration
}

func (r *Result[T]) Found() bool {
	return r.Node != nil
}

// Engine runs searches on a persistent worker pool. Runs on one Engine are
// serialized; use separate engines to search concurrently.
type Engine[T comparable] struct {
	cfg     Config
	pool    *pool.Pool
	onPhase func(Phase)

	runMu sync.Mutex
	phase atomic.Int32
}

func New[T comparable](cfg Config, opts ...Option) (*Engine[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	p, err := pool.New("search", cfg.Threads)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return &Engine[T]{
		cfg:     cfg,
		pool:    p,
		onPhase: o.onPhase,
	}, nil
}

func (e *Engine[T]) Config() Config {
	return e.cfg
}

// Phase returns the lifecycle phase of the current run, Idle between runs.
func (e *Engine[T]) Phase() Phase {
	return Phase(e.phase.Load())
}

func (e *Engine[T]) setPhase(p Phase) {
	e.phase.Store(int32(p))
	if e.onPhase != nil {
		e.onPhase(p)
	}
}

// Close waits for any running search and stops the workers. Search returns
// pool.ErrPoolClosed afterwards.
func (e *Engine[T]) Close() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	e.pool.Shutdown()
}

// Search looks for a node whose value equals target. A nil root or an absent
// target is not an error: the Result simply has no Node. A panic raised while
// visiting a node, such as comparing values of an uncomparable dynamic type,
// cancels the run and is returned as ErrWorkerPanic.
func (e *Engine[T]) Search(root *tree.Node[T], target T) (*Result[T], error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.pool.Closed() {
		return nil, pool.ErrPoolClosed
	}

	r := newRun(e.cfg, target)
	if root == nil {
		return &Result[T]{RunID: r.id, Outcome: Exhausted}, nil
	}

	start := time.Now()
	log.Debug().Str("run", r.id.String()).Int("threads", e.cfg.Threads).Msg("Search started")

	r.seed(root)
	e.setPhase(Seeded)

	var workers sync.WaitGroup
	for i := 0; i < e.cfg.Threads; i++ {
		workers.Add(1)
		err := e.pool.Enqueue(func() {
			defer workers.Done()
			r.work()
		})
		if err != nil {
			workers.Done()
			r.queue.close()
			workers.Wait()
			r.queue.drain()
			e.setPhase(Idle)
			return nil, err
		}
	}
	e.setPhase(Running)

	<-r.done

	outcome := Exhausted
	if r.found.Load() {
		outcome = Found
	}
	if !r.aborted.Load() {
		e.setPhase(outcome)
	}

	e.setPhase(Draining)
	r.queue.close()
	workers.Wait()
	discarded := r.queue.drain()
	for i := 0; i < discarded; i++ {
		r.release()
	}
	e.setPhase(Stopped)

	if r.err != nil {
		log.Debug().Str("run", r.id.String()).Err(r.err).Msg("Search aborted")
		e.setPhase(Idle)
		return nil, r.err
	}

	res := &Result[T]{
		RunID:     r.id,
		Node:      r.result,
		Outcome:   outcome,
		Visited:   r.visited.Load(),
		Spawned:   r.spawned.Load(),
		Skipped:   r.skipped.Load(),
		Discarded: int64(discarded),
		Elapsed:   time.Since(start),
	}
	log.Debug().
		Str("run", r.id.String()).
		Str("outcome", outcome.String()).
		Int64("visited", res.Visited).
		Int64("spawned", res.Spawned).
		Int64("skipped", res.Skipped).
		Int64("discarded", res.Discarded).
		Dur("elapsed", res.Elapsed).
		Msg("Search finished")

	e.setPhase(Idle)
	return res, nil
}
